package ws

import "encoding/json"

// WSMessage is the outbound envelope.
type WSMessage struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId,omitempty"`
	Data   any    `json:"data"`
}

// InboundMessage is the envelope every client frame must decode into.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Inbound payloads
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

type FinishDrawingPayload struct {
	DrawingScore float64 `json:"drawingScore"`
}

type SubmitGuessPayload struct {
	Guess        string  `json:"guess"`
	DrawingScore float64 `json:"drawingScore"`
}

// Outbound payloads
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TopicForDrawerPayload struct {
	Topic      string `json:"topic"`
	Hint       string `json:"hint"`
	Difficulty int    `json:"difficulty"`
	Round      int    `json:"round"`
}

type RoundStartedPayload struct {
	Round int `json:"round"`
}

type DrawingFinishedPayload struct {
	DrawingScore float64 `json:"drawingScore"`
}

type EmptyPayload struct{}
