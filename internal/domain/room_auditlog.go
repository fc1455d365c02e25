package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomAuditLog struct {
	ID        string         `bson:"_id" json:"id"`
	RoomID    string         `bson:"room_id" json:"roomId"`
	EventType RoomEventType  `bson:"event_type" json:"eventType"`
	Timestamp time.Time      `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type RoomAuditRepository interface {
	Log(ctx context.Context, log *RoomAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]RoomAuditLog, error)
	GetByEventType(ctx context.Context, eventType RoomEventType, from, to time.Time) ([]RoomAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewRoomAuditLog(evt RoomEvent) *RoomAuditLog {
	metadata := map[string]any{}

	if evt.Round > 0 {
		metadata["round"] = evt.Round
	}
	if evt.Role != "" {
		metadata["role"] = string(evt.Role)
	}
	if evt.Reason != "" {
		metadata["reason"] = evt.Reason
	}
	if evt.Difficulty > 0 {
		metadata["difficulty"] = evt.Difficulty
	}
	if evt.State != nil {
		metadata["drawer_connected"] = evt.State.DrawerConnected
		metadata["guesser_connected"] = evt.State.GuesserConnected
	}
	if evt.Result != nil {
		metadata["topic"] = evt.Result.Topic
		metadata["correct"] = evt.Result.Correct
		metadata["guess_score"] = evt.Result.GuessScore
		metadata["drawing_score"] = evt.Result.DrawingScore
		metadata["total_score"] = evt.Result.TotalScore
	}

	timestamp := evt.OccurredAt
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	return &RoomAuditLog{
		ID:        uuid.NewString(),
		RoomID:    evt.RoomID,
		EventType: evt.Type,
		Timestamp: timestamp,
		Metadata:  metadata,
	}
}
