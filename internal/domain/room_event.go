package domain

import (
	"context"
	"time"
)

type RoomEventType string

const (
	EventRoomCreated   RoomEventType = "room_created"
	EventRoomDeleted   RoomEventType = "room_deleted"
	EventRoomExpired   RoomEventType = "room_expired"
	EventMemberJoined  RoomEventType = "member_joined"
	EventMemberLeft    RoomEventType = "member_left"
	EventRoundStarted  RoomEventType = "round_started"
	EventRoundResolved RoomEventType = "round_resolved"
	EventRoomFull      RoomEventType = "room_full_rejected"
)

// RoomEvent is a lifecycle notification for other services. It never
// carries stroke data, and only EventRoundResolved carries the topic.
type RoomEvent struct {
	Type       RoomEventType `json:"type"`
	RoomID     string        `json:"roomId"`
	Round      int           `json:"round,omitempty"`
	Role       Role          `json:"role,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Difficulty int           `json:"difficulty,omitempty"`
	State      *RoomState    `json:"state,omitempty"`
	Result     *RoundResult  `json:"result,omitempty"`
	OccurredAt time.Time     `json:"occurredAt"`
}

type RoomEventPublisher interface {
	Publish(ctx context.Context, evt RoomEvent) error
}

func NewRoomEvent(eventType RoomEventType, roomID string) RoomEvent {
	return RoomEvent{
		Type:       eventType,
		RoomID:     roomID,
		OccurredAt: time.Now().UTC(),
	}
}
