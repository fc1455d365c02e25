package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/contracts"
)

type messagePublisher interface {
	PublishMessage(ctx context.Context, routingKey string, message any) error
}

// RoomPublisher forwards room lifecycle events to the broker. A publisher
// without a broker drops everything.
type RoomPublisher struct {
	rabbitmq messagePublisher
}

func NewRoomPublisher(rabbitmq messagePublisher) *RoomPublisher {
	return &RoomPublisher{
		rabbitmq: rabbitmq,
	}
}

func NewNoopRoomPublisher() *RoomPublisher {
	return &RoomPublisher{}
}

var routingKeys = map[domain.RoomEventType]string{
	domain.EventRoomCreated:   contracts.EventRoomCreated,
	domain.EventRoomDeleted:   contracts.EventRoomDeleted,
	domain.EventRoomExpired:   contracts.EventRoomExpired,
	domain.EventRoomFull:      contracts.EventRoomFull,
	domain.EventMemberJoined:  contracts.EventMemberJoined,
	domain.EventMemberLeft:    contracts.EventMemberLeft,
	domain.EventRoundStarted:  contracts.EventRoundStarted,
	domain.EventRoundResolved: contracts.EventRoundResolved,
}

func (p *RoomPublisher) Publish(ctx context.Context, evt domain.RoomEvent) error {
	if p == nil || p.rabbitmq == nil {
		return nil
	}

	routingKey, ok := routingKeys[evt.Type]
	if !ok {
		return fmt.Errorf("no routing key for event %q", evt.Type)
	}

	// Only a resolved round may reveal its topic.
	if evt.Type != domain.EventRoundResolved {
		evt.Result = nil
	}

	roomEventJSON, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKey, contracts.AmqpMessage{
		RoomID: evt.RoomID,
		Data:   roomEventJSON,
	})
}
