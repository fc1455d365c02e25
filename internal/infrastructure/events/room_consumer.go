package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/contracts"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/messaging"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RoomConsumer struct {
	rabbitmq *messaging.RabbitMQ
	auditLog domain.RoomAuditRepository
	logger   logging.Logger
}

func NewRoomConsumer(rabbitmq *messaging.RabbitMQ, auditLog domain.RoomAuditRepository, logger logging.Logger) *RoomConsumer {
	return &RoomConsumer{
		rabbitmq: rabbitmq,
		auditLog: auditLog,
		logger:   logger,
	}
}

// Listen binds the rooms queue and writes every delivery to the audit log
// until ctx is cancelled.
func (c *RoomConsumer) Listen(ctx context.Context) error {
	if err := c.rabbitmq.DeclareAndBindQueue(messaging.RoomsQueue, contracts.RoomRoutingKeys); err != nil {
		return err
	}

	return c.rabbitmq.ConsumeMessages(ctx, messaging.RoomsQueue, func(ctx context.Context, msg amqp.Delivery) error {
		return c.Handle(ctx, msg.Body)
	})
}

func (c *RoomConsumer) Handle(ctx context.Context, body []byte) error {
	var message contracts.AmqpMessage
	if err := json.Unmarshal(body, &message); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Consume, "failed to unmarshal message", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	var evt domain.RoomEvent
	if err := json.Unmarshal(message.Data, &evt); err != nil {
		c.logger.Error(logging.RabbitMQ, logging.Consume, "failed to unmarshal room event", map[logging.ExtraKey]any{
			logging.RoomID:       message.RoomID,
			logging.ErrorMessage: err.Error(),
		})
		return err
	}

	if err := c.auditLog.Log(ctx, domain.NewRoomAuditLog(evt)); err != nil {
		c.logger.Error(logging.MongoDB, logging.Consume, "failed to write audit log", map[logging.ExtraKey]any{
			logging.RoomID:       evt.RoomID,
			logging.EventType:    string(evt.Type),
			logging.ErrorMessage: err.Error(),
		})
		return fmt.Errorf("write audit log: %w", err)
	}

	c.logger.Debug(logging.RabbitMQ, logging.Consume, "room event recorded", map[logging.ExtraKey]any{
		logging.RoomID:    evt.RoomID,
		logging.EventType: string(evt.Type),
	})

	return nil
}
