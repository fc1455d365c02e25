package game

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/metrics"
	"github.com/hilthontt/oekaki/internal/infrastructure/profanity"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

const (
	publishTimeout = 5 * time.Second
	joinAttempts   = 3
)

type Options struct {
	MaxNameLength      int
	MaxRoomIDLength    int
	RequireDrawingDone bool
	JudgeTimeout       time.Duration
	EventsPerSecond    float64
	EventBurst         int
}

func (o Options) withDefaults() Options {
	if o.MaxNameLength <= 0 {
		o.MaxNameLength = domain.DefaultMaxNameLength
	}
	if o.MaxRoomIDLength <= 0 {
		o.MaxRoomIDLength = domain.DefaultMaxRoomIDLength
	}
	if o.JudgeTimeout <= 0 {
		o.JudgeTimeout = 20 * time.Second
	}
	if o.EventsPerSecond <= 0 {
		o.EventsPerSecond = 120
	}
	if o.EventBurst <= 0 {
		o.EventBurst = 240
	}
	return o
}

// Relay routes client events to room transitions and fans the results out.
// Each room is serialized by its own lock; rooms never share one.
type Relay struct {
	repo      domain.RoomRepository
	judge     domain.Judge
	publisher domain.RoomEventPublisher
	filter    *profanity.ProfanityFilter
	logger    logging.Logger
	metrics   *metrics.Metrics
	opts      Options
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
}

func NewRelay(
	repo domain.RoomRepository,
	judge domain.Judge,
	publisher domain.RoomEventPublisher,
	filter *profanity.ProfanityFilter,
	logger logging.Logger,
	m *metrics.Metrics,
	opts Options,
) *Relay {
	ctx, cancel := context.WithCancel(context.Background())

	return &Relay{
		repo:      repo,
		judge:     judge,
		publisher: publisher,
		filter:    filter,
		logger:    logger,
		metrics:   m,
		opts:      opts.withDefaults(),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Attach creates the per-connection state for a new client.
func (r *Relay) Attach(conn domain.Connection) *Participant {
	r.metrics.ConnectionOpened()
	return newParticipant(r, conn)
}

// Shutdown cancels outstanding judgment calls and waits for their
// completions to be applied or discarded.
func (r *Relay) Shutdown(ctx context.Context) error {
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.tasks.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every in-flight judgment task has completed.
func (r *Relay) Wait() {
	r.tasks.Wait()
}

// spawn runs fn outside any room lock with the judge timeout applied.
func (r *Relay) spawn(fn func(ctx context.Context)) {
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		ctx, cancel := context.WithTimeout(r.ctx, r.opts.JudgeTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (r *Relay) publish(evt domain.RoomEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, evt); err != nil {
		r.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish room event", map[logging.ExtraKey]any{
			logging.RoomID:       evt.RoomID,
			logging.EventType:    string(evt.Type),
			logging.ErrorMessage: err.Error(),
		})
	}
}

func (r *Relay) updateRoomGauge() {
	r.metrics.SetRoomsActive(r.repo.Count())
}

// broadcast sends to every audience member. Callers hold the room lock.
func broadcast(room *domain.Room, eventType string, data any) {
	for _, conn := range room.Audience() {
		send(conn, room.ID(), eventType, data)
	}
}

func broadcastExcept(room *domain.Room, sender domain.Connection, eventType string, data any) int {
	n := 0
	for _, conn := range room.Audience() {
		if conn.ID() == sender.ID() {
			continue
		}
		send(conn, room.ID(), eventType, data)
		n++
	}
	return n
}

func send(conn domain.Connection, roomID, eventType string, data any) {
	if conn == nil {
		return
	}
	conn.Send(domain.Event{Type: eventType, RoomID: roomID, Data: data})
}

func sendError(conn domain.Connection, roomID, code, message string) {
	send(conn, roomID, ws.ErrorMessage, ws.ErrorPayload{Code: code, Message: message})
}

func broadcastError(room *domain.Room, code, message string) {
	broadcast(room, ws.ErrorMessage, ws.ErrorPayload{Code: code, Message: message})
}
