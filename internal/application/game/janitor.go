package game

import (
	"context"
	"time"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

// RunJanitor expires idle rooms every interval until ctx is done.
func (r *Relay) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.SweepIdle(ctx)
		}
	}
}

// SweepIdle evicts idle rooms and tells their audience the room expired.
// It returns the number of rooms evicted.
func (r *Relay) SweepIdle(ctx context.Context) int {
	evicted := r.repo.EvictIdle(ctx, r.now())

	for _, room := range evicted {
		room.Lock()
		for _, conn := range room.DetachAudience() {
			sendError(conn, room.ID(), ws.CodeRoomExpired, domain.ErrRoomRemoved.Error())
		}
		round := room.Round()
		room.Unlock()

		r.logger.Info(logging.Game, logging.Expiry, "idle room expired", map[logging.ExtraKey]any{
			logging.RoomID: room.ID(),
			logging.Round:  round,
		})

		evt := domain.NewRoomEvent(domain.EventRoomExpired, room.ID())
		evt.Round = round
		evt.Reason = "idle"
		r.publish(evt)
	}

	if len(evicted) > 0 {
		r.updateRoomGauge()
	}
	return len(evicted)
}
