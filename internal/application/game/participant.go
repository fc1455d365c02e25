package game

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/hilthontt/oekaki/internal/infrastructure/logging"
	"github.com/hilthontt/oekaki/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/oekaki/internal/infrastructure/ws"
)

// Participant is the relay state of one connection. HandleMessage,
// Heartbeat and Close are called from the connection's read loop only, so
// room is never touched concurrently.
type Participant struct {
	relay   *Relay
	conn    domain.Connection
	limiter *ratelimiter.EventLimiter
	room    *domain.Room
}

var (
	_ ws.Handler     = (*Participant)(nil)
	_ ws.Heartbeater = (*Participant)(nil)
)

func newParticipant(r *Relay, conn domain.Connection) *Participant {
	return &Participant{
		relay:   r,
		conn:    conn,
		limiter: ratelimiter.NewEventLimiter(r.opts.EventsPerSecond, r.opts.EventBurst),
	}
}

func (p *Participant) HandleMessage(raw []byte) {
	if allowed, notify := p.limiter.Allow(); !allowed {
		if notify {
			p.reject(errRateLimited)
		} else {
			p.relay.metrics.EventRejected(ws.CodeRateLimited)
		}
		return
	}

	var msg ws.InboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		p.reject(errMalformedFrame)
		return
	}

	switch msg.Type {
	case ws.JoinRoom:
		p.handleJoin(msg.Data)
	case ws.StartRound:
		p.handleStartRound()
	case ws.Stroke:
		p.handleStroke(msg.Data)
	case ws.FinishDrawing:
		p.handleFinishDrawing(msg.Data)
	case ws.SubmitGuess:
		p.handleSubmitGuess(msg.Data)
	default:
		p.reject(errUnknownEvent)
	}
}

// Close releases whatever the connection was bound to.
func (p *Participant) Close() {
	p.leave()
	p.relay.metrics.ConnectionClosed()
}

func (p *Participant) roomID() string {
	if p.room == nil {
		return ""
	}
	return p.room.ID()
}

func (p *Participant) reject(err error) {
	code := codeFor(err)
	p.relay.metrics.EventRejected(code)
	p.relay.logger.Warn(logging.Game, logging.Rejected, "event rejected", map[logging.ExtraKey]any{
		logging.RoomID:       p.roomID(),
		logging.ConnID:       p.conn.ID(),
		logging.ErrorMessage: err.Error(),
	})
	sendError(p.conn, p.roomID(), code, err.Error())
}

// rejectInRoom reports a failed transition. Callers hold the room lock.
func (p *Participant) rejectInRoom(room *domain.Room, err error) {
	code := codeFor(err)
	p.relay.metrics.EventRejected(code)
	p.relay.logger.Warn(logging.Game, logging.Rejected, "transition rejected", map[logging.ExtraKey]any{
		logging.RoomID:       room.ID(),
		logging.ConnID:       p.conn.ID(),
		logging.Round:        room.Round(),
		logging.ErrorMessage: err.Error(),
	})

	if roomWide(err) {
		broadcastError(room, code, err.Error())
		return
	}
	sendError(p.conn, room.ID(), code, err.Error())
}

// lockRoom returns the bound room locked, or nil after answering the
// requester when there is no usable binding.
func (p *Participant) lockRoom() *domain.Room {
	if p.room == nil {
		p.reject(errNotJoined)
		return nil
	}

	room := p.room
	room.Lock()
	if room.Removed() {
		room.Unlock()
		p.room = nil
		sendError(p.conn, room.ID(), codeFor(domain.ErrRoomRemoved), domain.ErrRoomRemoved.Error())
		p.relay.metrics.EventRejected(codeFor(domain.ErrRoomRemoved))
		return nil
	}

	room.Touch(p.relay.now())
	return room
}

func (p *Participant) handleJoin(data json.RawMessage) {
	var payload ws.JoinRoomPayload
	if err := decode(data, &payload); err != nil {
		p.reject(err)
		return
	}

	role, err := domain.ParseRole(payload.Role)
	if err != nil {
		p.reject(err)
		return
	}
	roomID, err := domain.NormalizeRoomID(payload.RoomID, p.relay.opts.MaxRoomIDLength)
	if err != nil {
		p.reject(err)
		return
	}
	name := p.relay.displayName(payload.Name, role)

	if p.room != nil && p.room.ID() == roomID && p.rebind(role, name) {
		return
	}

	// A connection holds at most one binding.
	p.leave()

	for attempt := 0; attempt < joinAttempts; attempt++ {
		room, created, err := p.relay.repo.GetOrCreate(context.Background(), roomID)
		if err != nil {
			if errors.Is(err, domain.ErrRegistryFull) {
				evt := domain.NewRoomEvent(domain.EventRoomFull, roomID)
				evt.Role = role
				p.relay.publish(evt)
			}
			p.reject(err)
			return
		}

		room.Lock()
		if err := room.Join(p.conn, role, name); err != nil {
			room.Unlock()
			if errors.Is(err, domain.ErrRoomRemoved) {
				// Lost a race with the room being torn down; the registry
				// hands out a fresh one on the next attempt.
				continue
			}
			p.reject(err)
			return
		}
		room.Touch(p.relay.now())
		state := room.Snapshot()
		broadcast(room, ws.RoomState, state)
		room.Unlock()

		p.room = room
		p.relay.updateRoomGauge()
		p.relay.logger.Debug(logging.Game, logging.Join, "joined room", map[logging.ExtraKey]any{
			logging.RoomID: roomID,
			logging.ConnID: p.conn.ID(),
			logging.Role:   string(role),
		})

		if created {
			p.relay.publish(domain.NewRoomEvent(domain.EventRoomCreated, roomID))
		}
		evt := domain.NewRoomEvent(domain.EventMemberJoined, roomID)
		evt.Role = role
		evt.State = &state
		p.relay.publish(evt)
		return
	}

	p.reject(domain.ErrRoomRemoved)
}

// rebind overwrites the slot in the room the connection is already bound
// to. It reports false when that room is gone and a fresh join is needed.
func (p *Participant) rebind(role domain.Role, name string) bool {
	room := p.room
	room.Lock()
	if room.Removed() {
		room.Unlock()
		p.room = nil
		return false
	}

	previous, held := room.RoleOf(p.conn)
	if err := room.Rebind(p.conn, role, name); err != nil {
		p.rejectInRoom(room, err)
		room.Unlock()
		return true
	}
	room.Touch(p.relay.now())
	state := room.Snapshot()
	broadcast(room, ws.RoomState, state)
	room.Unlock()

	p.relay.logger.Debug(logging.Game, logging.Join, "rejoined room", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.ConnID: p.conn.ID(),
		logging.Role:   string(role),
	})

	if !held || previous != role {
		evt := domain.NewRoomEvent(domain.EventMemberJoined, room.ID())
		evt.Role = role
		evt.State = &state
		p.relay.publish(evt)
	}
	return true
}

// Heartbeat counts a pong as activity so that quiet rooms with live
// occupants are not expired.
func (p *Participant) Heartbeat() {
	room := p.room
	if room == nil {
		return
	}
	room.Lock()
	if !room.Removed() {
		room.Touch(p.relay.now())
	}
	room.Unlock()
}

// leave drops the current binding with disconnect semantics.
func (p *Participant) leave() {
	room := p.room
	if room == nil {
		return
	}
	p.room = nil

	room.Lock()
	if room.Removed() {
		room.Unlock()
		return
	}

	role, _ := room.RoleOf(p.conn)
	emptied := room.Leave(p.conn)
	state := room.Snapshot()
	if emptied {
		room.MarkRemoved()
		_ = p.relay.repo.Remove(context.Background(), room)
		for _, conn := range room.DetachAudience() {
			sendError(conn, room.ID(), codeFor(domain.ErrRoomRemoved), domain.ErrRoomRemoved.Error())
		}
	} else {
		broadcast(room, ws.RoomState, state)
	}
	room.Unlock()

	p.relay.updateRoomGauge()
	p.relay.logger.Debug(logging.Game, logging.Leave, "left room", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.ConnID: p.conn.ID(),
		logging.Role:   string(role),
	})

	evt := domain.NewRoomEvent(domain.EventMemberLeft, room.ID())
	evt.Role = role
	evt.State = &state
	p.relay.publish(evt)
	if emptied {
		p.relay.publish(domain.NewRoomEvent(domain.EventRoomDeleted, room.ID()))
	}
}

func (p *Participant) handleStartRound() {
	room := p.lockRoom()
	if room == nil {
		return
	}

	round, err := room.BeginRound(p.conn)
	if err != nil {
		p.rejectInRoom(room, err)
		room.Unlock()
		return
	}
	broadcast(room, ws.ClearCanvas, ws.EmptyPayload{})
	room.Unlock()

	p.relay.metrics.RoundStarted()
	p.relay.logger.Debug(logging.Game, logging.StartRound, "round started", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.Round:  round,
	})

	p.relay.spawn(func(ctx context.Context) {
		candidate, err := p.relay.judge.GenerateTopic(ctx)
		p.relay.completeTopic(room, round, candidate, err)
	})
}

func (p *Participant) handleStroke(data json.RawMessage) {
	// Strokes from anyone but the bound drawer are dropped without a reply.
	room := p.room
	if room == nil || len(data) == 0 {
		return
	}

	room.Lock()
	defer room.Unlock()

	if room.Removed() {
		return
	}
	if role, ok := room.RoleOf(p.conn); !ok || role != domain.RoleDrawer {
		return
	}

	room.Touch(p.relay.now())
	if broadcastExcept(room, p.conn, ws.Stroke, data) > 0 {
		p.relay.metrics.StrokeRelayed()
	}
}

func (p *Participant) handleFinishDrawing(data json.RawMessage) {
	var payload ws.FinishDrawingPayload
	if err := decode(data, &payload); err != nil {
		p.reject(err)
		return
	}

	room := p.lockRoom()
	if room == nil {
		return
	}
	defer room.Unlock()

	score, err := room.FinishDrawing(p.conn, payload.DrawingScore)
	if err != nil {
		p.rejectInRoom(room, err)
		return
	}

	broadcast(room, ws.DrawingFinished, ws.DrawingFinishedPayload{DrawingScore: score})
	broadcast(room, ws.RoomState, room.Snapshot())

	p.relay.logger.Debug(logging.Game, logging.FinishDrawing, "drawing finished", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.Round:  room.Round(),
	})
}

func (p *Participant) handleSubmitGuess(data json.RawMessage) {
	var payload ws.SubmitGuessPayload
	if err := decode(data, &payload); err != nil {
		p.reject(err)
		return
	}

	room := p.lockRoom()
	if room == nil {
		return
	}

	guess := strings.TrimSpace(payload.Guess)
	topic, err := room.BeginJudging(p.conn, guess, p.relay.opts.RequireDrawingDone)
	if err != nil {
		p.rejectInRoom(room, err)
		room.Unlock()
		return
	}
	round := room.Round()
	room.Unlock()

	drawingScore := domain.ClampScore(payload.DrawingScore)
	p.relay.logger.Debug(logging.Game, logging.SubmitGuess, "judging guess", map[logging.ExtraKey]any{
		logging.RoomID: room.ID(),
		logging.Round:  round,
	})

	p.relay.spawn(func(ctx context.Context) {
		judgment, err := p.relay.judge.JudgeGuess(ctx, topic.Topic, guess)
		p.relay.completeJudgment(room, round, topic, guess, drawingScore, judgment, err)
	})
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return &domain.InputError{Err: errMalformedFrame}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.InputError{Err: errMalformedFrame}
	}
	return nil
}
