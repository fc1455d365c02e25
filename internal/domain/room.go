package domain

import (
	"context"
	"strings"
	"sync"
	"time"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTopicPending
	PhaseRoundActive
	PhaseDrawingDone
	PhaseJudging
	PhaseResolved
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseTopicPending:
		return "topic_pending"
	case PhaseRoundActive:
		return "round_active"
	case PhaseDrawingDone:
		return "drawing_done"
	case PhaseJudging:
		return "judging"
	case PhaseResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// RoomState is the occupancy snapshot broadcast to the whole room.
type RoomState struct {
	DrawerConnected  bool   `json:"drawerConnected"`
	GuesserConnected bool   `json:"guesserConnected"`
	DrawerName       string `json:"drawerName"`
	GuesserName      string `json:"guesserName"`
	Round            int    `json:"round"`
	DrawingDone      bool   `json:"drawingDone"`
}

// Room is one game session. All methods except ID must be called with the
// room locked.
type Room struct {
	mu sync.Mutex

	id         string
	createdAt  time.Time
	lastActive time.Time
	removed    bool

	drawer      Connection
	guesser     Connection
	drawerName  string
	guesserName string
	audience    []Connection

	round       int
	phase       Phase
	topic       *TopicCandidate
	drawingDone bool
}

type RoomRepository interface {
	GetOrCreate(ctx context.Context, id string) (room *Room, created bool, err error)
	Get(ctx context.Context, id string) (*Room, error)
	// Remove deletes exactly this instance, and only once both slots are empty.
	Remove(ctx context.Context, room *Room) error
	Count() int
	// EvictIdle marks rooms idle since before now-expiry as removed, drops
	// them and returns them with their audience still attached.
	EvictIdle(ctx context.Context, now time.Time) []*Room
}

func NewRoom(id string, now time.Time) *Room {
	return &Room{
		id:          id,
		createdAt:   now,
		lastActive:  now,
		drawerName:  RoleDrawer.DefaultName(),
		guesserName: RoleGuesser.DefaultName(),
		phase:       PhaseIdle,
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) Lock() { r.mu.Lock() }

func (r *Room) Unlock() { r.mu.Unlock() }

func (r *Room) CreatedAt() time.Time { return r.createdAt }

func (r *Room) LastActive() time.Time { return r.lastActive }

func (r *Room) Touch(now time.Time) {
	if now.After(r.lastActive) {
		r.lastActive = now
	}
}

func (r *Room) Removed() bool { return r.removed }

// MarkRemoved takes the room out of play. The audience is kept until
// DetachAudience so the caller can notify it.
func (r *Room) MarkRemoved() {
	r.removed = true
	r.drawer = nil
	r.guesser = nil
	r.topic = nil
}

func (r *Room) DetachAudience() []Connection {
	audience := r.audience
	r.audience = nil
	return audience
}

func (r *Room) Round() int { return r.round }

func (r *Room) Phase() Phase { return r.phase }

func (r *Room) Drawer() Connection { return r.drawer }

func (r *Room) Guesser() Connection { return r.guesser }

func (r *Room) Empty() bool { return r.drawer == nil && r.guesser == nil }

// Audience returns every connection that joined the room, in join order.
func (r *Room) Audience() []Connection {
	out := make([]Connection, len(r.audience))
	copy(out, r.audience)
	return out
}

func (r *Room) Snapshot() RoomState {
	return RoomState{
		DrawerConnected:  r.drawer != nil,
		GuesserConnected: r.guesser != nil,
		DrawerName:       r.drawerName,
		GuesserName:      r.guesserName,
		Round:            r.round,
		DrawingDone:      r.drawingDone,
	}
}

// Topic returns the current secret topic, if any.
func (r *Room) Topic() (TopicCandidate, bool) {
	if r.topic == nil {
		return TopicCandidate{}, false
	}
	return *r.topic, true
}

func (r *Room) RoleOf(conn Connection) (Role, bool) {
	switch {
	case conn == nil:
		return "", false
	case r.drawer != nil && r.drawer.ID() == conn.ID():
		return RoleDrawer, true
	case r.guesser != nil && r.guesser.ID() == conn.ID():
		return RoleGuesser, true
	}
	return "", false
}

func (r *Room) isDrawer(conn Connection) bool {
	return conn != nil && r.drawer != nil && r.drawer.ID() == conn.ID()
}

func (r *Room) isGuesser(conn Connection) bool {
	return conn != nil && r.guesser != nil && r.guesser.ID() == conn.ID()
}

func (r *Room) inAudience(conn Connection) int {
	for i, c := range r.audience {
		if c.ID() == conn.ID() {
			return i
		}
	}
	return -1
}

// Join binds conn to the role slot, superseding any previous holder
// without disconnecting it.
func (r *Room) Join(conn Connection, role Role, name string) error {
	if r.removed {
		return ErrRoomRemoved
	}

	switch role {
	case RoleDrawer:
		r.drawer = conn
		r.drawerName = name
	case RoleGuesser:
		r.guesser = conn
		r.guesserName = name
	default:
		return ErrInvalidRole
	}

	if r.inAudience(conn) < 0 {
		r.audience = append(r.audience, conn)
	}

	return nil
}

// Rebind moves conn to role inside the same room. The slot conn held in the
// other role is released; round, phase and topic are left as they are.
func (r *Room) Rebind(conn Connection, role Role, name string) error {
	if r.removed {
		return ErrRoomRemoved
	}

	switch role {
	case RoleDrawer:
		if r.isGuesser(conn) {
			r.guesser = nil
		}
	case RoleGuesser:
		if r.isDrawer(conn) {
			r.drawer = nil
		}
	default:
		return ErrInvalidRole
	}

	return r.Join(conn, role, name)
}

// Leave clears every slot held by conn and drops it from the audience.
// It reports whether both slots are now empty.
func (r *Room) Leave(conn Connection) bool {
	if r.isDrawer(conn) {
		r.drawer = nil
	}
	if r.isGuesser(conn) {
		r.guesser = nil
	}
	if i := r.inAudience(conn); i >= 0 {
		r.audience = append(r.audience[:i], r.audience[i+1:]...)
	}
	return r.Empty()
}

// BeginRound validates a start request and moves to PhaseTopicPending.
func (r *Room) BeginRound(conn Connection) (int, error) {
	switch {
	case r.removed:
		return 0, ErrRoomRemoved
	case r.drawer == nil || r.guesser == nil:
		return 0, ErrRoomIncomplete
	case !r.isDrawer(conn):
		return 0, ErrNotDrawer
	case r.phase == PhaseTopicPending:
		return 0, ErrRoundPending
	case r.phase == PhaseJudging:
		return 0, ErrJudgmentPending
	}

	r.round++
	r.drawingDone = false
	r.topic = nil
	r.phase = PhaseTopicPending

	return r.round, nil
}

func (r *Room) checkCompletion(round int, want Phase) error {
	if r.removed {
		return ErrRoomRemoved
	}
	if round != r.round || r.phase != want {
		return ErrStaleCompletion
	}
	return nil
}

func (r *Room) ApplyTopic(round int, candidate TopicCandidate) error {
	if err := r.checkCompletion(round, PhaseTopicPending); err != nil {
		return err
	}

	candidate.Difficulty = ClampDifficulty(candidate.Difficulty)
	r.topic = &candidate
	r.phase = PhaseRoundActive

	return nil
}

// FailTopic leaves the round number in place.
func (r *Room) FailTopic(round int) error {
	if err := r.checkCompletion(round, PhaseTopicPending); err != nil {
		return err
	}

	r.phase = PhaseIdle
	return nil
}

func (r *Room) FinishDrawing(conn Connection, score float64) (float64, error) {
	if r.removed {
		return 0, ErrRoomRemoved
	}
	if !r.isDrawer(conn) {
		return 0, ErrNotDrawer
	}

	r.drawingDone = true
	if r.phase == PhaseRoundActive {
		r.phase = PhaseDrawingDone
	}

	return ClampScore(score), nil
}

// BeginJudging validates a guess and moves to PhaseJudging. The returned
// topic is what the guess must be judged against.
func (r *Room) BeginJudging(conn Connection, guess string, requireDrawingDone bool) (TopicCandidate, error) {
	switch {
	case r.removed:
		return TopicCandidate{}, ErrRoomRemoved
	case !r.isGuesser(conn):
		return TopicCandidate{}, ErrNotGuesser
	case r.phase == PhaseJudging:
		return TopicCandidate{}, ErrJudgmentPending
	case r.phase == PhaseTopicPending:
		return TopicCandidate{}, ErrRoundPending
	case r.topic == nil:
		return TopicCandidate{}, ErrNoActiveTopic
	case strings.TrimSpace(guess) == "":
		return TopicCandidate{}, ErrEmptyGuess
	case requireDrawingDone && !r.drawingDone:
		return TopicCandidate{}, ErrDrawingNotDone
	}

	r.phase = PhaseJudging
	return *r.topic, nil
}

// ResolveJudging ends the round; the topic is no longer secret.
func (r *Room) ResolveJudging(round int) error {
	if err := r.checkCompletion(round, PhaseJudging); err != nil {
		return err
	}

	r.topic = nil
	r.phase = PhaseResolved
	return nil
}

// FailJudging keeps the topic so the guesser can submit again.
func (r *Room) FailJudging(round int) error {
	if err := r.checkCompletion(round, PhaseJudging); err != nil {
		return err
	}

	if r.drawingDone {
		r.phase = PhaseDrawingDone
	} else {
		r.phase = PhaseRoundActive
	}
	return nil
}
