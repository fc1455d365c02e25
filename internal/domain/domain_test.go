package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct {
	id   string
	sent []Event
}

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Send(evt Event) { c.sent = append(c.sent, evt) }

func newFullRoom(t *testing.T) (*Room, *stubConn, *stubConn) {
	t.Helper()

	room := NewRoom("R1", time.Now())
	drawer, guesser := &stubConn{id: "a"}, &stubConn{id: "b"}
	require.NoError(t, room.Join(drawer, RoleDrawer, "Ann"))
	require.NoError(t, room.Join(guesser, RoleGuesser, "Bea"))
	return room, drawer, guesser
}

func TestNewRoom_Defaults(t *testing.T) {
	room := NewRoom("R1", time.Now())

	assert.Equal(t, RoomState{DrawerName: "Drawer", GuesserName: "Guesser"}, room.Snapshot())
	assert.Equal(t, PhaseIdle, room.Phase())
	assert.True(t, room.Empty())
	_, ok := room.Topic()
	assert.False(t, ok)
}

func TestRoom_JoinSupersedes(t *testing.T) {
	room, first, _ := newFullRoom(t)
	second := &stubConn{id: "c"}

	require.NoError(t, room.Join(second, RoleDrawer, "Cid"))

	assert.Equal(t, "c", room.Drawer().ID())
	assert.Equal(t, "Cid", room.Snapshot().DrawerName)
	assert.Len(t, room.Audience(), 3, "superseded holder stays in the audience")

	_, held := room.RoleOf(first)
	assert.False(t, held)

	assert.False(t, room.Leave(first), "leaving without a slot keeps occupants")
	assert.Equal(t, "c", room.Drawer().ID())
	assert.Len(t, room.Audience(), 2)
}

func TestRoom_JoinInvalidRole(t *testing.T) {
	room := NewRoom("R1", time.Now())
	before := room.Snapshot()

	err := room.Join(&stubConn{id: "a"}, Role("painter"), "x")

	assert.ErrorIs(t, err, ErrInvalidRole)
	assert.Equal(t, before, room.Snapshot())
	assert.Empty(t, room.Audience())
}

func TestRoom_Rebind(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)
	_, err := room.BeginRound(drawer)
	require.NoError(t, err)

	require.NoError(t, room.Rebind(drawer, RoleDrawer, "Ann2"))
	assert.Equal(t, 1, room.Round())
	assert.Equal(t, PhaseTopicPending, room.Phase())
	assert.Equal(t, "Ann2", room.Snapshot().DrawerName)
	assert.Len(t, room.Audience(), 2)

	require.NoError(t, room.Rebind(drawer, RoleGuesser, "Ann3"))
	assert.Nil(t, room.Drawer())
	assert.Equal(t, "a", room.Guesser().ID())
	_, held := room.RoleOf(guesser)
	assert.False(t, held)
	assert.Equal(t, 1, room.Round())

	assert.ErrorIs(t, room.Rebind(drawer, Role("painter"), "x"), ErrInvalidRole)
	assert.Equal(t, "a", room.Guesser().ID(), "invalid role leaves the slots alone")

	room.MarkRemoved()
	assert.ErrorIs(t, room.Rebind(drawer, RoleDrawer, "x"), ErrRoomRemoved)
}

func TestRoom_BeginRoundGuards(t *testing.T) {
	t.Run("incomplete", func(t *testing.T) {
		room := NewRoom("R1", time.Now())
		drawer := &stubConn{id: "a"}
		require.NoError(t, room.Join(drawer, RoleDrawer, "Ann"))
		before := room.Snapshot()

		_, err := room.BeginRound(drawer)
		assert.ErrorIs(t, err, ErrRoomIncomplete)
		assert.Equal(t, before, room.Snapshot())
		assert.Equal(t, PhaseIdle, room.Phase())
	})

	t.Run("not drawer", func(t *testing.T) {
		room, _, guesser := newFullRoom(t)
		before := room.Snapshot()

		_, err := room.BeginRound(guesser)
		assert.ErrorIs(t, err, ErrNotDrawer)
		assert.Equal(t, before, room.Snapshot())
	})

	t.Run("pending", func(t *testing.T) {
		room, drawer, _ := newFullRoom(t)

		round, err := room.BeginRound(drawer)
		require.NoError(t, err)
		assert.Equal(t, 1, round)

		_, err = room.BeginRound(drawer)
		assert.ErrorIs(t, err, ErrRoundPending)
		assert.Equal(t, 1, room.Round())
	})
}

func TestRoom_FullRound(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)

	round, err := room.BeginRound(drawer)
	require.NoError(t, err)
	assert.Equal(t, PhaseTopicPending, room.Phase())

	require.NoError(t, room.ApplyTopic(round, TopicCandidate{Topic: "ねこ", Hint: "動物", Difficulty: 9}))
	topic, ok := room.Topic()
	require.True(t, ok)
	assert.Equal(t, 3, topic.Difficulty)
	assert.Equal(t, PhaseRoundActive, room.Phase())

	_, err = room.FinishDrawing(guesser, 50)
	assert.ErrorIs(t, err, ErrNotDrawer)

	score, err := room.FinishDrawing(drawer, 150)
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
	assert.True(t, room.Snapshot().DrawingDone)
	assert.Equal(t, PhaseDrawingDone, room.Phase())

	_, err = room.BeginJudging(drawer, "犬", false)
	assert.ErrorIs(t, err, ErrNotGuesser)

	_, err = room.BeginJudging(guesser, "   ", false)
	assert.ErrorIs(t, err, ErrEmptyGuess)

	judged, err := room.BeginJudging(guesser, "犬", false)
	require.NoError(t, err)
	assert.Equal(t, "ねこ", judged.Topic)
	assert.Equal(t, PhaseJudging, room.Phase())

	_, err = room.BeginJudging(guesser, "猫", false)
	assert.ErrorIs(t, err, ErrJudgmentPending)
	_, err = room.BeginRound(drawer)
	assert.ErrorIs(t, err, ErrJudgmentPending)

	require.NoError(t, room.ResolveJudging(round))
	_, ok = room.Topic()
	assert.False(t, ok, "topic is cleared when the round resolves")
	assert.Equal(t, PhaseResolved, room.Phase())

	round, err = room.BeginRound(drawer)
	require.NoError(t, err)
	assert.Equal(t, 2, round)
	assert.False(t, room.Snapshot().DrawingDone)
}

func TestRoom_FailuresKeepRound(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)

	round, err := room.BeginRound(drawer)
	require.NoError(t, err)
	require.NoError(t, room.FailTopic(round))
	assert.Equal(t, PhaseIdle, room.Phase())
	assert.Equal(t, 1, room.Round())

	_, err = room.BeginJudging(guesser, "犬", false)
	assert.ErrorIs(t, err, ErrNoActiveTopic)

	round, err = room.BeginRound(drawer)
	require.NoError(t, err)
	assert.Equal(t, 2, round)
	require.NoError(t, room.ApplyTopic(round, TopicCandidate{Topic: "ねこ"}))

	_, err = room.BeginJudging(guesser, "犬", false)
	require.NoError(t, err)
	require.NoError(t, room.FailJudging(round))
	assert.Equal(t, PhaseRoundActive, room.Phase())

	_, err = room.BeginJudging(guesser, "猫", false)
	assert.NoError(t, err, "guesser may resubmit after a judging failure")
}

func TestRoom_StaleCompletions(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)

	round, err := room.BeginRound(drawer)
	require.NoError(t, err)

	assert.ErrorIs(t, room.ApplyTopic(round+1, TopicCandidate{Topic: "x"}), ErrStaleCompletion)
	assert.ErrorIs(t, room.ResolveJudging(round), ErrStaleCompletion)

	room.Leave(drawer)
	room.Leave(guesser)
	room.MarkRemoved()

	assert.ErrorIs(t, room.ApplyTopic(round, TopicCandidate{Topic: "x"}), ErrRoomRemoved)
	assert.ErrorIs(t, room.Join(drawer, RoleDrawer, "Ann"), ErrRoomRemoved)
}

func TestRoom_RequireDrawingDone(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)

	round, err := room.BeginRound(drawer)
	require.NoError(t, err)
	require.NoError(t, room.ApplyTopic(round, TopicCandidate{Topic: "ねこ"}))

	_, err = room.BeginJudging(guesser, "犬", true)
	assert.ErrorIs(t, err, ErrDrawingNotDone)

	_, err = room.FinishDrawing(drawer, 60)
	require.NoError(t, err)
	_, err = room.BeginJudging(guesser, "犬", true)
	assert.NoError(t, err)
}

func TestRoom_LeaveEmpties(t *testing.T) {
	room, drawer, guesser := newFullRoom(t)

	assert.False(t, room.Leave(drawer))
	assert.Equal(t, RoomState{
		GuesserConnected: true,
		DrawerName:       "Ann",
		GuesserName:      "Bea",
	}, room.Snapshot())
	assert.True(t, room.Leave(guesser))
}

func TestTotalScore(t *testing.T) {
	tests := []struct {
		semantic, drawing float64
		want              int
	}{
		{80, 50, 71},
		{0, 100, 30},
		{100, 0, 70},
		{20, 60, 32},
		{100, 100, 100},
		{-10, 200, 30},
		{5, 5, 5},
		{1, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalScore(tt.semantic, tt.drawing), "semantic=%v drawing=%v", tt.semantic, tt.drawing)
	}
}

func TestNewRoundResult(t *testing.T) {
	result := NewRoundResult(1, TopicCandidate{Topic: "ねこ"}, " 犬 ", Judgment{Score: 20, Reason: "違う"}, 60)

	assert.Equal(t, RoundResult{
		Round:        1,
		Topic:        "ねこ",
		Guess:        "犬",
		GuessScore:   20,
		DrawingScore: 60,
		TotalScore:   32,
		Reason:       "違う",
	}, result)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		raw  string
		role Role
		want string
	}{
		{"  Ann  ", RoleDrawer, "Ann"},
		{"", RoleDrawer, "Drawer"},
		{" \t ", RoleGuesser, "Guesser"},
		{"Be\x00a\n", RoleGuesser, "Bea"},
		{"あいうえおかきくけこさしすせそたちつてとなにぬ", RoleGuesser, "あいうえおかきくけこさしすせそたちつてと"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeName(tt.raw, tt.role, 20))
	}
}

func TestNormalizeRoomID(t *testing.T) {
	id, err := NormalizeRoomID("  R1 ", 64)
	require.NoError(t, err)
	assert.Equal(t, "R1", id)

	_, err = NormalizeRoomID("   ", 64)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = NormalizeRoomID("abcdef", 5)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" drawer ")
	require.NoError(t, err)
	assert.Equal(t, RoleDrawer, role)

	_, err = ParseRole("Drawer")
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestNewRoomAuditLog(t *testing.T) {
	evt := NewRoomEvent(EventRoundResolved, "R1")
	evt.Round = 2
	evt.Result = &RoundResult{Topic: "ねこ", TotalScore: 32}

	log := NewRoomAuditLog(evt)

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, "R1", log.RoomID)
	assert.Equal(t, EventRoundResolved, log.EventType)
	assert.Equal(t, 2, log.Metadata["round"])
	assert.Equal(t, "ねこ", log.Metadata["topic"])
	assert.Equal(t, 32, log.Metadata["total_score"])
}
