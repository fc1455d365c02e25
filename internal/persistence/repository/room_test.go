package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hilthontt/oekaki/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubConn struct{ id string }

func (c *stubConn) ID() string { return c.id }

func (c *stubConn) Send(domain.Event) {}

func TestRoomRepository_GetOrCreate(t *testing.T) {
	repo := NewRoomRepository(10, time.Hour)
	ctx := context.Background()

	room, created, err := repo.GetOrCreate(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "R1", room.ID())

	again, created, err := repo.GetOrCreate(ctx, "R1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, room, again)

	_, _, err = repo.GetOrCreate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRoomRepository_ConcurrentCreateReturnsOneInstance(t *testing.T) {
	repo := NewRoomRepository(10, time.Hour)

	var wg sync.WaitGroup
	rooms := make([]*domain.Room, 32)
	for i := range rooms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, _, err := repo.GetOrCreate(context.Background(), "R1")
			assert.NoError(t, err)
			rooms[i] = room
		}(i)
	}
	wg.Wait()

	for _, room := range rooms {
		assert.Same(t, rooms[0], room)
	}
	assert.Equal(t, 1, repo.Count())
}

func TestRoomRepository_Capacity(t *testing.T) {
	repo := NewRoomRepository(2, time.Hour)
	ctx := context.Background()

	_, _, err := repo.GetOrCreate(ctx, "a")
	require.NoError(t, err)
	_, _, err = repo.GetOrCreate(ctx, "b")
	require.NoError(t, err)

	_, _, err = repo.GetOrCreate(ctx, "c")
	assert.ErrorIs(t, err, domain.ErrRegistryFull)

	_, _, err = repo.GetOrCreate(ctx, "a")
	assert.NoError(t, err, "existing rooms are still reachable at capacity")
}

func TestRoomRepository_Remove(t *testing.T) {
	repo := NewRoomRepository(10, time.Hour)
	ctx := context.Background()

	room, _, err := repo.GetOrCreate(ctx, "R1")
	require.NoError(t, err)

	conn := &stubConn{id: "a"}
	room.Lock()
	require.NoError(t, room.Join(conn, domain.RoleDrawer, "Ann"))
	require.NoError(t, repo.Remove(ctx, room))
	room.Unlock()

	_, err = repo.Get(ctx, "R1")
	require.NoError(t, err, "occupied rooms are not removed")

	room.Lock()
	room.Leave(conn)
	require.NoError(t, repo.Remove(ctx, room))
	room.Unlock()

	_, err = repo.Get(ctx, "R1")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)

	fresh, created, err := repo.GetOrCreate(ctx, "R1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotSame(t, room, fresh)
	assert.Equal(t, 0, fresh.Round())

	// A stale instance never removes its replacement.
	require.NoError(t, repo.Remove(ctx, room))
	_, err = repo.Get(ctx, "R1")
	assert.NoError(t, err)
}

func TestRoomRepository_EvictIdle(t *testing.T) {
	start := time.Now()
	repo := newRoomRepository(10, time.Hour, func() time.Time { return start })
	ctx := context.Background()

	idle, _, err := repo.GetOrCreate(ctx, "idle")
	require.NoError(t, err)
	busy, _, err := repo.GetOrCreate(ctx, "busy")
	require.NoError(t, err)

	conn := &stubConn{id: "a"}
	idle.Lock()
	require.NoError(t, idle.Join(conn, domain.RoleDrawer, "Ann"))
	idle.Unlock()

	busy.Lock()
	busy.Touch(start.Add(50 * time.Minute))
	busy.Unlock()

	evicted := repo.EvictIdle(ctx, start.Add(61*time.Minute))

	require.Len(t, evicted, 1)
	assert.Same(t, idle, evicted[0])
	assert.Equal(t, 1, repo.Count())

	idle.Lock()
	assert.True(t, idle.Removed())
	assert.Len(t, idle.DetachAudience(), 1)
	idle.Unlock()

	assert.Empty(t, repo.EvictIdle(ctx, start.Add(61*time.Minute)))
}
