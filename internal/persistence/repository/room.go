package repository

import (
	"context"
	"sync"
	"time"

	"github.com/hilthontt/oekaki/internal/domain"
)

const (
	DefaultCapacity       = 1000
	DefaultIdleRoomExpiry = time.Hour
)

type roomRepository struct {
	rooms          map[string]*domain.Room // ID -> Room
	capacity       uint
	idleRoomExpiry time.Duration
	now            func() time.Time
	mu             *sync.RWMutex
}

func NewRoomRepository(capacity uint, idleRoomExpiry time.Duration) domain.RoomRepository {
	return newRoomRepository(capacity, idleRoomExpiry, time.Now)
}

func newRoomRepository(capacity uint, idleRoomExpiry time.Duration, now func() time.Time) *roomRepository {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if idleRoomExpiry == 0 {
		idleRoomExpiry = DefaultIdleRoomExpiry
	}

	return &roomRepository{
		rooms:          make(map[string]*domain.Room),
		capacity:       capacity,
		idleRoomExpiry: idleRoomExpiry,
		now:            now,
		mu:             &sync.RWMutex{},
	}
}

// GetOrCreate returns the stored room or inserts a fully initialised one.
func (r *roomRepository) GetOrCreate(ctx context.Context, id string) (*domain.Room, bool, error) {
	if id == "" {
		return nil, false, domain.ErrInvalidInput
	}

	r.mu.RLock()
	room, exists := r.rooms[id]
	r.mu.RUnlock()
	if exists {
		return room, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after lock
	if room, exists := r.rooms[id]; exists {
		return room, false, nil
	}

	if uint(len(r.rooms)) >= r.capacity {
		return nil, false, domain.ErrRegistryFull
	}

	room = domain.NewRoom(id, r.now())
	r.rooms[id] = room

	return room, true, nil
}

func (r *roomRepository) Get(ctx context.Context, id string) (*domain.Room, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, domain.ErrRoomNotFound
	}

	return room, nil
}

// Remove must be called with the room locked. It is a no-op when the
// room still has an occupant or was already replaced by a newer instance.
func (r *roomRepository) Remove(ctx context.Context, room *domain.Room) error {
	if room == nil || room.ID() == "" {
		return domain.ErrInvalidInput
	}
	if !room.Empty() {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if stored, exists := r.rooms[room.ID()]; exists && stored == room {
		delete(r.rooms, room.ID())
	}

	return nil
}

func (r *roomRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *roomRepository) EvictIdle(ctx context.Context, now time.Time) []*domain.Room {
	cutoff := now.Add(-r.idleRoomExpiry)

	r.mu.RLock()
	candidates := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		candidates = append(candidates, room)
	}
	r.mu.RUnlock()

	var evicted []*domain.Room
	for _, room := range candidates {
		if ctx.Err() != nil {
			break
		}

		// Room locks are always taken before the store lock.
		room.Lock()
		if !room.Removed() && room.LastActive().Before(cutoff) {
			room.MarkRemoved()
			r.mu.Lock()
			if stored, exists := r.rooms[room.ID()]; exists && stored == room {
				delete(r.rooms, room.ID())
			}
			r.mu.Unlock()
			evicted = append(evicted, room)
		}
		room.Unlock()
	}

	return evicted
}
