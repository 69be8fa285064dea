package memory

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	"quiz-room-service/internal/domain"
)

// RoomLoader fetches room configuration from a backing store (e.g., Postgres).
type RoomLoader interface {
	LoadRoom(ctx context.Context, pin string) (domain.Room, error)
}

// RoomRepository caches rooms with a short TTL so external edits are picked up
// without hitting the loader on every join. Misses are never cached.
type RoomRepository struct {
	loader RoomLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedRoom
}

type cachedRoom struct {
	room      domain.Room
	expiresAt time.Time
}

func NewRoomRepository(loader RoomLoader, ttl time.Duration) *RoomRepository {
	return &RoomRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedRoom),
	}
}

func (r *RoomRepository) LookupRoom(ctx context.Context, pin string) (domain.Room, error) {
	if room, ok := r.fresh(pin); ok {
		return room, nil
	}
	return r.load(ctx, pin)
}

// load collapses concurrent misses for a PIN into one loader call. Callers that
// queued behind a finished load are served from the cache it filled.
func (r *RoomRepository) load(ctx context.Context, pin string) (domain.Room, error) {
	v, err, _ := r.sf.Do(pin, func() (interface{}, error) {
		if room, ok := r.fresh(pin); ok {
			return room, nil
		}
		room, err := r.loader.LoadRoom(ctx, pin)
		if err != nil {
			return nil, err
		}
		r.store(pin, room)
		return room, nil
	})
	if err != nil {
		return domain.Room{}, err
	}
	return v.(domain.Room), nil
}

func (r *RoomRepository) fresh(pin string) (domain.Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[pin]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Room{}, false
	}
	return entry.room, true
}

func (r *RoomRepository) store(pin string, room domain.Room) {
	ttl := r.ttlWithJitter()
	if ttl <= 0 {
		return
	}
	r.mu.Lock()
	r.cache[pin] = cachedRoom{room: room, expiresAt: r.clock().Add(ttl)}
	r.mu.Unlock()
}

func (r *RoomRepository) IsPinKnown(ctx context.Context, pin string) (bool, error) {
	_, err := r.LookupRoom(ctx, pin)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RoomRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticRoomLoader is a loader backed by an in-memory map (useful for tests/demos).
type StaticRoomLoader struct {
	mu    sync.RWMutex
	rooms map[string]domain.Room
}

func NewStaticRoomLoader(rooms map[string]domain.Room) *StaticRoomLoader {
	copied := make(map[string]domain.Room, len(rooms))
	for pin, room := range rooms {
		if room.Pin == "" {
			room.Pin = pin
		}
		copied[pin] = room
	}
	return &StaticRoomLoader{rooms: copied}
}

func (l *StaticRoomLoader) LoadRoom(_ context.Context, pin string) (domain.Room, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if room, ok := l.rooms[pin]; ok {
		return room, nil
	}
	return domain.Room{}, domain.ErrRoomNotFound
}

// Put adds or replaces a room, standing in for an external edit.
func (l *StaticRoomLoader) Put(room domain.Room) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rooms[room.Pin] = room
}

type roomsFile struct {
	Rooms []domain.Room `yaml:"rooms"`
}

// LoadRoomsFile reads a YAML list of rooms keyed by their PIN.
func LoadRoomsFile(path string) (map[string]domain.Room, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file roomsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rooms file: %w", err)
	}
	rooms := make(map[string]domain.Room, len(file.Rooms))
	for _, room := range file.Rooms {
		if room.Pin == "" {
			return nil, fmt.Errorf("parse rooms file: room %q has no pin", room.Title)
		}
		rooms[room.Pin] = room
	}
	return rooms, nil
}
