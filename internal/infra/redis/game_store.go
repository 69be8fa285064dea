package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"quiz-room-service/internal/app"
)

// markerTimeout bounds each liveness write so a slow Redis never stalls a room.
const markerTimeout = 250 * time.Millisecond

// GameStore is a Redis-aware implementation of app.GameRepository.
// Games live in a local map because timers and connections are process-local;
// Redis only carries a liveness marker per PIN so operators can see which rooms
// a node is serving. Lookups never wait on Redis: the marker is refreshed in the
// background, at most once per half TTL.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	games   map[string]*app.Game
	touched map[string]time.Time
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{
		client:  client,
		ttl:     ttl,
		now:     time.Now,
		games:   make(map[string]*app.Game),
		touched: make(map[string]time.Time),
	}
}

func (s *GameStore) GetOrCreate(pin string) *app.Game {
	s.mu.Lock()
	game, ok := s.games[pin]
	if !ok {
		game = app.NewGame(pin)
		s.games[pin] = game
	}
	s.mu.Unlock()

	if !ok {
		s.mark(pin)
	} else {
		s.refresh(pin)
	}
	return game
}

func (s *GameStore) Get(pin string) (*app.Game, bool) {
	s.mu.RLock()
	game, ok := s.games[pin]
	s.mu.RUnlock()
	if ok {
		s.refresh(pin)
	}
	return game, ok
}

// Live reports whether any node has marked the PIN live recently.
func (s *GameStore) Live(ctx context.Context, pin string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(pin)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// mark writes the marker for a new game. It runs on the join path only.
func (s *GameStore) mark(pin string) {
	s.mu.Lock()
	s.touched[pin] = s.now()
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	if err := s.client.Set(ctx, s.key(pin), "1", s.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("pin", pin).Msg("mark game live")
	}
}

// refresh schedules a background marker refresh when the last one is older
// than half the TTL.
func (s *GameStore) refresh(pin string) {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	s.mu.Lock()
	if now.Sub(s.touched[pin]) < s.ttl/2 {
		s.mu.Unlock()
		return
	}
	s.touched[pin] = now
	s.mu.Unlock()

	go s.touch(pin)
}

func (s *GameStore) touch(pin string) {
	ctx, cancel := context.WithTimeout(context.Background(), markerTimeout)
	defer cancel()
	ok, err := s.client.Expire(ctx, s.key(pin), s.ttl).Result()
	if err == nil && !ok {
		// marker expired while the game stayed resident
		err = s.client.Set(ctx, s.key(pin), "1", s.ttl).Err()
	}
	if err != nil {
		log.Warn().Err(err).Str("pin", pin).Msg("refresh game marker")
	}
}

func (s *GameStore) key(pin string) string {
	return "quiz:game:" + pin
}
