package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/infra/memory"
)

// RoomRepository caches room configuration in Redis and falls back to a loader on cache miss.
// Rooms are stored as JSON: SET quiz:room:{pin} {room} EX ttl
// Unknown PINs are never cached so a room created externally becomes joinable immediately.
type RoomRepository struct {
	client *redis.Client
	loader memory.RoomLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewRoomRepository(client *redis.Client, loader memory.RoomLoader, ttl time.Duration) *RoomRepository {
	return &RoomRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *RoomRepository) LookupRoom(ctx context.Context, pin string) (domain.Room, error) {
	if room, ok := r.cached(ctx, pin); ok {
		return room, nil
	}

	result, err, _ := r.sf.Do(pin, func() (interface{}, error) {
		// Re-check cache in case another caller filled it.
		if room, ok := r.cached(ctx, pin); ok {
			return room, nil
		}

		room, err := r.loader.LoadRoom(ctx, pin)
		if err != nil {
			return domain.Room{}, err
		}

		if ttl := r.ttlWithJitter(); ttl > 0 {
			payload, err := json.Marshal(room)
			if err == nil {
				err = r.client.Set(ctx, r.key(pin), payload, ttl).Err()
			}
			if err != nil {
				log.Warn().Err(err).Str("pin", pin).Msg("cache room")
			}
		}
		return room, nil
	})
	if err != nil {
		return domain.Room{}, err
	}
	return result.(domain.Room), nil
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

// Invalidate drops the cached copy of a room so the next lookup reloads it.
func (r *RoomRepository) Invalidate(ctx context.Context, pin string) error {
	return r.client.Del(ctx, r.key(pin)).Err()
}

func (r *RoomRepository) cached(ctx context.Context, pin string) (domain.Room, bool) {
	payload, err := r.client.Get(ctx, r.key(pin)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("pin", pin).Msg("read cached room")
		}
		return domain.Room{}, false
	}
	var room domain.Room
	if err := json.Unmarshal(payload, &room); err != nil {
		log.Warn().Err(err).Str("pin", pin).Msg("decode cached room")
		return domain.Room{}, false
	}
	return room, true
}

func (r *RoomRepository) key(pin string) string {
	return "quiz:room:" + pin
}

func (r *RoomRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
