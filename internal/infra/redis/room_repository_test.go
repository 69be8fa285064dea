package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/infra/memory"
)

func TestRoomRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		RoomLoader: memory.NewStaticRoomLoader(map[string]domain.Room{
			"1234": sampleRoom(),
		}),
	}
	repo := NewRoomRepository(client, loader, time.Minute)

	room, err := repo.LookupRoom(context.Background(), "1234")
	if err != nil {
		t.Fatalf("lookup room: %v", err)
	}
	if room.Quiz.Questions[0].CorrectChoiceIndex != 1 {
		t.Fatalf("unexpected room: %+v", room)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("quiz:room:1234") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.LookupRoom(context.Background(), "1234")
	if err != nil {
		t.Fatalf("lookup cached room: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.OwnerSecret != "s3cret" || cached.Quiz.Questions[0].Choices[1] != "4" {
		t.Fatalf("cached room lost fields: %+v", cached)
	}
}

func TestRoomRepositoryReloadsAfterExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		RoomLoader: memory.NewStaticRoomLoader(map[string]domain.Room{"1234": sampleRoom()}),
	}
	repo := NewRoomRepository(newClient(mr), loader, 30*time.Second)

	if _, err := repo.LookupRoom(context.Background(), "1234"); err != nil {
		t.Fatalf("lookup room: %v", err)
	}
	mr.FastForward(time.Minute)
	if _, err := repo.LookupRoom(context.Background(), "1234"); err != nil {
		t.Fatalf("lookup room: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestRoomRepositoryDoesNotCacheMisses(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	static := memory.NewStaticRoomLoader(nil)
	repo := NewRoomRepository(newClient(mr), static, time.Minute)

	known, err := repo.IsPinKnown(context.Background(), "1234")
	if err != nil || known {
		t.Fatalf("expected unknown pin, got known=%v err=%v", known, err)
	}

	static.Put(sampleRoom())
	known, err = repo.IsPinKnown(context.Background(), "1234")
	if err != nil || !known {
		t.Fatalf("expected room to become known, got known=%v err=%v", known, err)
	}
}

func TestRoomRepositoryPropagatesLoaderErrors(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	boom := errors.New("db down")
	repo := NewRoomRepository(newClient(mr), failingLoader{err: boom}, time.Minute)

	if _, err := repo.IsPinKnown(context.Background(), "1234"); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}

type countingLoader struct {
	memory.RoomLoader
	calls int
}

func (l *countingLoader) LoadRoom(ctx context.Context, pin string) (domain.Room, error) {
	l.calls++
	return l.RoomLoader.LoadRoom(ctx, pin)
}

type failingLoader struct{ err error }

func (l failingLoader) LoadRoom(context.Context, string) (domain.Room, error) {
	return domain.Room{}, l.err
}

func sampleRoom() domain.Room {
	return domain.Room{
		Pin:         "1234",
		Title:       "Friday trivia",
		OwnerSecret: "s3cret",
		Quiz: domain.Quiz{
			Topic: "Arithmetic",
			Questions: []domain.Question{
				{
					Text:               "What is 2 + 2?",
					Choices:            [domain.ChoiceCount]string{"3", "4", "5", "22"},
					CorrectChoiceIndex: 1,
					TimerSeconds:       10,
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
