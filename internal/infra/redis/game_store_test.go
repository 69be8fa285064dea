package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestGameStoreMarksGamesLive(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewGameStore(newClient(mr), time.Minute)

	game := store.GetOrCreate("1234")
	if !mr.Exists("quiz:game:1234") {
		t.Fatalf("expected redis key to be set")
	}
	if again := store.GetOrCreate("1234"); again != game {
		t.Fatalf("expected the same game for the same pin")
	}
	if _, ok := store.Get("9999"); ok {
		t.Fatalf("expected no game for unused pin")
	}

	live, err := store.Live(context.Background(), "1234")
	if err != nil || !live {
		t.Fatalf("expected live marker, got live=%v err=%v", live, err)
	}
}

func TestGameStoreRefreshesMarkerInBackground(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewGameStore(newClient(mr), time.Minute)
	store.now = func() time.Time { return now }
	_ = store.GetOrCreate("1234")

	mr.FastForward(2 * time.Minute)
	now = now.Add(2 * time.Minute)
	if mr.Exists("quiz:game:1234") {
		t.Fatalf("expected marker to expire")
	}

	if _, ok := store.Get("1234"); !ok {
		t.Fatalf("expected resident game")
	}
	waitFor(t, func() bool { return mr.Exists("quiz:game:1234") })
	if ttl := mr.TTL("quiz:game:1234"); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %s", ttl)
	}
}

func TestGameStoreThrottlesRefresh(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewGameStore(newClient(mr), time.Minute)
	store.now = func() time.Time { return now }
	_ = store.GetOrCreate("1234")

	mr.Del("quiz:game:1234")
	now = now.Add(10 * time.Second)
	for i := 0; i < 5; i++ {
		store.Get("1234")
	}
	time.Sleep(50 * time.Millisecond)
	if mr.Exists("quiz:game:1234") {
		t.Fatalf("expected no refresh within half the ttl")
	}
}

func TestGameStoreLookupDoesNotWaitOnRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewGameStore(newClient(mr), time.Minute)
	store.now = func() time.Time { return now }
	_ = store.GetOrCreate("1234")

	// With Redis gone the refresh fails in the background; the lookup itself stays fast.
	mr.Close()
	now = now.Add(time.Minute)
	start := time.Now()
	if _, ok := store.Get("1234"); !ok {
		t.Fatalf("expected resident game")
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Fatalf("lookup blocked on redis for %s", elapsed)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within a second")
}
