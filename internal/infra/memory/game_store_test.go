package memory

import (
	"testing"

	"quiz-room-service/internal/domain"
)

func TestGameStoreLifecycle(t *testing.T) {
	store := NewGameStore()

	if _, ok := store.Get("1234"); ok {
		t.Fatalf("expected no game before first reference")
	}

	game := store.GetOrCreate("1234")
	if game == nil {
		t.Fatalf("expected game")
	}
	if snap := game.Snapshot(); snap.State != domain.StateWaiting || snap.QuestionIndex != -1 {
		t.Fatalf("expected fresh waiting game, got %+v", snap)
	}
	if again := store.GetOrCreate("1234"); again != game {
		t.Fatalf("expected the same game object for a PIN")
	}
	if got, ok := store.Get("1234"); !ok || got != game {
		t.Fatalf("expected game present")
	}
}
