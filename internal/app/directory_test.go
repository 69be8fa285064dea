package app

import (
	"strings"
	"testing"
	"time"

	"quiz-room-service/internal/domain"
)

func TestRoomDirectoryNameCollisions(t *testing.T) {
	dir := NewRoomDirectory(24, 50, time.Now)

	first := dir.Join("1234", domain.Participant{ID: "a", DisplayName: "Alex", Role: domain.RolePlayer})
	second := dir.Join("1234", domain.Participant{ID: "b", DisplayName: "Alex", Role: domain.RolePlayer})
	third := dir.Join("1234", domain.Participant{ID: "c", DisplayName: "  Alex ", Role: domain.RolePlayer})
	other := dir.Join("5678", domain.Participant{ID: "d", DisplayName: "Alex", Role: domain.RolePlayer})

	if first != "Alex" || second != "Alex 2" || third != "Alex 3" {
		t.Fatalf("unexpected names: %q %q %q", first, second, third)
	}
	if other != "Alex" {
		t.Fatalf("names should only collide within a room, got %q", other)
	}
}

func TestRoomDirectoryTruncatesAndDefaults(t *testing.T) {
	dir := NewRoomDirectory(5, 50, time.Now)

	if got := dir.Join("1234", domain.Participant{ID: "a", DisplayName: "Bartholomew"}); got != "Barth" {
		t.Fatalf("expected truncated name, got %q", got)
	}
	if got := dir.Join("1234", domain.Participant{ID: "b", DisplayName: "   "}); got != defaultDisplayName {
		t.Fatalf("expected default name, got %q", got)
	}
}

func TestRoomDirectoryFallsBackToTimestampSuffix(t *testing.T) {
	fixed := time.Unix(1700000000, 123456789)
	dir := NewRoomDirectory(24, 2, func() time.Time { return fixed })

	dir.Join("1234", domain.Participant{ID: "a", DisplayName: "Sam"})
	dir.Join("1234", domain.Participant{ID: "b", DisplayName: "Sam"})
	got := dir.Join("1234", domain.Participant{ID: "c", DisplayName: "Sam"})

	if got == "Sam" || got == "Sam 2" || !strings.HasPrefix(got, "Sam ") {
		t.Fatalf("expected timestamp suffix, got %q", got)
	}
}

func TestRoomDirectoryLeaveDropsEmptyRoom(t *testing.T) {
	dir := NewRoomDirectory(24, 50, time.Now)
	dir.Join("1234", domain.Participant{ID: "h", DisplayName: "Host", Role: domain.RoleHost})
	dir.Join("1234", domain.Participant{ID: "a", DisplayName: "Alex", Role: domain.RolePlayer})
	dir.Join("1234", domain.Participant{ID: "b", DisplayName: "Blake", Role: domain.RolePlayer})

	players := dir.ListPlayers("1234")
	if len(players) != 2 || players[0].ID != "a" || players[1].ID != "b" {
		t.Fatalf("expected players a, b in join order, got %+v", players)
	}
	if all := dir.ListAll("1234"); len(all) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(all))
	}

	dir.Leave("1234", "a")
	dir.Leave("1234", "b")
	if !dir.Exists("1234") {
		t.Fatalf("room with host should remain")
	}
	dir.Leave("1234", "h")
	if dir.Exists("1234") {
		t.Fatalf("expected empty room removed")
	}

	// A freed name is usable again.
	if got := dir.Join("1234", domain.Participant{ID: "z", DisplayName: "Alex"}); got != "Alex" {
		t.Fatalf("expected freed name reused, got %q", got)
	}
}
