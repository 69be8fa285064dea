package app

import (
	"sync"
	"time"

	"quiz-room-service/internal/domain"
)

// Game is the per-PIN session state machine. It outlives the room's
// participants: a host returning to an empty room resumes the same Game.
//
// All fields are guarded by mu; every message handler and timer callback that
// touches a Game holds mu for its whole duration, which serializes work per PIN.
type Game struct {
	pin string
	mu  sync.Mutex

	hostID    string
	state     domain.GameState
	quiz      *domain.Quiz
	index     int
	startedAt time.Time
	endsAt    time.Time
	// accepting is true between a question opening and closing.
	accepting bool
	// epoch is bumped on every start and reset so callbacks armed for an
	// earlier run never match a later one that reached the same index.
	epoch    uint64
	answered map[int]map[string]struct{}
	scores   map[string]int
}

func NewGame(pin string) *Game {
	return &Game{
		pin:      pin,
		state:    domain.StateWaiting,
		index:    -1,
		answered: make(map[int]map[string]struct{}),
		scores:   make(map[string]int),
	}
}

// Pin returns the room PIN the game belongs to.
func (g *Game) Pin() string { return g.pin }

// Snapshot is a read-only view of a game for diagnostics and tests.
type Snapshot struct {
	Pin           string
	HostID        string
	State         domain.GameState
	QuestionIndex int
	Accepting     bool
	QuestionEnds  time.Time
	Scores        map[string]int
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	scores := make(map[string]int, len(g.scores))
	for id, s := range g.scores {
		scores[id] = s
	}
	return Snapshot{
		Pin:           g.pin,
		HostID:        g.hostID,
		State:         g.state,
		QuestionIndex: g.index,
		Accepting:     g.accepting,
		QuestionEnds:  g.endsAt,
		Scores:        scores,
	}
}

func (g *Game) totalQuestions() int {
	if g.quiz == nil {
		return 0
	}
	return len(g.quiz.Questions)
}

// resetRun clears per-run state before a new game starts.
func (g *Game) resetRun(players []domain.Participant) {
	g.epoch++
	g.state = domain.StateRunning
	g.index = -1
	g.accepting = false
	g.startedAt, g.endsAt = time.Time{}, time.Time{}
	g.answered = make(map[int]map[string]struct{})
	g.scores = make(map[string]int, len(players))
	for _, p := range players {
		g.scores[p.ID] = 0
	}
}

// abandon returns a running game to waiting after its host left.
func (g *Game) abandon() {
	g.epoch++
	g.hostID = ""
	g.state = domain.StateWaiting
	g.index = -1
	g.accepting = false
	g.startedAt, g.endsAt = time.Time{}, time.Time{}
}

// live reports whether a callback armed for (epoch, index) still applies.
func (g *Game) live(epoch uint64, index int) bool {
	return g.epoch == epoch && g.state == domain.StateRunning && g.index == index
}

// markAnswered records id for the question and reports whether it was new.
func (g *Game) markAnswered(index int, id string) bool {
	set, ok := g.answered[index]
	if !ok {
		set = make(map[string]struct{})
		g.answered[index] = set
	}
	if _, dup := set[id]; dup {
		return false
	}
	set[id] = struct{}{}
	return true
}
