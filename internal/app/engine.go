package app

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/protocol"
)

// GameRepository abstracts where game sessions live (in-memory, Redis-marked, etc).
// Sessions are created on first reference and are never deleted by the engine.
type GameRepository interface {
	GetOrCreate(pin string) *Game
	Get(pin string) (*Game, bool)
}

// RoomCatalog reads externally stored room configuration.
type RoomCatalog interface {
	LookupRoom(ctx context.Context, pin string) (domain.Room, error)
	IsPinKnown(ctx context.Context, pin string) (bool, error)
}

// Timing holds the game clock and naming limits.
type Timing struct {
	StartDelay      time.Duration
	Intermission    time.Duration
	Grace           time.Duration
	MinQuestion     time.Duration
	MaxQuestion     time.Duration
	DefaultQuestion time.Duration
	NameMaxLength   int
	NameProbes      int
}

func DefaultTiming() Timing {
	return Timing{
		StartDelay:      3 * time.Second,
		Intermission:    5 * time.Second,
		Grace:           300 * time.Millisecond,
		MinQuestion:     5 * time.Second,
		MaxQuestion:     120 * time.Second,
		DefaultQuestion: 20 * time.Second,
		NameMaxLength:   24,
		NameProbes:      50,
	}
}

// questionDuration clamps a question's configured timer into the allowed range.
func (t Timing) questionDuration(q domain.Question) time.Duration {
	d := t.DefaultQuestion
	switch {
	case q.TimerSeconds <= 0:
	case t.MaxQuestion > 0 && q.TimerSeconds > int(t.MaxQuestion/time.Second):
		// compared in seconds so huge values cannot overflow the conversion
		return t.MaxQuestion
	case int64(q.TimerSeconds) > int64(math.MaxInt64/time.Second):
		d = math.MaxInt64
	default:
		d = time.Duration(q.TimerSeconds) * time.Second
	}
	if d < t.MinQuestion {
		d = t.MinQuestion
	}
	if t.MaxQuestion > 0 && d > t.MaxQuestion {
		d = t.MaxQuestion
	}
	return d
}

type binding struct {
	pin  string
	role domain.Role
}

// Engine is the session server core: it routes inbound messages, drives each
// room's game clock and fans state out to participants.
type Engine struct {
	catalog   RoomCatalog
	games     GameRepository
	rooms     *RoomDirectory
	registry  *Registry
	broadcast *Dispatcher
	scheduler *Scheduler
	clock     clockwork.Clock
	timing    Timing

	mu       sync.Mutex
	bindings map[string]binding
}

func NewEngine(catalog RoomCatalog, games GameRepository, registry *Registry, clock clockwork.Clock, timing Timing) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rooms := NewRoomDirectory(timing.NameMaxLength, timing.NameProbes, clock.Now)
	return &Engine{
		catalog:   catalog,
		games:     games,
		rooms:     rooms,
		registry:  registry,
		broadcast: NewDispatcher(rooms, registry),
		scheduler: NewScheduler(clock),
		clock:     clock,
		timing:    timing,
		bindings:  make(map[string]binding),
	}
}

// Rooms exposes the room directory.
func (e *Engine) Rooms() *RoomDirectory { return e.rooms }

// Games exposes the game repository.
func (e *Engine) Games() GameRepository { return e.games }

// Connect registers a new connection and returns its participant id.
func (e *Engine) Connect(conn Conn) string {
	id := uuid.NewString()
	e.registry.Register(id, conn)
	log.Debug().Str("participant", id).Msg("connected")
	return id
}

// Disconnect removes a participant from its room and the registry. A host
// leaving a running game resets that game to waiting.
func (e *Engine) Disconnect(id string) {
	e.detach(id)
	e.registry.Unregister(id)
	log.Debug().Str("participant", id).Msg("disconnected")
}

// Shutdown releases outstanding timers.
func (e *Engine) Shutdown() {
	e.scheduler.Stop()
}

func (e *Engine) bind(id, pin string, role domain.Role) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bindings[id] = binding{pin: pin, role: role}
}

func (e *Engine) unbind(id string) (binding, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	b, ok := e.bindings[id]
	delete(e.bindings, id)
	return b, ok
}

// detach takes a participant out of whatever room it is bound to.
func (e *Engine) detach(id string) {
	b, ok := e.unbind(id)
	if !ok {
		return
	}
	g, ok := e.games.Get(b.pin)
	if !ok {
		e.rooms.Leave(b.pin, id)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	e.rooms.Leave(b.pin, id)
	delete(g.scores, id)
	if g.hostID == id {
		if g.state == domain.StateRunning {
			g.abandon()
			log.Info().Str("pin", b.pin).Msg("host left running game")
			e.broadcast.SendToRoom(b.pin, protocol.HostLeft{Type: protocol.TypeHostLeft})
		} else {
			g.hostID = ""
		}
	}
	e.sendRoster(b.pin)
}

func (e *Engine) sendRoster(pin string) {
	e.broadcast.SendToRoom(pin, protocol.RoomUpdate{
		Type:    protocol.TypeRoomUpdate,
		Players: protocol.Roster(e.rooms.ListPlayers(pin)),
	})
}

func (e *Engine) reply(id string, event any) {
	e.registry.Send(id, event)
}
