package app

import (
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"quiz-room-service/internal/domain"
)

const defaultDisplayName = "Player"

// RoomDirectory maps a PIN to the participants currently connected to it.
// Rooms are created on first join and dropped once empty; game sessions are
// not touched by either.
type RoomDirectory struct {
	mu         sync.RWMutex
	rooms      map[string]*room
	maxNameLen int
	probes     int
	now        func() time.Time
}

type room struct {
	order   []string
	members map[string]domain.Participant
}

func NewRoomDirectory(maxNameLen, probes int, now func() time.Time) *RoomDirectory {
	if maxNameLen <= 0 {
		maxNameLen = 24
	}
	if probes < 2 {
		probes = 2
	}
	if now == nil {
		now = time.Now
	}
	return &RoomDirectory{
		rooms:      make(map[string]*room),
		maxNameLen: maxNameLen,
		probes:     probes,
		now:        now,
	}
}

// Join adds p to the room and returns the display name it was given.
func (d *RoomDirectory) Join(pin string, p domain.Participant) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[pin]
	if !ok {
		r = &room{members: make(map[string]domain.Participant)}
		d.rooms[pin] = r
	}
	if _, exists := r.members[p.ID]; !exists {
		r.order = append(r.order, p.ID)
	} else {
		delete(r.members, p.ID)
	}

	p.DisplayName = d.uniqueName(r, p.DisplayName)
	r.members[p.ID] = p
	return p.DisplayName
}

func (d *RoomDirectory) uniqueName(r *room, requested string) string {
	name := strings.TrimSpace(requested)
	if utf8.RuneCountInString(name) > d.maxNameLen {
		name = strings.TrimSpace(string([]rune(name)[:d.maxNameLen]))
	}
	if name == "" {
		name = defaultDisplayName
	}

	taken := make(map[string]struct{}, len(r.members))
	for _, m := range r.members {
		taken[m.DisplayName] = struct{}{}
	}
	if _, used := taken[name]; !used {
		return name
	}
	for n := 2; n <= d.probes; n++ {
		candidate := name + " " + strconv.Itoa(n)
		if _, used := taken[candidate]; !used {
			return candidate
		}
	}
	return name + " " + strconv.FormatInt(d.now().UnixNano()%1_000_000, 10)
}

// Leave removes a participant and drops the room once nobody is left.
func (d *RoomDirectory) Leave(pin, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[pin]
	if !ok {
		return
	}
	if _, ok := r.members[id]; !ok {
		return
	}
	delete(r.members, id)
	for i, member := range r.order {
		if member == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if len(r.members) == 0 {
		delete(d.rooms, pin)
	}
}

// Lookup returns a single participant of a room.
func (d *RoomDirectory) Lookup(pin, id string) (domain.Participant, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[pin]
	if !ok {
		return domain.Participant{}, false
	}
	p, ok := r.members[id]
	return p, ok
}

// ListPlayers returns the room's players in join order, host excluded.
func (d *RoomDirectory) ListPlayers(pin string) []domain.Participant {
	return d.list(pin, func(p domain.Participant) bool { return p.Role == domain.RolePlayer })
}

// ListAll returns every participant of the room in join order.
func (d *RoomDirectory) ListAll(pin string) []domain.Participant {
	return d.list(pin, func(domain.Participant) bool { return true })
}

func (d *RoomDirectory) list(pin string, keep func(domain.Participant) bool) []domain.Participant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[pin]
	if !ok {
		return nil
	}
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		if p := r.members[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Exists reports whether a room currently has any participant.
func (d *RoomDirectory) Exists(pin string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[pin]
	return ok
}
