package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
)

// Dispatcher fans an event out to every participant currently in a room.
type Dispatcher struct {
	rooms    *RoomDirectory
	registry *Registry
}

func NewDispatcher(rooms *RoomDirectory, registry *Registry) *Dispatcher {
	return &Dispatcher{rooms: rooms, registry: registry}
}

// SendToRoom serializes event once and pushes it to each participant of pin.
// Participants without an open connection are skipped; cleanup happens on
// disconnect. It returns the number of participants the event reached.
func (d *Dispatcher) SendToRoom(pin string, event any) int {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("pin", pin).Msg("marshal broadcast")
		return 0
	}
	delivered := 0
	for _, p := range d.rooms.ListAll(pin) {
		if d.registry.SendRaw(p.ID, data) {
			delivered++
		}
	}
	return delivered
}
