package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Conn is the outbound half of a participant's connection. Send must not block;
// it reports false when the connection is closed or cannot take more data.
type Conn interface {
	Send(data []byte) bool
}

// Registry maps ephemeral participant ids to their live outbound connection.
// It is the only way other components reach a participant.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

func (r *Registry) Register(id string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Send serializes event and pushes it to a single participant.
func (r *Registry) Send(id string, event any) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("participant", id).Msg("marshal event")
		return false
	}
	return r.SendRaw(id, data)
}

// SendRaw pushes an already serialized event. Absent or closed connections are a no-op.
func (r *Registry) SendRaw(id string, data []byte) bool {
	r.mu.RLock()
	conn, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return conn.Send(data)
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
