package memory

import (
	"sync"

	"quiz-room-service/internal/app"
)

// GameStore is an in-memory implementation of app.GameRepository.
type GameStore struct {
	mu    sync.RWMutex
	games map[string]*app.Game
}

func NewGameStore() *GameStore {
	return &GameStore{
		games: make(map[string]*app.Game),
	}
}

func (s *GameStore) GetOrCreate(pin string) *app.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[pin]; ok {
		return game
	}
	game := app.NewGame(pin)
	s.games[pin] = game
	return game
}

func (s *GameStore) Get(pin string) (*app.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[pin]
	return game, ok
}
