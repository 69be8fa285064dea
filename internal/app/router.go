package app

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/protocol"
)

const hostDisplayName = "Host"

// HandleMessage decodes one inbound frame from participant id and dispatches it.
// Rejected input is answered with an error event to that participant only.
func (e *Engine) HandleMessage(ctx context.Context, id string, data []byte) {
	msg, err := protocol.Decode(data)
	if err == nil {
		err = e.Dispatch(ctx, id, msg)
	}
	if err != nil {
		log.Debug().Err(err).Str("participant", id).Msg("rejected message")
		e.reply(id, protocol.ErrorFor(err))
	}
}

// Dispatch routes a decoded message. Each handler re-validates its own
// preconditions. Dropped answers return nil.
func (e *Engine) Dispatch(ctx context.Context, id string, msg protocol.Inbound) error {
	switch m := msg.(type) {
	case protocol.Join:
		return e.handleJoin(ctx, id, m)
	case protocol.HostJoin:
		return e.handleHostJoin(ctx, id, m)
	case protocol.HostStart:
		return e.handleHostStart(id, m)
	case protocol.Answer:
		e.handleAnswer(id, m)
		return nil
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnknownMessageType, msg)
	}
}

func (e *Engine) checkPin(ctx context.Context, pin string) error {
	if pin == "" {
		return domain.ErrInvalidPin
	}
	known, err := e.catalog.IsPinKnown(ctx, pin)
	if err != nil {
		return fmt.Errorf("check pin %s: %w", pin, err)
	}
	if !known {
		return domain.ErrInvalidPin
	}
	return nil
}

func (e *Engine) handleJoin(ctx context.Context, id string, m protocol.Join) error {
	pin := strings.TrimSpace(m.Pin)
	if err := e.checkPin(ctx, pin); err != nil {
		return err
	}
	e.detach(id)

	g := e.games.GetOrCreate(pin)
	g.mu.Lock()
	defer g.mu.Unlock()

	name := e.rooms.Join(pin, domain.Participant{ID: id, DisplayName: m.Nickname, Role: domain.RolePlayer})
	if _, ok := g.scores[id]; !ok {
		g.scores[id] = 0
	}
	e.bind(id, pin, domain.RolePlayer)
	log.Info().Str("pin", pin).Str("participant", id).Str("name", name).Msg("player joined")

	e.reply(id, protocol.Welcome{
		Type:    protocol.TypeWelcome,
		ID:      id,
		Pin:     pin,
		Name:    name,
		Players: protocol.Roster(e.rooms.ListPlayers(pin)),
	})
	e.sendRoster(pin)

	if g.state == domain.StateRunning && g.accepting {
		e.reply(id, e.questionEvent(g))
	}
	return nil
}

func (e *Engine) handleHostJoin(ctx context.Context, id string, m protocol.HostJoin) error {
	pin := strings.TrimSpace(m.Pin)
	if err := e.checkPin(ctx, pin); err != nil {
		return err
	}
	room, err := e.catalog.LookupRoom(ctx, pin)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return domain.ErrInvalidPin
	}
	if err != nil {
		return fmt.Errorf("lookup room %s: %w", pin, err)
	}
	if m.HostKey == "" || subtle.ConstantTimeCompare([]byte(m.HostKey), []byte(room.OwnerSecret)) != 1 {
		return domain.ErrInvalidHostKey
	}
	e.detach(id)

	g := e.games.GetOrCreate(pin)
	g.mu.Lock()
	defer g.mu.Unlock()

	e.rooms.Join(pin, domain.Participant{ID: id, DisplayName: hostDisplayName, Role: domain.RoleHost})
	g.hostID = id
	if g.state != domain.StateRunning {
		quiz := room.Quiz
		g.quiz = &quiz
	}
	e.bind(id, pin, domain.RoleHost)
	log.Info().Str("pin", pin).Str("participant", id).Int("questions", g.totalQuestions()).Msg("host joined")

	topic := ""
	if g.quiz != nil {
		topic = g.quiz.Topic
	}
	e.reply(id, protocol.HostWelcome{
		Type:           protocol.TypeHostWelcome,
		ID:             id,
		Pin:            pin,
		Title:          room.Title,
		Topic:          topic,
		State:          g.state,
		QuestionIndex:  g.index,
		TotalQuestions: g.totalQuestions(),
		Players:        protocol.Roster(e.rooms.ListPlayers(pin)),
	})
	e.sendRoster(pin)
	return nil
}

func (e *Engine) handleHostStart(id string, m protocol.HostStart) error {
	pin := strings.TrimSpace(m.Pin)
	g, ok := e.games.Get(pin)
	if !ok {
		return domain.ErrNotHost
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hostID == "" || g.hostID != id {
		return domain.ErrNotHost
	}
	if g.totalQuestions() == 0 {
		return domain.ErrNoQuiz
	}
	e.startGame(g)
	return nil
}

// handleAnswer records an answer if it targets the live question. Anything else
// is dropped without an error event.
func (e *Engine) handleAnswer(id string, m protocol.Answer) {
	pin := strings.TrimSpace(m.Pin)
	g, ok := e.games.Get(pin)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != domain.StateRunning || !g.accepting || g.index != m.QuestionIndex {
		log.Debug().Str("pin", pin).Str("participant", id).Int("index", m.QuestionIndex).Msg("dropped answer outside live question")
		return
	}
	if m.ChoiceIndex < 0 || m.ChoiceIndex >= domain.ChoiceCount {
		return
	}
	if p, ok := e.rooms.Lookup(pin, id); !ok || p.Role != domain.RolePlayer {
		return
	}
	if !g.markAnswered(g.index, id) {
		return
	}

	q := g.quiz.Questions[g.index]
	correct := m.ChoiceIndex == q.CorrectChoiceIndex
	elapsed := e.clock.Now().Sub(g.startedAt).Milliseconds()
	delta := Points(correct, elapsed, g.endsAt.Sub(g.startedAt).Milliseconds())
	g.scores[id] += delta

	e.reply(id, protocol.AnswerResult{
		Type:    protocol.TypeAnswerResult,
		Index:   g.index,
		Correct: correct,
		Delta:   delta,
		Score:   g.scores[id],
	})
}
