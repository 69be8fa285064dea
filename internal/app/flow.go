package app

import (
	"sort"

	"github.com/rs/zerolog/log"

	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/protocol"
)

// The transitions below run with g.mu held. Timers are armed before the
// matching broadcast goes out.

func (e *Engine) startGame(g *Game) {
	g.resetRun(e.rooms.ListPlayers(g.pin))
	epoch := g.epoch
	startsAt := e.clock.Now().Add(e.timing.StartDelay)

	e.scheduler.At(startsAt, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.live(epoch, -1) {
			return
		}
		e.broadcast.SendToRoom(g.pin, protocol.GameStarted{Type: protocol.TypeGameStarted})
		e.nextQuestion(g)
	})

	log.Info().Str("pin", g.pin).Int("questions", g.totalQuestions()).Time("starts_at", startsAt).Msg("game starting")
	e.broadcast.SendToRoom(g.pin, protocol.Starting{Type: protocol.TypeStarting, StartsAt: startsAt.UnixMilli()})
}

func (e *Engine) nextQuestion(g *Game) {
	g.index++
	if g.index >= g.totalQuestions() {
		g.state = domain.StateEnded
		g.accepting = false
		board := e.leaderboard(g)
		log.Info().Str("pin", g.pin).Int("players", len(board)).Msg("game over")
		e.broadcast.SendToRoom(g.pin, protocol.GameOver{
			Type:        protocol.TypeGameOver,
			Leaderboard: board,
			Top3:        top3(board),
		})
		return
	}

	q := g.quiz.Questions[g.index]
	now := e.clock.Now()
	g.startedAt = now
	g.endsAt = now.Add(e.timing.questionDuration(q))
	g.accepting = true
	if _, ok := g.answered[g.index]; !ok {
		g.answered[g.index] = make(map[string]struct{})
	}

	epoch, index := g.epoch, g.index
	e.scheduler.At(g.endsAt.Add(e.timing.Grace), func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.live(epoch, index) || !g.accepting {
			return
		}
		e.closeQuestion(g)
	})

	log.Info().Str("pin", g.pin).Int("index", g.index).Time("ends_at", g.endsAt).Msg("question open")
	e.broadcast.SendToRoom(g.pin, e.questionEvent(g))
}

func (e *Engine) closeQuestion(g *Game) {
	g.accepting = false
	next := e.clock.Now().Add(e.timing.Intermission)
	board := e.leaderboard(g)

	epoch, index := g.epoch, g.index
	e.scheduler.At(next, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !g.live(epoch, index) {
			return
		}
		e.nextQuestion(g)
	})

	log.Info().Str("pin", g.pin).Int("index", g.index).Int("answers", len(g.answered[g.index])).Msg("question closed")
	e.broadcast.SendToRoom(g.pin, protocol.QuestionOver{
		Type:           protocol.TypeQuestionOver,
		Index:          g.index,
		NextQuestionAt: next.UnixMilli(),
		Leaderboard:    board,
		Top3:           top3(board),
	})
}

func (e *Engine) questionEvent(g *Game) protocol.Question {
	q := g.quiz.Questions[g.index]
	return protocol.Question{
		Type:    protocol.TypeQuestion,
		Index:   g.index,
		Total:   g.totalQuestions(),
		Text:    q.Text,
		Choices: q.Choices,
		EndsAt:  g.endsAt.UnixMilli(),
	}
}

// leaderboard ranks the room's current players by score. Ties keep listing order.
func (e *Engine) leaderboard(g *Game) []domain.LeaderboardEntry {
	players := e.rooms.ListPlayers(g.pin)
	board := make([]domain.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		board = append(board, domain.LeaderboardEntry{
			ParticipantID: p.ID,
			DisplayName:   p.DisplayName,
			Score:         g.scores[p.ID],
		})
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].Score > board[j].Score
	})
	return board
}

func top3(board []domain.LeaderboardEntry) []domain.LeaderboardEntry {
	if len(board) > 3 {
		return board[:3]
	}
	return board
}
