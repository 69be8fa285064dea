package protocol

import (
	"errors"

	"quiz-room-service/internal/domain"
)

// Server -> Client
const (
	TypeWelcome      Type = "welcome"
	TypeHostWelcome  Type = "host_welcome"
	TypeRoomUpdate   Type = "room_update"
	TypeStarting     Type = "starting"
	TypeGameStarted  Type = "game_started"
	TypeQuestion     Type = "question"
	TypeAnswerResult Type = "answer_result"
	TypeQuestionOver Type = "question_over"
	TypeGameOver     Type = "game_over"
	TypeHostLeft     Type = "host_left"
	TypeError        Type = "error"
)

// Error codes carried by error events.
const (
	CodeBadRequest     = "bad_request"
	CodeInvalidPin     = "invalid_pin"
	CodeInvalidHostKey = "invalid_host_key"
	CodeNotHost        = "not_host"
	CodeNoQuiz         = "no_quiz"
	CodeUnknownType    = "unknown_type"
	CodeInternal       = "internal"
)

// Player is a roster line.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Welcome struct {
	Type    Type     `json:"type"`
	ID      string   `json:"id"`
	Pin     string   `json:"pin"`
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

type HostWelcome struct {
	Type           Type             `json:"type"`
	ID             string           `json:"id"`
	Pin            string           `json:"pin"`
	Title          string           `json:"title"`
	Topic          string           `json:"topic"`
	State          domain.GameState `json:"state"`
	QuestionIndex  int              `json:"questionIndex"`
	TotalQuestions int              `json:"totalQuestions"`
	Players        []Player         `json:"players"`
}

type RoomUpdate struct {
	Type    Type     `json:"type"`
	Players []Player `json:"players"`
}

type Starting struct {
	Type     Type  `json:"type"`
	StartsAt int64 `json:"startsAt"` // unix millis
}

type GameStarted struct {
	Type Type `json:"type"`
}

// Question is the live question payload. It never carries the correct choice.
type Question struct {
	Type    Type                       `json:"type"`
	Index   int                        `json:"index"`
	Total   int                        `json:"total"`
	Text    string                     `json:"text"`
	Choices [domain.ChoiceCount]string `json:"choices"`
	EndsAt  int64                      `json:"endsAt"` // unix millis
}

type AnswerResult struct {
	Type    Type `json:"type"`
	Index   int  `json:"index"`
	Correct bool `json:"correct"`
	Delta   int  `json:"delta"`
	Score   int  `json:"score"`
}

type QuestionOver struct {
	Type           Type                      `json:"type"`
	Index          int                       `json:"index"`
	NextQuestionAt int64                     `json:"nextQuestionAt"` // unix millis
	Leaderboard    []domain.LeaderboardEntry `json:"leaderboard"`
	Top3           []domain.LeaderboardEntry `json:"top3"`
}

type GameOver struct {
	Type        Type                      `json:"type"`
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
	Top3        []domain.LeaderboardEntry `json:"top3"`
}

type HostLeft struct {
	Type Type `json:"type"`
}

type Error struct {
	Type    Type   `json:"type"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Roster converts participants into roster lines, preserving order.
func Roster(participants []domain.Participant) []Player {
	players := make([]Player, 0, len(participants))
	for _, p := range participants {
		players = append(players, Player{ID: p.ID, Name: p.DisplayName})
	}
	return players
}

// ErrorFor maps a rejected-input error onto the error event sent back to the
// originating connection.
func ErrorFor(err error) Error {
	ev := Error{Type: TypeError}
	switch {
	case errors.Is(err, domain.ErrMalformedMessage):
		ev.Code, ev.Message = CodeBadRequest, "could not parse message"
	case errors.Is(err, domain.ErrUnknownMessageType):
		ev.Code, ev.Message = CodeUnknownType, "unknown message type"
	case errors.Is(err, domain.ErrInvalidPin):
		ev.Code, ev.Message = CodeInvalidPin, "invalid PIN"
	case errors.Is(err, domain.ErrInvalidHostKey):
		ev.Code, ev.Message = CodeInvalidHostKey, "invalid host key"
	case errors.Is(err, domain.ErrNotHost):
		ev.Code, ev.Message = CodeNotHost, err.Error()
	case errors.Is(err, domain.ErrNoQuiz):
		ev.Code, ev.Message = CodeNoQuiz, err.Error()
	default:
		ev.Code, ev.Message = CodeInternal, "internal error"
	}
	return ev
}
