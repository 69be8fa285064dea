package domain

// ChoiceCount is the fixed number of answer slots every question carries.
const ChoiceCount = 4

// Role distinguishes the single controlling host of a room from its players.
type Role string

const (
	RolePlayer Role = "player"
	RoleHost   Role = "host"
)

// Participant is one live connection admitted into a room.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	Role        Role   `json:"role"`
}

// GameState is the coarse phase of a room's game session.
type GameState string

const (
	StateWaiting GameState = "waiting"
	StateRunning GameState = "running"
	StateEnded   GameState = "ended"
)

// Question models an MCQ question with exactly ChoiceCount slots.
type Question struct {
	Text               string              `json:"text" yaml:"text"`
	Choices            [ChoiceCount]string `json:"choices" yaml:"choices"`
	CorrectChoiceIndex int                 `json:"correctChoiceIndex" yaml:"correctChoiceIndex"`
	TimerSeconds       int                 `json:"timerSeconds" yaml:"timerSeconds"` // 0 means server default
}

// Quiz is an ordered collection of questions.
type Quiz struct {
	Topic     string     `json:"topic" yaml:"topic"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Room is the externally stored configuration behind a PIN.
type Room struct {
	Pin         string `json:"pin" yaml:"pin"`
	Title       string `json:"title" yaml:"title"`
	OwnerSecret string `json:"ownerSecret" yaml:"ownerSecret"`
	Quiz        Quiz   `json:"quiz" yaml:"quiz"`
}

// LeaderboardEntry is a snapshot-friendly view of a player's score.
type LeaderboardEntry struct {
	ParticipantID string `json:"id"`
	DisplayName   string `json:"name"`
	Score         int    `json:"score"`
}
