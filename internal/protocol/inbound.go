// Package protocol defines the JSON messages exchanged with connected clients.
package protocol

import (
	"encoding/json"
	"fmt"

	"quiz-room-service/internal/domain"
)

// Type tags every message on the wire.
type Type string

// Client -> Server
const (
	TypeJoin      Type = "join"
	TypeHostJoin  Type = "host_join"
	TypeHostStart Type = "host_start"
	TypeAnswer    Type = "answer"
)

// Inbound is the closed set of messages a client may send. The unexported
// marker keeps implementations inside this package.
type Inbound interface {
	Kind() Type
	RoomPin() string
	inbound()
}

// Join admits a player into a room.
type Join struct {
	Pin      string
	Nickname string
}

// HostJoin admits the host of a room.
type HostJoin struct {
	Pin     string
	HostKey string
}

// HostStart begins a game.
type HostStart struct {
	Pin string
}

// Answer submits a choice for a live question.
type Answer struct {
	Pin           string
	QuestionIndex int
	ChoiceIndex   int
}

func (Join) Kind() Type      { return TypeJoin }
func (HostJoin) Kind() Type  { return TypeHostJoin }
func (HostStart) Kind() Type { return TypeHostStart }
func (Answer) Kind() Type    { return TypeAnswer }

func (m Join) RoomPin() string      { return m.Pin }
func (m HostJoin) RoomPin() string  { return m.Pin }
func (m HostStart) RoomPin() string { return m.Pin }
func (m Answer) RoomPin() string    { return m.Pin }

var (
	_ Inbound = Join{}
	_ Inbound = HostJoin{}
	_ Inbound = HostStart{}
	_ Inbound = Answer{}
)

func (Join) inbound()      {}
func (HostJoin) inbound()  {}
func (HostStart) inbound() {}
func (Answer) inbound()    {}

type envelope struct {
	Type          Type   `json:"type"`
	Pin           string `json:"pin"`
	Nickname      string `json:"nickname"`
	HostKey       string `json:"hostKey"`
	QuestionIndex *int   `json:"questionIndex"`
	ChoiceIndex   *int   `json:"choiceIndex"`
}

// Decode parses a single inbound frame. It returns domain.ErrMalformedMessage for
// frames that are not JSON objects or miss required numeric fields, and
// domain.ErrUnknownMessageType for any type tag outside the closed set.
func Decode(data []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeJoin:
		return Join{Pin: env.Pin, Nickname: env.Nickname}, nil
	case TypeHostJoin:
		return HostJoin{Pin: env.Pin, HostKey: env.HostKey}, nil
	case TypeHostStart:
		return HostStart{Pin: env.Pin}, nil
	case TypeAnswer:
		if env.QuestionIndex == nil || env.ChoiceIndex == nil {
			return nil, fmt.Errorf("%w: answer requires questionIndex and choiceIndex", domain.ErrMalformedMessage)
		}
		return Answer{Pin: env.Pin, QuestionIndex: *env.QuestionIndex, ChoiceIndex: *env.ChoiceIndex}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type", domain.ErrMalformedMessage)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMessageType, env.Type)
	}
}
