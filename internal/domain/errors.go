package domain

import "errors"

var (
	// ErrRoomNotFound is returned by room loaders when no room is stored under a PIN.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidPin is returned when a client names a PIN the catalog does not know.
	ErrInvalidPin = errors.New("invalid pin")
	// ErrInvalidHostKey is returned when host_join carries a missing or wrong owner secret.
	ErrInvalidHostKey = errors.New("invalid host key")
	// ErrNotHost is returned when a non-host tries to control a game.
	ErrNotHost = errors.New("only the host can start the game")
	// ErrNoQuiz is returned when a game is started without a loaded quiz.
	ErrNoQuiz = errors.New("no quiz with at least one question is loaded")
	// ErrMalformedMessage indicates an inbound frame that is not a valid message.
	ErrMalformedMessage = errors.New("malformed message")
	// ErrUnknownMessageType indicates a well-formed message with an unsupported type.
	ErrUnknownMessageType = errors.New("unknown message type")
)
