package game

import "errors"

var (
	// ErrInsufficientContent means the question bank cannot fill a game
	ErrInsufficientContent = errors.New("not enough questions to start a game")

	// ErrListenerActive means a round is already listening on the channel
	ErrListenerActive = errors.New("a round is already listening on this channel")
)
