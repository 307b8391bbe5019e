package session

import "errors"

// ErrSessionActive is returned by Run when the channel already hosts a game
var ErrSessionActive = errors.New("a game is already running in this channel")
