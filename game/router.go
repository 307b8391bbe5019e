// Package game runs question-and-answer rounds in chat channels and the
// minigames built on them.
package game

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

const submissionBuffer = 32

// Submission is one chat message offered as an answer
type Submission struct {
	PlayerID int64
	Text     string
	At       time.Time
}

// Router hands chat messages to the round listening on their channel
type Router struct {
	mu        sync.Mutex
	listeners map[int64]chan Submission
	now       func() time.Time
}

func NewRouter() *Router {
	return &Router{
		listeners: make(map[int64]chan Submission),
		now:       time.Now,
	}
}

// Listen registers the only listener for a channel. The returned stop
// function must be called to unregister it.
func (r *Router) Listen(channelID int64) (<-chan Submission, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.listeners[channelID]; busy {
		return nil, nil, ErrListenerActive
	}

	ch := make(chan Submission, submissionBuffer)
	r.listeners[channelID] = ch

	var once sync.Once
	stop := func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.listeners[channelID] == ch {
				delete(r.listeners, channelID)
			}
		})
	}
	return ch, stop, nil
}

// SubmitAnswer delivers text to the channel's listener. It reports false
// when no round is listening or the listener is saturated.
func (r *Router) SubmitAnswer(channelID, playerID int64, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.listeners[channelID]
	if !ok {
		return false
	}

	select {
	case ch <- Submission{PlayerID: playerID, Text: text, At: r.now()}:
		return true
	default:
		log.WithFields(log.Fields{
			"channelID": channelID,
			"playerID":  playerID,
		}).Warn("Dropping answer, round listener is full")
		return false
	}
}

// Listening reports whether a round is waiting on the channel
func (r *Router) Listening(channelID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.listeners[channelID]
	return ok
}
