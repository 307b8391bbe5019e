package game

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Question is a single prompt and the answers that win it
type Question struct {
	Prompt   string   `json:"prompt" validate:"required"`
	Answers  []string `json:"answers" validate:"required,min=1,dive,required"`
	Category string   `json:"category,omitempty"`
}

// Matches reports whether text is one of the accepted answers, ignoring
// case and surrounding or repeated whitespace
func (q Question) Matches(text string) bool {
	candidate := normalize(text)
	if candidate == "" {
		return false
	}
	for _, answer := range q.Answers {
		if normalize(answer) == candidate {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Answer is the winning submission of a round
type Answer struct {
	PlayerID int64
	Text     string
	Elapsed  time.Duration
}

// AcceptFunc decides whether a submission wins the round
type AcceptFunc func(Submission) bool

// Engine resolves rounds. It never touches the ledger.
type Engine struct {
	router *Router
	now    func() time.Time
}

func NewEngine(router *Router) *Engine {
	return &Engine{router: router, now: time.Now}
}

// RunRound waits for the first submission accepted before deadline. A nil
// accept falls back to q.Matches. It returns nil, nil when the deadline
// passes and nil, ctx.Err() when ctx is cancelled first.
func (e *Engine) RunRound(ctx context.Context, channelID int64, q Question, deadline time.Time, accept AcceptFunc) (*Answer, error) {
	if accept == nil {
		accept = func(s Submission) bool { return q.Matches(s.Text) }
	}

	submissions, stop, err := e.router.Listen(channelID)
	if err != nil {
		return nil, err
	}
	defer stop()

	started := e.now()
	timer := time.NewTimer(deadline.Sub(started))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			// An answer queued before the deadline still beats the timer
			if s, ok := firstAccepted(submissions, deadline, accept); ok {
				return &Answer{
					PlayerID: s.PlayerID,
					Text:     s.Text,
					Elapsed:  s.At.Sub(started),
				}, nil
			}
			log.WithFields(log.Fields{
				"channelID": channelID,
				"prompt":    q.Prompt,
			}).Debug("Round timed out")
			return nil, nil
		case s := <-submissions:
			if s.At.After(deadline) || !accept(s) {
				continue
			}
			return &Answer{
				PlayerID: s.PlayerID,
				Text:     s.Text,
				Elapsed:  s.At.Sub(started),
			}, nil
		}
	}
}

// firstAccepted drains queued submissions without blocking and returns the
// first one accepted at or before deadline
func firstAccepted(submissions <-chan Submission, deadline time.Time, accept AcceptFunc) (Submission, bool) {
	for {
		select {
		case s := <-submissions:
			if !s.At.After(deadline) && accept(s) {
				return s, true
			}
		default:
			return Submission{}, false
		}
	}
}
