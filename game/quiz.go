package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"arcade/service"
	"arcade/session"
)

const KindQuiz = "quiz"

// Quiz is multi-round trivia drawn from the question bank
type Quiz struct {
	runner
	bank *QuestionBank

	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuiz(sessions *session.Manager, engine *Engine, payouts service.PayoutService, prompter Prompter, bank *QuestionBank, settings Settings) *Quiz {
	return &Quiz{
		runner: runner{
			sessions: sessions,
			engine:   engine,
			payouts:  payouts,
			prompter: prompter,
			settings: settings,
			now:      time.Now,
		},
		bank: bank,
		rng:  newRNG(),
	}
}

// Play runs a quiz in the channel. It fails with ErrInsufficientContent
// before touching the channel when the bank is too small.
func (q *Quiz) Play(ctx context.Context, guildID, channelID int64) (*Result, error) {
	need := q.settings.Rounds
	if q.settings.MinQuestions > need {
		need = q.settings.MinQuestions
	}

	q.mu.Lock()
	questions, err := q.bank.SampleQuestions(need, q.rng)
	q.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return q.play(ctx, guildID, channelID, KindQuiz, questions[:q.settings.Rounds])
}
