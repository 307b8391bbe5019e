package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"arcade/service"
	"arcade/session"
)

const KindScramble = "scramble"

// Scramble asks players to unscramble words from the bank
type Scramble struct {
	runner
	bank *QuestionBank

	mu  sync.Mutex
	rng *rand.Rand
}

func NewScramble(sessions *session.Manager, engine *Engine, payouts service.PayoutService, prompter Prompter, bank *QuestionBank, settings Settings) *Scramble {
	return &Scramble{
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

// Play runs a scramble game in the channel
func (s *Scramble) Play(ctx context.Context, guildID, channelID int64) (*Result, error) {
	need := s.settings.Rounds
	if s.settings.MinQuestions > need {
		need = s.settings.MinQuestions
	}

	s.mu.Lock()
	words, err := s.bank.SampleWords(need, s.rng)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	questions := make([]Question, 0, s.settings.Rounds)
	for _, w := range words[:s.settings.Rounds] {
		questions = append(questions, Question{
			Prompt:   scrambleWord(w, s.rng),
			Answers:  []string{w},
			Category: KindScramble,
		})
	}
	s.mu.Unlock()

	return s.play(ctx, guildID, channelID, KindScramble, questions)
}

// scrambleWord shuffles the letters of word, avoiding the original order
// whenever the word has two distinct letters
func scrambleWord(word string, rng *rand.Rand) string {
	letters := []rune(word)
	if !hasDistinct(letters) {
		return word
	}
	for {
		rng.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		if string(letters) != word {
			return string(letters)
		}
	}
}

func hasDistinct(letters []rune) bool {
	if len(letters) < 2 {
		return false
	}
	for _, r := range letters[1:] {
		if r != letters[0] {
			return true
		}
	}
	return false
}
