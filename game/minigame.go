package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"arcade/models"
	"arcade/service"
	"arcade/session"

	log "github.com/sirupsen/logrus"
)

// Prompter renders game progress to the channel
type Prompter interface {
	AnnounceRound(ctx context.Context, channelID int64, round, total int, q Question) error
	AnnounceWinner(ctx context.Context, channelID int64, q Question, answer *Answer, payout *service.Payout) error
	AnnounceTimeout(ctx context.Context, channelID int64, q Question) error
}

// Settings controls the length and reward of a game
type Settings struct {
	Rounds       int
	MinQuestions int
	RoundTimeout time.Duration
	Reward       models.Reward
}

// RoundResult records how one round ended. PlayerID is zero on timeout.
type RoundResult struct {
	Prompt   string
	PlayerID int64
	Elapsed  time.Duration
	Payout   *service.Payout
}

// Result is the scoreboard of a finished game
type Result struct {
	SessionID string
	Kind      string
	Rounds    []RoundResult
	Scores    map[int64]int
	Stopped   bool
}

// Ranking returns players ordered by score, then by player id
func (r *Result) Ranking() []int64 {
	players := make([]int64, 0, len(r.Scores))
	for p := range r.Scores {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if r.Scores[players[i]] != r.Scores[players[j]] {
			return r.Scores[players[i]] > r.Scores[players[j]]
		}
		return players[i] < players[j]
	})
	return players
}

// runner holds what every minigame needs to play rounds and pay winners
type runner struct {
	sessions *session.Manager
	engine   *Engine
	payouts  service.PayoutService
	prompter Prompter
	settings Settings
	now      func() time.Time
}

// play occupies the channel and runs one round per question
func (r *runner) play(ctx context.Context, guildID, channelID int64, kind string, questions []Question) (*Result, error) {
	result := &Result{Kind: kind, Scores: make(map[int64]int)}

	err := r.sessions.Run(ctx, channelID, guildID, kind, func(ctx context.Context, s *models.ChannelSession) error {
		result.SessionID = s.ID
		return r.playRounds(ctx, guildID, channelID, kind, questions, result)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Stopped = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *runner) playRounds(ctx context.Context, guildID, channelID int64, kind string, questions []Question, result *Result) error {
	for i, q := range questions {
		if err := r.prompter.AnnounceRound(ctx, channelID, i+1, len(questions), q); err != nil {
			return fmt.Errorf("failed to announce round %d: %w", i+1, err)
		}

		answer, err := r.engine.RunRound(ctx, channelID, q, r.now().Add(r.settings.RoundTimeout), nil)
		if err != nil {
			return err
		}

		if answer == nil {
			result.Rounds = append(result.Rounds, RoundResult{Prompt: q.Prompt})
			if err := r.prompter.AnnounceTimeout(ctx, channelID, q); err != nil {
				log.WithError(err).WithField("channelID", channelID).Warn("Failed to announce timeout")
			}
			continue
		}

		result.Scores[answer.PlayerID]++
		round := RoundResult{Prompt: q.Prompt, PlayerID: answer.PlayerID, Elapsed: answer.Elapsed}

		payout, err := r.payouts.Award(ctx, guildID, answer.PlayerID, r.settings.Reward, kind)
		if err != nil {
			// The round is still won, only the payout is lost
			log.WithFields(log.Fields{
				"guildID":  guildID,
				"playerID": answer.PlayerID,
				"kind":     kind,
				"error":    err,
			}).Error("Failed to pay round winner")
		}
		round.Payout = payout
		result.Rounds = append(result.Rounds, round)

		if err := r.prompter.AnnounceWinner(ctx, channelID, q, answer, payout); err != nil {
			log.WithError(err).WithField("channelID", channelID).Warn("Failed to announce winner")
		}
	}
	return nil
}

func newRNG() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
