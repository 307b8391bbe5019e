package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submitWhenListening waits for a round to start listening, then submits
func submitWhenListening(t *testing.T, router *Router, channelID int64, subs ...Submission) {
	t.Helper()
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for !router.Listening(channelID) {
			if time.Now().After(deadline) {
				return
			}
			time.Sleep(time.Millisecond)
		}
		for _, s := range subs {
			router.SubmitAnswer(channelID, s.PlayerID, s.Text)
		}
	}()
}

func capitalQuestion() Question {
	return Question{Prompt: "Capital of France?", Answers: []string{"Paris"}}
}

func TestRouter_SubmitWithoutListener(t *testing.T) {
	router := NewRouter()
	assert.False(t, router.SubmitAnswer(42, 7, "paris"))
}

func TestRouter_SingleListenerPerChannel(t *testing.T) {
	router := NewRouter()

	_, stop, err := router.Listen(42)
	require.NoError(t, err)

	_, _, err = router.Listen(42)
	assert.ErrorIs(t, err, ErrListenerActive)

	// Other channels are independent
	_, stopOther, err := router.Listen(43)
	require.NoError(t, err)
	stopOther()

	stop()
	stop()
	assert.False(t, router.Listening(42))

	_, stop, err = router.Listen(42)
	require.NoError(t, err)
	stop()
}

func TestRouter_DeliversToListener(t *testing.T) {
	router := NewRouter()
	subs, stop, err := router.Listen(42)
	require.NoError(t, err)
	defer stop()

	assert.True(t, router.SubmitAnswer(42, 7, "hello"))
	got := <-subs
	assert.Equal(t, int64(7), got.PlayerID)
	assert.Equal(t, "hello", got.Text)
}

func TestQuestion_Matches(t *testing.T) {
	q := Question{Prompt: "Largest planet?", Answers: []string{"Jupiter", "planet jupiter"}}

	tests := []struct {
		text string
		want bool
	}{
		{"Jupiter", true},
		{"  jupiter ", true},
		{"JUPITER", true},
		{"planet   Jupiter", true},
		{"Saturn", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, q.Matches(tt.text))
		})
	}
}

func TestEngine_FirstCorrectAnswerWins(t *testing.T) {
	router := NewRouter()
	engine := NewEngine(router)

	submitWhenListening(t, router, 42,
		Submission{PlayerID: 1, Text: "London"},
		Submission{PlayerID: 2, Text: "paris"},
		Submission{PlayerID: 3, Text: "Paris"},
	)

	answer, err := engine.RunRound(context.Background(), 42, capitalQuestion(), time.Now().Add(2*time.Second), nil)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, int64(2), answer.PlayerID)
	assert.Equal(t, "paris", answer.Text)
	assert.False(t, router.Listening(42))
}

func TestEngine_CustomAccept(t *testing.T) {
	router := NewRouter()
	engine := NewEngine(router)

	submitWhenListening(t, router, 42,
		Submission{PlayerID: 1, Text: "paris"},
		Submission{PlayerID: 9, Text: "paris"},
	)

	onlyNine := func(s Submission) bool { return s.PlayerID == 9 }
	answer, err := engine.RunRound(context.Background(), 42, capitalQuestion(), time.Now().Add(2*time.Second), onlyNine)
	require.NoError(t, err)
	require.NotNil(t, answer)
	assert.Equal(t, int64(9), answer.PlayerID)
}

func TestEngine_Timeout(t *testing.T) {
	router := NewRouter()
	engine := NewEngine(router)

	submitWhenListening(t, router, 42, Submission{PlayerID: 1, Text: "Rome"})

	answer, err := engine.RunRound(context.Background(), 42, capitalQuestion(), time.Now().Add(30*time.Millisecond), nil)
	assert.NoError(t, err)
	assert.Nil(t, answer)
	assert.False(t, router.Listening(42))
}

func TestEngine_Cancelled(t *testing.T) {
	router := NewRouter()
	engine := NewEngine(router)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for !router.Listening(42) {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	answer, err := engine.RunRound(ctx, 42, capitalQuestion(), time.Now().Add(5*time.Second), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, answer)
	assert.False(t, router.Listening(42))
}

func TestEngine_RejectsSecondRoundOnChannel(t *testing.T) {
	router := NewRouter()
	engine := NewEngine(router)

	_, stop, err := router.Listen(42)
	require.NoError(t, err)
	defer stop()

	_, err = engine.RunRound(context.Background(), 42, capitalQuestion(), time.Now().Add(time.Second), nil)
	assert.ErrorIs(t, err, ErrListenerActive)
}

// submitAtStart makes the engine's clock queue a submission stamped at the
// given offset from deadline, then report deadline so the timer is already due
func submitAtStart(engine *Engine, router *Router, channelID int64, deadline time.Time, offset time.Duration, text string) {
	router.now = func() time.Time { return deadline.Add(offset) }
	engine.now = func() time.Time {
		router.SubmitAnswer(channelID, 7, text)
		return deadline
	}
}

func TestEngine_AnswerBeforeDeadlineBeatsTimer(t *testing.T) {
	for i := 0; i < 50; i++ {
		router := NewRouter()
		engine := NewEngine(router)
		deadline := time.Now()
		submitAtStart(engine, router, 42, deadline, -time.Second, "paris")

		answer, err := engine.RunRound(context.Background(), 42, capitalQuestion(), deadline, nil)
		require.NoError(t, err)
		require.NotNil(t, answer, "iteration %d", i)
		assert.Equal(t, int64(7), answer.PlayerID)
	}
}

func TestEngine_AnswerAfterDeadlineIsIgnored(t *testing.T) {
	for i := 0; i < 50; i++ {
		router := NewRouter()
		engine := NewEngine(router)
		deadline := time.Now()
		submitAtStart(engine, router, 42, deadline, time.Second, "paris")

		answer, err := engine.RunRound(context.Background(), 42, capitalQuestion(), deadline, nil)
		require.NoError(t, err)
		assert.Nil(t, answer, "iteration %d", i)
	}
}
