// Package games answers /quiz, /scramble and /stopgame.
package games

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"arcade/bot/common"
	"arcade/game"
	"arcade/models"
	"arcade/session"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Minigame plays one game in a channel
type Minigame interface {
	Play(ctx context.Context, guildID, channelID int64) (*game.Result, error)
}

// SessionControl is the part of the session manager the commands use
type SessionControl interface {
	Get(ctx context.Context, channelID int64) (*models.ChannelSession, error)
	ForceStop(ctx context.Context, channelID int64) (bool, error)
}

type Feature struct {
	games     map[string]Minigame
	sessions  SessionControl
	messenger Messenger
	ctx       context.Context
}

// New wires the minigames. Games run under ctx so shutdown stops them.
func New(ctx context.Context, quiz, scramble Minigame, sessions SessionControl, messenger Messenger) *Feature {
	return &Feature{
		games: map[string]Minigame{
			game.KindQuiz:     quiz,
			game.KindScramble: scramble,
		},
		sessions:  sessions,
		messenger: messenger,
		ctx:       ctx,
	}
}

// HandleStart answers /quiz and /scramble
func (f *Feature) HandleStart(s *discordgo.Session, i *discordgo.InteractionCreate) {
	kind := i.ApplicationCommandData().Name
	minigame, ok := f.games[kind]
	if !ok {
		common.RespondWithError(s, i, "Unknown game.")
		return
	}

	guildID, _, err := common.GuildAndUser(i)
	if err != nil {
		common.RespondWithError(s, i, "Games only run in a server channel.")
		return
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to start a game here.")
		return
	}

	current, err := f.sessions.Get(context.Background(), channelID)
	if err == nil && current != nil {
		common.RespondWithError(s, i, GameErrorMessage(session.ErrSessionActive))
		return
	}

	common.RespondWithMessage(s, i, fmt.Sprintf("🎮 Starting **%s**! First correct answer wins each round.", kind), false)
	go f.play(minigame, guildID, channelID)
}

func (f *Feature) play(minigame Minigame, guildID, channelID int64) {
	result, err := minigame.Play(f.ctx, guildID, channelID)
	if err != nil {
		if !errors.Is(err, session.ErrSessionActive) && !errors.Is(err, game.ErrInsufficientContent) {
			log.WithFields(log.Fields{
				"guildID":   guildID,
				"channelID": channelID,
				"error":     err,
			}).Error("Game failed")
		}
		f.post(channelID, "❌ "+GameErrorMessage(err))
		return
	}
	f.post(channelID, FormatResult(result))
}

// HandleStop answers /stopgame, moderators only
func (f *Feature) HandleStop(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageMessages == 0 {
		common.RespondWithError(s, i, "You need the Manage Messages permission to stop a game.")
		return
	}
	channelID, err := common.ParseID(i.ChannelID)
	if err != nil {
		common.RespondWithError(s, i, "Unable to stop a game here.")
		return
	}

	stopped, err := f.sessions.ForceStop(context.Background(), channelID)
	if err != nil {
		log.Errorf("Error force-stopping channel %d: %v", channelID, err)
		common.RespondWithError(s, i, "Unable to stop the game. Please try again.")
		return
	}
	if !stopped {
		common.RespondWithError(s, i, "No game is running in this channel.")
		return
	}
	common.RespondWithMessage(s, i, "🛑 Game stopped.", false)
}

func (f *Feature) post(channelID int64, content string) {
	if _, err := f.messenger.ChannelMessageSend(strconv.FormatInt(channelID, 10), content); err != nil {
		log.WithError(err).WithField("channelID", channelID).Error("Failed to post game message")
	}
}

// GameErrorMessage maps a game start failure to a user-facing message
func GameErrorMessage(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionActive):
		return "A game is already running here."
	case errors.Is(err, game.ErrInsufficientContent):
		return "Not enough questions to start a game, ask an admin."
	default:
		return "The game stopped because of an error."
	}
}

// FormatResult renders the final scoreboard
func FormatResult(r *game.Result) string {
	var b strings.Builder
	if r.Stopped {
		b.WriteString("🛑 **Game stopped.**\n")
	} else {
		b.WriteString("🏁 **Game over!**\n")
	}

	ranking := r.Ranking()
	if len(ranking) == 0 {
		b.WriteString("Nobody scored this time.")
		return b.String()
	}
	for rank, playerID := range ranking {
		points := r.Scores[playerID]
		unit := "points"
		if points == 1 {
			unit = "point"
		}
		fmt.Fprintf(&b, "%s %s - %d %s\n", common.Medal(rank), common.Mention(playerID), points, unit)
	}
	return strings.TrimSuffix(b.String(), "\n")
}
