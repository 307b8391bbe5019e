// Package leaderboard answers /leaderboard.
package leaderboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arcade/bot/common"
	"arcade/models"
	"arcade/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const defaultLimit = 10

type Feature struct {
	ledger service.LedgerService
}

func New(ledger service.LedgerService) *Feature {
	return &Feature{ledger: ledger}
}

// HandleCommand answers /leaderboard [weekly]
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, _, err := common.GuildAndUser(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	weekly := false
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "weekly" {
			weekly = opt.BoolValue()
		}
	}

	players, err := f.ledger.Leaderboard(ctx, guildID, defaultLimit, weekly)
	if err != nil {
		log.Errorf("Error getting leaderboard for guild %d: %v", guildID, err)
		common.RespondWithError(s, i, "Unable to retrieve the leaderboard. Please try again.")
		return
	}

	names := func(playerID int64) string {
		return common.GetDisplayNameInt64(s, guildID, playerID)
	}
	common.RespondWithEmbed(s, i, BuildLeaderboardEmbed(players, weekly, names), false)
}

// BuildLeaderboardEmbed ranks players by total or weekly experience
func BuildLeaderboardEmbed(players []*models.Player, weekly bool, names func(int64) string) *discordgo.MessageEmbed {
	title := "🏆 Leaderboard"
	if weekly {
		title = "🏆 Weekly Leaderboard"
	}
	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if len(players) == 0 {
		embed.Description = "No players found"
		return embed
	}

	lines := make([]string, 0, len(players))
	for rank, p := range players {
		exp := p.Experience
		if weekly {
			exp = p.WeeklyExperience
		}
		lines = append(lines, fmt.Sprintf("%s **%s** - level %d, %s EXP",
			common.Medal(rank), names(p.PlayerID), p.Level, common.FormatBalance(exp)))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
