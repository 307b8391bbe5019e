// Package profile answers /balance and /rank.
package profile

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

type Feature struct {
	ledger       service.LedgerService
	registry     service.ModifierRegistry
	levelExpUnit int64
}

func New(ledger service.LedgerService, registry service.ModifierRegistry, levelExpUnit int64) *Feature {
	return &Feature{ledger: ledger, registry: registry, levelExpUnit: levelExpUnit}
}

// HandleBalance answers /balance
func (f *Feature) HandleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.GuildAndUser(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	player, err := f.ledger.GetAccount(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error getting account %d in guild %d: %v", userID, guildID, err)
		common.RespondWithError(s, i, "Unable to retrieve balance. Please try again.")
		return
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	common.RespondWithMessage(s, i, FormatBalanceMessage(displayName, player), false)
}

// HandleRank answers /rank
func (f *Feature) HandleRank(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, userID, err := common.GuildAndUser(i)
	if err != nil {
		common.RespondWithError(s, i, "This command only works in a server.")
		return
	}

	player, err := f.ledger.GetAccount(ctx, guildID, userID)
	if err != nil {
		log.Errorf("Error getting account %d in guild %d: %v", userID, guildID, err)
		common.RespondWithError(s, i, "Unable to retrieve your rank. Please try again.")
		return
	}

	modifiers, err := f.registry.ActiveModifiers(ctx, guildID, userID)
	if err != nil {
		// Boosters are decoration here
		log.WithError(err).Warn("Failed to load active modifiers for rank card")
	}
	anomaly, err := f.registry.CurrentGlobalModifier(ctx, guildID)
	if err != nil {
		log.WithError(err).Warn("Failed to load anomaly for rank card")
	}

	displayName := common.GetDisplayName(s, i.GuildID, i.Member.User.ID)
	embed := BuildRankEmbed(displayName, player, f.levelExpUnit, modifiers, anomaly, time.Now())
	common.RespondWithEmbed(s, i, embed, false)
}

// FormatBalanceMessage renders the /balance reply
func FormatBalanceMessage(displayName string, player *models.Player) string {
	msg := fmt.Sprintf("%s, your current balance: **%s coins**", displayName, common.FormatBalance(player.Balance))
	if player.Debt > 0 {
		msg += fmt.Sprintf(" (debt: **%s**)", common.FormatBalance(player.Debt))
	}
	return msg
}

// BuildRankEmbed renders a player's level card
func BuildRankEmbed(displayName string, player *models.Player, unit int64, modifiers []*models.Modifier, anomaly *models.Modifier, now time.Time) *discordgo.MessageEmbed {
	into := player.ExperienceIntoLevel(unit)

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⭐ %s", displayName),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Level", Value: fmt.Sprintf("**%d**", player.Level), Inline: true},
			{Name: "Experience", Value: common.FormatBalance(player.Experience), Inline: true},
			{Name: "This week", Value: common.FormatBalance(player.WeeklyExperience), Inline: true},
			{
				Name:  "Progress",
				Value: fmt.Sprintf("%s %s / %s", common.ProgressBar(into, unit, 12), common.FormatBalance(into), common.FormatBalance(unit)),
			},
		},
		Timestamp: now.Format(time.RFC3339),
	}

	if len(player.Badges) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Badges",
			Value: strings.Join(player.Badges, ", "),
		})
	}

	var boosts []string
	for _, m := range modifiers {
		if !m.IsActive(now) {
			continue
		}
		boosts = append(boosts, fmt.Sprintf("%s %s (%s left)", kindLabel(m.Kind), common.FormatMultiplier(m.Multiplier), common.FormatDuration(m.Remaining(now))))
	}
	if anomaly != nil && anomaly.IsActive(now) {
		boosts = append(boosts, fmt.Sprintf("🌌 %s: %s %s (%s left)", anomaly.Name, kindLabel(anomaly.Kind), common.FormatMultiplier(anomaly.Multiplier), common.FormatDuration(anomaly.Remaining(now))))
	}
	if len(boosts) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Active boosts",
			Value: strings.Join(boosts, "\n"),
		})
	}
	return embed
}

func kindLabel(kind models.ModifierKind) string {
	switch kind {
	case models.ModifierKindExperienceBoost:
		return "EXP"
	case models.ModifierKindCurrencyBoost:
		return "Coins"
	default:
		return "EXP+Coins"
	}
}
