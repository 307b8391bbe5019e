package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your coin balance",
		},
		{
			Name:        "rank",
			Description: "Show your level, experience and active boosters",
		},
		{
			Name:        "leaderboard",
			Description: "Show the top players",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "weekly",
					Description: "Rank by this week's experience",
					Required:    false,
				},
			},
		},
		{
			Name:        "shop",
			Description: "List the boosters for sale",
		},
		{
			Name:        "buy",
			Description: "Buy a booster",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "item",
					Description: "Booster to buy",
					Required:    true,
					Choices:     b.shop.Choices(),
				},
			},
		},
		{
			Name:        "quiz",
			Description: "Start a trivia quiz in this channel",
		},
		{
			Name:        "scramble",
			Description: "Start a word scramble in this channel",
		},
		{
			Name:        "stopgame",
			Description: "Stop the game running in this channel (moderators)",
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range b.commands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
