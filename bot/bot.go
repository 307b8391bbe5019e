// Package bot is the Discord adapter: slash commands, the chat listener and
// event announcements.
package bot

import (
	"context"
	"fmt"

	"arcade/bot/features/games"
	"arcade/bot/features/leaderboard"
	"arcade/bot/features/profile"
	"arcade/bot/features/shop"
	"arcade/events"
	"arcade/game"
	"arcade/service"
	"arcade/session"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token             string
	GuildID           string // Registers commands for one guild, empty for global
	AnnounceChannelID string
	LevelRoles        map[int64]string
	LevelExpUnit      int64
}

// Services are the core components the bot drives
type Services struct {
	Ledger       service.LedgerService
	Registry     service.ModifierRegistry
	Payouts      service.PayoutService
	Shop         service.ShopService
	Activity     service.ActivityService
	Sessions     *session.Manager
	Router       *game.Router
	Engine       *game.Engine
	Bank         *game.QuestionBank
	GameSettings game.Settings
}

type Bot struct {
	config    Config
	session   *discordgo.Session
	router    *game.Router
	activity  service.ActivityService
	announcer *Announcer

	profile     *profile.Feature
	leaderboard *leaderboard.Feature
	shop        *shop.Feature
	games       *games.Feature
}

// New connects to Discord and registers commands. Games run under ctx.
func New(ctx context.Context, config Config, svc Services, bus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	prompter := games.NewChannelPrompter(dg)
	quiz := game.NewQuiz(svc.Sessions, svc.Engine, svc.Payouts, prompter, svc.Bank, svc.GameSettings)
	scramble := game.NewScramble(svc.Sessions, svc.Engine, svc.Payouts, prompter, svc.Bank, svc.GameSettings)

	bot := &Bot{
		config:      config,
		session:     dg,
		router:      svc.Router,
		activity:    svc.Activity,
		announcer:   NewAnnouncer(dg, config.AnnounceChannelID, config.LevelRoles),
		profile:     profile.New(svc.Ledger, svc.Registry, config.LevelExpUnit),
		leaderboard: leaderboard.New(svc.Ledger),
		shop:        shop.New(svc.Shop),
		games:       games.New(ctx, quiz, scramble, svc.Sessions, dg),
	}
	bot.announcer.Register(bus)

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleMessage)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guildID", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance":
		b.profile.HandleBalance(s, i)
	case "rank":
		b.profile.HandleRank(s, i)
	case "leaderboard":
		b.leaderboard.HandleCommand(s, i)
	case "shop":
		b.shop.HandleShop(s, i)
	case "buy":
		b.shop.HandleBuy(s, i)
	case game.KindQuiz, game.KindScramble:
		b.games.HandleStart(s, i)
	case "stopgame":
		b.games.HandleStop(s, i)
	}
}
