package cmd

import (
	"context"
	"fmt"
	"time"

	"arcade/bot"
	"arcade/bot/debugapi"
	"arcade/config"
	"arcade/database"
	"arcade/events"
	"arcade/game"
	"arcade/infrastructure"
	"arcade/models"
	"arcade/service"
	"arcade/session"
	"arcade/worker"

	log "github.com/sirupsen/logrus"
)

const modifierSweepInterval = time.Hour

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting arcade bot...")
	cfg := config.Get()

	if cfg.StorageBackend == config.StorageBackendPostgres {
		if err := database.MigrateUp(cfg.GetDatabaseURL()); err != nil {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	eventBus := events.NewBus()

	store, err := openStorage(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer store.close()

	var (
		sessionStore session.Store = session.NewMemoryStore()
		worldState   service.GlobalModifierSource
	)
	if cfg.RedisEnabled() {
		client, err := openRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		sessionStore = session.NewRedisStore(client, cfg.SessionMaxLifetime)
		worldState = infrastructure.NewRedisWorldState(client)
	} else {
		worldState = infrastructure.NewStaticWorldState()
	}

	if cfg.NATSEnabled() {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()
		if err := natsClient.EnsureStream(); err != nil {
			return fmt.Errorf("failed to ensure NATS stream: %w", err)
		}
		infrastructure.NewEventForwarder(natsClient).Register(eventBus)
	}

	// Services
	ledger := service.NewLedgerService(store.uowFactory, cfg.LevelExpUnit)
	registry := service.NewModifierRegistry(store.uowFactory, worldState)
	payouts := service.NewPayoutService(store.uowFactory, registry, cfg.LevelExpUnit)
	shop, err := service.NewShopService(store.uowFactory, service.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("failed to build shop: %w", err)
	}
	activity := service.NewActivityService(payouts, cfg.MessageExp, cfg.MessageExpCooldown)

	// Games
	bank := &game.QuestionBank{}
	if cfg.QuestionBankPath != "" {
		bank, err = game.LoadQuestionBank(cfg.QuestionBankPath)
		if err != nil {
			return err
		}
	} else {
		log.Warn("QUESTION_BANK_PATH not set, games will refuse to start")
	}
	sessions := session.NewManager(sessionStore, eventBus, cfg.SessionMaxLifetime)
	router := game.NewRouter()

	// Maintenance
	scheduler, err := worker.NewScheduler(worker.NewMaintenance(store.maintenance), modifierSweepInterval)
	if err != nil {
		return err
	}
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	debugServer := debugapi.New(sessions, ledger, registry)
	debugServer.Start(cfg.DebugAPIPort)

	discordBot, err := bot.New(ctx, bot.Config{
		Token:             cfg.DiscordToken,
		GuildID:           cfg.GuildID,
		AnnounceChannelID: cfg.AnnounceChannelID,
		LevelRoles:        cfg.LevelRoles,
		LevelExpUnit:      cfg.LevelExpUnit,
	}, bot.Services{
		Ledger:   ledger,
		Registry: registry,
		Payouts:  payouts,
		Shop:     shop,
		Activity: activity,
		Sessions: sessions,
		Router:   router,
		Engine:   game.NewEngine(router),
		Bank:     bank,
		GameSettings: game.Settings{
			Rounds:       cfg.QuizRounds,
			MinQuestions: cfg.MinQuestions,
			RoundTimeout: cfg.RoundTimeout,
			Reward:       models.Reward{Currency: cfg.RoundRewardCurrency, Experience: cfg.RoundRewardExp},
		},
	}, eventBus)
	if err != nil {
		_ = scheduler.Shutdown()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.WithField("environment", cfg.Environment).Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	if err := debugServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error stopping debug API")
	}
	if err := scheduler.Shutdown(); err != nil {
		log.WithError(err).Error("Error stopping scheduler")
	}

	// Running games release their sessions once ctx is cancelled
	if active, err := sessions.Active(shutdownCtx); err == nil && len(active) > 0 {
		log.WithField("sessions", len(active)).Warn("Sessions still held at shutdown")
	}

	log.Info("Shutdown completed")
	return nil
}
