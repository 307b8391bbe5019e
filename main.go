package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"arcade/cmd"
	"arcade/config"
	"arcade/database"
	"arcade/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: arcade [command]

commands:
  (none)                                         run the bot
  migrate up|down [steps]|status                 manage the database schema
  reset-weekly                                   reset weekly experience once
  adjust-balance <guildID> <playerID> <amount>   admin balance adjustment
  anomaly <guildID> <kind> <multiplier> <duration> [name]
                                                 publish a guild-wide modifier`

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if os.Getenv("ENVIRONMENT") == "development" {
		log.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(os.Args) > 1 {
		if err := runCommand(ctx, os.Args[1], os.Args[2:]); err != nil {
			log.Fatalf("%s: %v", os.Args[1], err)
		}
		return
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runCommand(ctx context.Context, name string, args []string) error {
	switch name {
	case "migrate":
		return handleMigrationCommand(args)
	case "reset-weekly":
		return cmd.ResetWeekly(ctx)
	case "adjust-balance":
		ids, err := parseInts(args, 3)
		if err != nil {
			return err
		}
		return cmd.AdjustBalance(ctx, ids[0], ids[1], ids[2])
	case "anomaly":
		return handleAnomalyCommand(ctx, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command\n%s", usage)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: arcade migrate [up|down|status] [args...]")
	}

	databaseURL := config.Get().GetDatabaseURL()
	switch args[0] {
	case "up":
		return database.MigrateUp(databaseURL)
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(databaseURL, steps)
	case "status":
		return database.MigrateStatus(databaseURL)
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

func handleAnomalyCommand(ctx context.Context, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("usage: arcade anomaly <guildID> <kind> <multiplier> <duration> [name]")
	}
	guildID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid guild ID %q", args[0])
	}
	multiplier, err := decimal.NewFromString(args[2])
	if err != nil {
		return fmt.Errorf("invalid multiplier %q", args[2])
	}
	duration, err := time.ParseDuration(args[3])
	if err != nil {
		return fmt.Errorf("invalid duration %q", args[3])
	}
	name := ""
	if len(args) > 4 {
		name = args[4]
	}
	return cmd.PublishAnomaly(ctx, guildID, models.ModifierKind(args[1]), multiplier, duration, name)
}

func parseInts(args []string, n int) ([]int64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d arguments\n%s", n, usage)
	}
	out := make([]int64, n)
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", a)
		}
		out[i] = v
	}
	return out, nil
}
