package cmd

import (
	"context"
	"fmt"

	"arcade/config"
	"arcade/database"
	"arcade/events"
	"arcade/repository"
	"arcade/repository/jsonstore"
	"arcade/service"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

// storage is the ledger backend selected by STORAGE_BACKEND
type storage struct {
	uowFactory  service.UnitOfWorkFactory
	maintenance service.MaintenanceStore
	close       func()
}

func openStorage(ctx context.Context, cfg *config.Config, bus *events.Bus) (*storage, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendJSON:
		store, err := jsonstore.NewStore(cfg.DataDir, bus, cfg.LevelExpUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to open json store: %w", err)
		}
		log.WithField("dir", cfg.DataDir).Info("Using JSON file storage")
		return &storage{uowFactory: store, maintenance: store, close: func() {}}, nil

	default:
		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established")
		return &storage{
			uowFactory:  repository.NewUnitOfWorkFactory(db, bus),
			maintenance: repository.NewMaintenanceRepository(db),
			close:       db.Close,
		}, nil
	}
}

func openRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	log.WithField("addr", opts.Addr).Info("Connected to Redis")
	return client, nil
}
