package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/ducduc1118-design/recash/internal/config"
	"github.com/ducduc1118-design/recash/internal/database"
	"github.com/ducduc1118-design/recash/internal/events"
	"github.com/ducduc1118-design/recash/internal/formance"
	"github.com/ducduc1118-design/recash/internal/memory"
	"github.com/ducduc1118-design/recash/internal/models"
	"github.com/ducduc1118-design/recash/internal/postgres"
	"github.com/ducduc1118-design/recash/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// godotenv returns an error when .env is missing, which is fine
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services bundles what every command needs: the ledger, the reward rules and the event publisher.
type Services struct {
	Ledger    store.LedgerStore
	Rewards   models.RewardsConfig
	Publisher events.Publisher
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	rewards, err := LoadRewardsConfig(cfg.RewardsFile)
	if err != nil {
		return nil, err
	}

	ledger, err := InitializeStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &Services{
		Ledger:    ledger,
		Rewards:   rewards,
		Publisher: events.New(cfg.Events),
	}, nil
}

// InitializeStore opens the ledger backend selected by cfg.Backend
func InitializeStore(ctx context.Context, cfg *models.Config) (store.LedgerStore, error) {
	zap.L().Info("Opening ledger store", zap.String("backend", cfg.Backend))

	var (
		ledger store.LedgerStore
		err    error
	)
	switch cfg.Backend {
	case config.BackendSQLite, "":
		var svc *database.Service
		if svc, err = database.NewService(ctx, cfg.Database); err == nil {
			ledger = svc
		}
	case config.BackendPostgres:
		var svc *postgres.Service
		if svc, err = postgres.NewService(ctx, cfg.Postgres); err == nil {
			ledger = svc
		}
	case config.BackendFormance:
		var svc *formance.Service
		if svc, err = formance.NewService(ctx, cfg.Formance); err == nil {
			ledger = svc
		}
	case config.BackendMemory:
		zap.L().Warn("Using in-memory ledger store, data is lost on exit")
		ledger = memory.NewStore()
	default:
		err = fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func (cs *Services) Close() {
	if cs.Publisher != nil {
		if err := cs.Publisher.Close(); err != nil {
			zap.L().Warn("Failed to close event publisher", zap.Error(err))
		}
	}
	if cs.Ledger != nil {
		cs.Ledger.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
