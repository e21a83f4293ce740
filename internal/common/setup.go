package common

import (
	"context"
	"fmt"
	"log"
	"strings"

	"remit-wallet-go/internal/api"
	"remit-wallet-go/internal/database"
	"remit-wallet-go/internal/formance"
	"remit-wallet-go/internal/models"
	"remit-wallet-go/internal/notify"
	"remit-wallet-go/internal/rates"
	"remit-wallet-go/internal/registry"
	"remit-wallet-go/internal/store"
	"remit-wallet-go/internal/transfer"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
		log.Println("Make sure to set environment variables via export or other means")
	} else {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

type Services struct {
	DbService    *database.Service
	Ledger       store.Ledger
	Notifier     notify.Notifier
	Feed         *rates.Feed
	Registry     *registry.Registry
	Orchestrator *transfer.Orchestrator
	Wallet       *api.WalletService
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

// InitializeServices wires the directory, ledger backend, notifier, rate feed,
// registry and orchestrator. The rate feed is not started.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	services := &Services{DbService: dbService}

	services.Ledger, err = initializeLedger(ctx, cfg, dbService)
	if err != nil {
		services.Close()
		return nil, err
	}

	services.Notifier, err = initializeNotifier(cfg.Notifier)
	if err != nil {
		services.Close()
		return nil, err
	}

	currencies, err := LoadCurrencies(cfg.Rates.CurrenciesFile)
	if err != nil {
		services.Close()
		return nil, err
	}
	zap.L().Info("Loaded currencies", zap.Int("count", len(currencies)))

	services.Feed = rates.NewFeed(cfg.Rates, currencies)
	services.Registry = registry.New(dbService, services.Feed)
	services.Orchestrator = transfer.NewOrchestrator(services.Ledger, services.Feed, services.Notifier, cfg.Transfer)
	services.Wallet = api.NewWalletService(dbService, services.Ledger, services.Registry, services.Orchestrator, services.Feed)

	return services, nil
}

// InitializeDatabaseOnly initializes just the database service
// Useful for user administration that never touches the ledger
func InitializeDatabaseOnly(ctx context.Context, cfg *models.Config) (*database.Service, error) {
	dbService, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return dbService, nil
}

func initializeLedger(ctx context.Context, cfg *models.Config, dbService *database.Service) (store.Ledger, error) {
	switch cfg.Ledger.Backend {
	case "formance":
		zap.L().Info("Using Formance ledger backend", zap.String("stack_url", cfg.Formance.StackURL))
		ledger, err := formance.NewService(ctx, cfg.Formance)
		if err != nil {
			return nil, err
		}
		return ledger, nil
	case "", "sqlite":
		zap.L().Info("Using SQLite ledger backend")
		return dbService, nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}

func initializeNotifier(cfg models.NotifierConfig) (notify.Notifier, error) {
	switch cfg.Kind {
	case "rabbitmq":
		return notify.NewRabbitMQNotifier(cfg)
	case "", "log":
		return notify.NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notifier %q", cfg.Kind)
	}
}

// Close cancels pending settlements before the stores shut down.
func (cs *Services) Close() {
	if cs.Orchestrator != nil {
		cs.Orchestrator.Close()
	}
	if cs.Feed != nil {
		cs.Feed.Stop()
	}
	if cs.Notifier != nil {
		cs.Notifier.Close()
	}
	if cs.Ledger != nil && cs.Ledger != store.Ledger(cs.DbService) {
		cs.Ledger.Close()
	}
	if cs.DbService != nil {
		cs.DbService.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
