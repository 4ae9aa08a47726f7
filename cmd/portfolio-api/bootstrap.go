package main

import (
	"context"
	"fmt"
	"os"

	"portfolio-api/internal/broker"
	"portfolio-api/internal/interfaces"
	"portfolio-api/internal/logger"
	"portfolio-api/internal/portfolio"
	"portfolio-api/internal/portfolio/portfolioobs"
	"portfolio-api/internal/store"
	"portfolio-api/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeBrokers builds one Alpaca client per configured account. Accounts
// without credentials are served degraded rather than failing startup.
func initializeBrokers(ctx context.Context, cfg *store.Config) map[int]interfaces.Broker {
	brokers := broker.NewAll(cfg)
	for _, a := range cfg.Accounts {
		creds := a.Credentials()
		if !creds.Configured() {
			logger.Warn(ctx, "Account has no credentials, data will be empty",
				"account", a.ID, "name", a.Name, "api_key_env", a.APIKeyEnv)
			continue
		}
		logger.Info(ctx, "Account configured", "account", a.ID, "name", a.Name, "paper", creds.Paper())
	}
	return brokers
}

func initializePortfolio(cfg *store.Config, brokers map[int]interfaces.Broker) interfaces.Portfolio {
	return portfolioobs.Wrap(portfolio.New(cfg, brokers))
}

// bootstrap runs the full startup sequence shared by every subcommand.
func bootstrap(ctx context.Context, configPath string) (*store.Config, interfaces.Portfolio, error) {
	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	brokers := initializeBrokers(ctx, cfg)
	return cfg, initializePortfolio(cfg, brokers), nil
}
