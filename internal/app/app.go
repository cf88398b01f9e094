// Package app wires configuration, clients, and services together
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ttmdash/internal/clients/yahoo"
	"ttmdash/internal/common"
	"ttmdash/internal/interfaces"
	"ttmdash/internal/services/market"
	"ttmdash/internal/services/valuation"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/ttmdash-server.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	YahooClient      interfaces.MarketDataClient
	MarketService    interfaces.MarketService
	ValuationService interfaces.ValuationService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, the market data client, and
// services. configPath may be empty, in which case the default resolution
// logic is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	// Check provided path, TTMDASH_CONFIG, then binary dir, then fallback
	if configPath == "" {
		configPath = os.Getenv("TTMDASH_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "ttmdash.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/ttmdash.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative log file path to binary directory
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	marketService := market.NewService(yahooClient, logger)
	valuationService := valuation.NewService(logger)

	logger.Info().
		Str("environment", config.Environment).
		Str("yahoo_base_url", config.Clients.Yahoo.BaseURL).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		YahooClient:      yahooClient,
		MarketService:    marketService,
		ValuationService: valuationService,
		StartupTime:      time.Now(),
	}, nil
}
