// Package main is the entry point for the chronoglobe viewer.
package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/chronoglobe/internal/assets"
	"github.com/Faultbox/chronoglobe/internal/config"
	"github.com/Faultbox/chronoglobe/internal/host"
	"github.com/Faultbox/chronoglobe/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== chronoglobe ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	h, err := host.New(cfg)
	if err != nil {
		var assetErr *assets.AssetError
		if errors.As(err, &assetErr) {
			logger.Fatal("required asset unavailable",
				zap.String("asset", assetErr.Name),
				zap.Stringer("status", assetErr.Status),
				zap.Error(err))
		}
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	defer h.Close()

	if err := h.Run(); err != nil {
		logger.Error("globe error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("closed normally")
}
