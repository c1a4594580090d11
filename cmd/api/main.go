package main

import (
	"os"

	"github.com/yigit/collegeerp/internal/pkg/logger"
	"github.com/yigit/collegeerp/internal/server"
)

func main() {
	// NewServer orchestrates config, logger, store, dependencies and router
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
