package main

import (
	"context"
	"os"

	"github.com/yigit/examalloc/internal/pkg/logger"
	"github.com/yigit/examalloc/internal/server"
)

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
