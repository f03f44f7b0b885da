// ====================================
// File: cmd/ovt/main.go
// ====================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/otori-vision/ovt-client/internal/app"
	"github.com/otori-vision/ovt-client/internal/logger"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "path to configuration file")
	flag.Parse()

	// Setup context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger
	log, err := logger.New(logger.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting OVT client")

	// Create and initialize the client runner
	runner := app.NewRunner(log)
	if err := runner.Initialize(*configPath); err != nil {
		log.Fatal("Failed to initialize client", zap.Error(err))
	}

	// Run until signalled
	if err := runner.Run(ctx); err != nil {
		log.Fatal("Client execution error", zap.Error(err))
	}
}
