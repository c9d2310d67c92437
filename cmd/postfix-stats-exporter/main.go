package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/postfix-stats/internal/core"
	"github.com/mikey/postfix-stats/internal/di"
	"github.com/mikey/postfix-stats/internal/ports"
	"go.uber.org/zap"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (default: search the standard locations)")
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontend ports.Frontend,
	cache core.BoundsCache,
) error {
	defer logger.Sync()

	// Start the exporter
	if err := frontend.Start(); err != nil {
		logger.Error("Failed to start exporter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the exporter
	if err := frontend.Stop(); err != nil {
		logger.Error("Failed to stop exporter", zap.Error(err))
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
