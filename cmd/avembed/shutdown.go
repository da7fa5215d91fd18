package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/vyrodovalexey/avembed/internal/config"
	"github.com/vyrodovalexey/avembed/internal/observability"
)

const shutdownTimeout = 30 * time.Second

// run starts the bridge loop and the server, then blocks until a
// shutdown signal arrives.
func run(app *application, configPath string, logger observability.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var loopDone sync.WaitGroup
	loopDone.Add(1)
	go func() {
		defer loopDone.Done()
		app.loop.Run(ctx)
	}()

	go func() {
		if err := app.server.Start(ctx); err != nil {
			logger.Fatal("server failed", observability.Error(err))
		}
	}()

	startMetricsServerIfEnabled(app, logger)
	watcher := startConfigWatcher(app, configPath, logger)

	waitForShutdown(app, watcher, cancel, &loopDone, logger)
}

// startConfigWatcher watches the configuration file for changes. Route
// registrations are code, so a reload only refreshes tunable settings
// and surfaces invalid edits early; listener changes need a restart.
func startConfigWatcher(app *application, configPath string, logger observability.Logger) *config.Watcher {
	if configPath == "" {
		return nil
	}

	watcher, err := config.NewWatcher(configPath,
		func(cfg *config.EngineConfig) {
			logger.Info("configuration reloaded",
				observability.Int("serverPort", cfg.Server.Port),
				observability.Bool("metricsEnabled", cfg.Metrics.Enabled),
			)
			app.config = cfg
		},
		config.WithLogger(logger),
		config.WithErrorCallback(func(err error) {
			logger.Error("configuration reload failed", observability.Error(err))
		}),
	)
	if err != nil {
		logger.Error("failed to create config watcher", observability.Error(err))
		return nil
	}

	if err := watcher.Start(context.Background()); err != nil {
		logger.Error("failed to start config watcher", observability.Error(err))
		return nil
	}

	logger.Info("watching configuration file", observability.String("path", configPath))
	return watcher
}

// waitForShutdown waits for a shutdown signal and stops everything in
// dependency order: listeners first, then the bridge loop.
func waitForShutdown(
	app *application,
	watcher *config.Watcher,
	cancelLoop context.CancelFunc,
	loopDone *sync.WaitGroup,
	logger observability.Logger,
) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", observability.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if app.metricsServer != nil {
		logger.Info("stopping metrics server")
		if err := app.metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if err := app.server.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop server gracefully", observability.Error(err))
	}

	// No new requests can arrive now; drain the queued tasks.
	app.loop.Close()
	cancelLoop()
	loopDone.Wait()

	logger.Info("shutdown complete")
}
