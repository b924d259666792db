package app

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/internal/clock"
	grpcserver "github.com/chrissnell/horologium/internal/controllers/grpc"
	"github.com/chrissnell/horologium/internal/controllers/restserver"
	"github.com/chrissnell/horologium/internal/weather"
	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
)

// App represents the main application
type App struct {
	config *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		config: cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.config.Validate(); err != nil {
		return err
	}

	// Open the almanac backend
	provider, err := almanac.New(ctx, a.config.Almanac, a.logger.Named("almanac"))
	if err != nil {
		return err
	}
	defer provider.Close()

	// Weather is optional; a nil source disables it
	var source clock.WeatherSource
	if a.config.Weather.Enabled {
		source = weather.NewClient(a.config.Weather, a.logger.Named("weather"))
	}

	clk, err := clock.New(a.config, source, a.logger.Named("clock"))
	if err != nil {
		return err
	}
	if err := clk.Start(ctx, &wg); err != nil {
		return err
	}

	rest, err := restserver.NewController(ctx, &wg, a.config.REST, clk, provider, a.logger.Named("rest"))
	if err != nil {
		return err
	}

	if a.config.GRPC.Enabled {
		rpc, err := grpcserver.NewController(ctx, &wg, clk, a.logger.Named("grpc"))
		if err != nil {
			return err
		}
		if err := a.serveShared(ctx, &wg, rest, rpc); err != nil {
			return err
		}
	} else if err := rest.StartController(); err != nil {
		return err
	}

	a.logger.Infof("horologium started for %s (%.4f, %.4f, %s)",
		a.config.Location.Name, a.config.Location.Latitude, a.config.Location.Longitude, a.config.Location.Timezone)

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		a.logger.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	// Wait for all workers to terminate
	a.logger.Info("waiting for all workers to terminate...")
	wg.Wait()
	a.logger.Info("shutdown complete")

	return nil
}
