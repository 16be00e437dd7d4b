// viostream listens to the Vio live market feed and logs every update.
// Usage: go run ./cmd/viostream --config configs/viostream.example.yaml
//
// Without --config, settings are read from VIO_* environment variables
// (a .env file in the working directory is loaded first):
//
//	VIO_API_KEY       - Your Vio API key
//	VIO_API_KEY_FILE  - Or a file containing it
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/vio-data/internal/api"
	"github.com/rickgao/vio-data/internal/auth"
	"github.com/rickgao/vio-data/internal/config"
	"github.com/rickgao/vio-data/internal/connection"
	"github.com/rickgao/vio-data/internal/market"
	"github.com/rickgao/vio-data/internal/model"
	"github.com/rickgao/vio-data/internal/poller"
	"github.com/rickgao/vio-data/internal/version"
	"github.com/rickgao/vio-data/internal/vio"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: VIO_* environment)")
	verbose := flag.Bool("verbose", false, "log every item of each update")
	flag.Parse()

	// .env is optional.
	_ = godotenv.Load()

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadAndValidate(*configPath)
	} else {
		cfg, err = config.LoadEnv()
	}
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger, closeLog, err := newLogger(cfg.Logging, os.Stdout)
	if err != nil {
		slog.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("starting viostream",
		"version", version.Version,
		"commit", version.Commit,
		"rest_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
	)

	creds, err := cfg.Credentials()
	if err != nil {
		logger.Error("failed to load credentials", "error", err)
		os.Exit(1)
	}

	client := newClient(cfg, creds, logger)
	listener := newListener(cfg, creds, client.Cache(), logger)
	async := vio.NewAsyncClient(client, listener, logger)

	if _, err := async.Subscribe(&updateLogger{logger: logger, verbose: *verbose}); err != nil {
		logger.Error("failed to subscribe", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start health server
	var healthServer *http.Server
	if cfg.Health.Port > 0 {
		healthServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
			Handler: createHealthHandler(cfg.Health.Path, async, logger),
		}
		go func() {
			logger.Info("starting health server", "port", cfg.Health.Port)
			if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
				logger.Error("health server error", "error", err)
			}
		}()
	}

	// Start REST fallback poller
	var snapPoller *poller.Poller
	if cfg.Poller.Enabled {
		snapPoller = poller.New(poller.Config{
			Interval: cfg.Poller.Interval,
			Timeout:  cfg.Poller.Timeout,
		}, client, async, logger.With("component", "poller"))
		if err := snapPoller.Start(ctx); err != nil {
			logger.Error("failed to start poller", "error", err)
			os.Exit(1)
		}
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := async.Stats()
				logger.Info("stats",
					"state", stats.State,
					"connects", stats.Connects,
					"reconnects", stats.Reconnects,
					"updates", stats.Updates,
					"ignored", stats.Ignored,
					"parse_errors", stats.ParseErrors,
					"duplicates", stats.Duplicates,
					"subscriber_errors", stats.SubscriberErrors,
					"cached", client.Cache().Len(),
				)
			}
		}
	}()

	// Run blocks until SIGINT/SIGTERM.
	exitCode := 0
	if cfg.Listener.Disabled {
		logger.Info("listener disabled, polling only")
		sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		<-sigCtx.Done()
		stop()
	} else if err := async.Run(ctx); err != nil {
		logger.Error("listener failed", "error", err)
		exitCode = 1
	}
	cancel()

	// Graceful shutdown
	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if snapPoller != nil {
		snapPoller.Stop(shutdownCtx)
	}
	if healthServer != nil {
		healthServer.Shutdown(shutdownCtx)
	}

	logger.Info("viostream stopped")
	if exitCode != 0 {
		closeLog()
		os.Exit(exitCode)
	}
}

func newClient(cfg *config.Config, creds *auth.Credentials, logger *slog.Logger) *vio.Client {
	rest := api.NewClient(
		cfg.API.RestURL,
		"",
		api.WithCredentials(creds),
		api.WithLogger(logger.With("component", "api")),
		api.WithTimeout(cfg.API.Timeout),
	)
	cache := market.NewCache(market.Config{Capacity: cfg.Cache.Capacity}, logger)
	return vio.NewClient(rest, cache, logger)
}

func newListener(cfg *config.Config, creds *auth.Credentials, cache *market.Cache, logger *slog.Logger) *connection.Listener {
	lcfg := connection.DefaultListenerConfig()
	lcfg.Client.URL = cfg.API.WSURL
	lcfg.Client.HandshakeTimeout = cfg.Listener.HandshakeTimeout
	lcfg.Client.PingInterval = cfg.Listener.PingInterval
	lcfg.Client.ReadTimeout = cfg.Listener.ReadTimeout
	lcfg.DispatchConcurrency = cfg.Listener.DispatchConcurrency

	var backoff connection.Backoff
	switch cfg.Listener.Backoff {
	case config.BackoffConstant:
		backoff = connection.ConstantBackoff{Delay: cfg.Listener.ReconnectBaseDelay}
	default:
		backoff = connection.NewExponentialBackoff(cfg.Listener.ReconnectBaseDelay, cfg.Listener.ReconnectMaxDelay)
	}

	return connection.NewListener(lcfg, creds, cache,
		logger.With("component", "listener"),
		connection.WithBackoff(backoff),
	)
}

// updateLogger logs each market update.
type updateLogger struct {
	logger  *slog.Logger
	verbose bool
}

func (u *updateLogger) OnUpdate(_ context.Context, m *model.MarketInstance) error {
	u.logger.Info("market update",
		"id", m.ID,
		"captured_at", m.ScanInfo.CapturedAt,
		"items", m.Len(),
	)
	if !u.verbose {
		return nil
	}
	for _, name := range m.ItemNames() {
		item, _ := m.Item(name)
		u.logger.Info("item",
			"name", name,
			"buy_volume", item.Summary.BuyVolume,
			"buy_price", item.Summary.BuyPrice,
			"sell_volume", item.Summary.SellVolume,
			"sell_price", item.Summary.SellPrice,
			"buy_orders", len(item.Listings.Buy),
			"sell_orders", len(item.Listings.Sell),
		)
	}
	return nil
}
