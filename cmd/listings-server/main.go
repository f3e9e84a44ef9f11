// Command listings-server serves VaultRE listings as display-ready JSON.
//
// Responses are cached by the configured backend; adding "nocache" to any
// listing query forces a live fetch that refreshes the cache.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/vaultre-client/pkg/cache"
	"github.com/Sternrassler/vaultre-client/pkg/client"
	"github.com/Sternrassler/vaultre-client/pkg/config"
	"github.com/Sternrassler/vaultre-client/pkg/listing"
	"github.com/Sternrassler/vaultre-client/pkg/logging"
	"github.com/Sternrassler/vaultre-client/pkg/metrics"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("listings-server stopped")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(logging.Config{
		Level:   logging.LogLevel(cfg.Log.Level),
		Pretty:  cfg.Log.Pretty,
		Output:  os.Stderr,
		Service: "listings-server",
	})
	logger := logging.NewLogger("server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clk := clock.New()
	b, err := openBackend(ctx, cfg.Cache, clk, logger)
	if err != nil {
		return err
	}
	defer b.close()
	logger.Info().Str("backend", cfg.Cache.Backend).Str("namespace", cfg.Cache.Namespace).Msg("Cache store ready")

	vaultre, err := client.New(cfg.ClientConfig())
	if err != nil {
		return err
	}

	display, err := cfg.ListingDisplay()
	if err != nil {
		return err
	}

	fetcherLogger := logging.NewLogger("cached-fetch")
	opts := cfg.FetcherOptions()
	opts.Logger = &fetcherLogger
	fetcher := cache.NewFetcher(b.store, vaultre, opts)

	listingLogger := logging.NewLogger("listing")
	repo := listing.NewRepository(fetcher, listing.RepositoryConfig{
		Display: display,
		Clock:   clk,
		Logger:  &listingLogger,
	})

	metrics.SetBuildInfo(version, cfg.Cache.Backend)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(&server{repo: repo, ping: b.ping, logger: logger}, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("Starting listings server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
