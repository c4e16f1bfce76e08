package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blackmichael/discuit-rss/internal/config"
	"github.com/blackmichael/discuit-rss/internal/discuit"
	"github.com/blackmichael/discuit-rss/internal/domain"
	"github.com/blackmichael/discuit-rss/internal/httpserver"
	"github.com/blackmichael/discuit-rss/internal/logger"
	"github.com/blackmichael/discuit-rss/internal/metrics"
	"github.com/blackmichael/discuit-rss/internal/rss"
	"github.com/blackmichael/discuit-rss/internal/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Log, os.Stdout)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer closeLog.Close()

	metrics.Init("discuit-rss", version.Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// The session is established once, before any request is accepted.
	client := discuit.NewClient(cfg.DiscuitBaseURL,
		discuit.WithTimeout(cfg.UpstreamTimeout),
		discuit.WithUserAgent(cfg.UserAgent),
	)
	if err := client.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize discuit session: %w", err)
	}
	log.Info("discuit session established", "base_url", cfg.DiscuitBaseURL)

	feedService := domain.NewFeedService(client, log)
	translator := rss.NewTranslator(cfg.SiteURL)

	server := httpserver.NewServer(cfg, feedService, translator, log)
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server started", "port", cfg.Port, "site_url", cfg.SiteURL)

	select {
	case sig := <-sigCh:
		log.Info("received signal, shutting down", "signal", sig)
	case err := <-errCh:
		log.Error("http server exited with error", "error", err)
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error shutting down http server", "error", err)
	}

	return nil
}
