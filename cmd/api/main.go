package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/pharmacy-sales/internal/api"
	"github.com/dvloznov/pharmacy-sales/internal/config"
	"github.com/dvloznov/pharmacy-sales/internal/gcs"
	"github.com/dvloznov/pharmacy-sales/internal/logger"
	"github.com/dvloznov/pharmacy-sales/internal/pipeline"
	"github.com/dvloznov/pharmacy-sales/internal/runs/inmemory"
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON or YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.NewFromOptions(cfg.LoggerOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	normalizer := cfg.Normalizer()
	aggregator := cfg.Aggregator()
	svc := pipeline.NewService(pipeline.ServiceOptions{
		Normalizer: &normalizer,
		Aggregator: &aggregator,
		Runs:       inmemory.NewStore(),
		Fetcher:    gcs.NewFetcher(cfg.MaxUploadBytes, gcs.ClientOptions(cfg.GCSEndpoint, cfg.GCSCredentialsFile)...),
		CacheSize:  cfg.CacheSize,
		CacheTTL:   cfg.CacheTTL,
		Timeout:    cfg.PipelineTimeout,
	})

	handler := api.NewRouter(svc, api.RouterOptions{
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.WriteTimeout,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}

	log.Info().Msg("Server exited")
}
