package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docoutline/internal/api"
	"github.com/dgallion1/docoutline/internal/collector"
	"github.com/dgallion1/docoutline/internal/config"
	"github.com/dgallion1/docoutline/internal/notify"
	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/dgallion1/docoutline/internal/stats"
	"github.com/dgallion1/docoutline/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	clsCfg, err := config.LoadClassifier(cfg.ClassifierPath)
	if err != nil {
		log.Error("invalid classifier configuration", "error", err)
		os.Exit(1)
	}

	var cache *store.Store
	if cfg.CachePath != "" {
		cache, err = store.Open(cfg.CachePath)
		if err != nil {
			log.Error("open cache", "postgres", store.IsPostgresDSN(cfg.CachePath), "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	latency := stats.NewLatency(time.Hour)
	ex := pipeline.NewExtractor(outline.New(clsCfg), cache, collector.Options{
		PDFPreflight:      cfg.PDFPreflight,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
		Log:               log,
	}, cfg.DocTimeout, latency, log)
	notifier := notify.NewClient(cfg.WebhookSecret, cfg.NotifyTimeout)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ex, notifier, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, ex, latency, cache, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		notifier.Close()
		if err := cache.Close(); err != nil {
			log.Warn("close cache", "error", err)
		}
	}()

	log.Info("starting docoutline", "port", cfg.Port, "cache", cfg.CachePath != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
