package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/deusflow/newsgate/internal/api"
	"github.com/deusflow/newsgate/internal/config"
	"github.com/deusflow/newsgate/internal/extract"
	"github.com/deusflow/newsgate/internal/logger"
	"github.com/deusflow/newsgate/internal/metrics"
	"github.com/deusflow/newsgate/internal/news"
	"github.com/deusflow/newsgate/internal/provider"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logg := logger.New(cfg.Debug)
	logg.Info("newsgate starting", "addr", cfg.ListenAddr, "default_source", cfg.DefaultSource)

	sources, err := provider.LoadSources(cfg.ProvidersConfigPath)
	if err != nil {
		logg.Error("loading provider config failed", "path", cfg.ProvidersConfigPath, "error", err)
		os.Exit(1)
	}

	// One outbound client for all upstream traffic; per-call deadlines come
	// from request contexts.
	client := &http.Client{}

	registry := provider.NewRegistry(cfg.DefaultSource)
	for _, src := range sources {
		switch src.ID {
		case "bing":
			registry.Register(src.ID, provider.NewBing(client, src.Label, cfg.ProviderTimeout, logg))
		case "toutiao":
			registry.Register(src.ID, provider.NewToutiao(client, src.Label, cfg.ProviderTimeout, logg))
		case "weibo":
			registry.Register(src.ID, provider.NewWeibo(client, src.Label, cfg.ProviderTimeout, logg))
		default:
			logg.Warn("unknown provider id in config, skipping", "id", src.ID)
		}
	}

	aggregator := news.NewAggregator(registry, cfg.SampleSize, logg)
	extractor := extract.New(client, cfg.ExtractTimeout, cfg.MaxContentRunes, logg)

	server := api.New(api.Config{
		Addr:           cfg.ListenAddr,
		DefaultKeyword: cfg.DefaultKeyword,
		CORSEnabled:    cfg.CORSEnabled,
	}, aggregator, extractor, metrics.New(), logg)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logg.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logg.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	logg.Info("server stopped")
}
