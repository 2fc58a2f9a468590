package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Bahjat/llms-txt-generator/internal/firecrawl"
	"github.com/Bahjat/llms-txt-generator/internal/generator"
	"github.com/Bahjat/llms-txt-generator/internal/pipeline"
	"github.com/Bahjat/llms-txt-generator/internal/platform/config"
	"github.com/Bahjat/llms-txt-generator/internal/platform/logger"
	"github.com/Bahjat/llms-txt-generator/internal/platform/middleware"
	"github.com/Bahjat/llms-txt-generator/internal/sitecrawl"
	"github.com/Bahjat/llms-txt-generator/internal/summarizer"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	pipe := newPipeline(cfg, log)

	svc := generator.NewService(pipe, log)
	transport := generator.NewTransport(svc, log)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.RequestID(middleware.Logging(log)(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: a progress stream lasts as long as the crawl.
		IdleTimeout: 120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "crawl_backend", cfg.CrawlBackend)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newPipeline(cfg config.Config, log *slog.Logger) *pipeline.Pipeline {
	var (
		discoverer pipeline.Discoverer
		fetcher    pipeline.Fetcher
	)
	switch cfg.CrawlBackend {
	case config.BackendLocal:
		crawler := sitecrawl.NewCrawler(sitecrawl.NewHTTPClient(), log)
		discoverer, fetcher = crawler, crawler
	default:
		fc := firecrawl.NewClient(cfg.FirecrawlBaseURL, cfg.FirecrawlAPIKey)
		discoverer, fetcher = fc, fc
	}

	summary := summarizer.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	worker := pipeline.NewWorker(fetcher, summary, log)

	return pipeline.New(discoverer, worker, pipeline.Limits{
		Default: cfg.DefaultMaxURLs,
		Cap:     cfg.MaxURLsCap,
		Free:    cfg.FreeMaxURLs,
	}, log)
}
