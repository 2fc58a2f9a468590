package generator

import (
	"context"
	"log/slog"

	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/pipeline"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
	"github.com/Bahjat/llms-txt-generator/internal/platform/requestid"
	"github.com/Bahjat/llms-txt-generator/internal/progress"
)

// Snapshots buffered ahead of a slow stream writer.
const progressBuffer = 8

// Service validates generation requests and starts them in the background.
type Service struct {
	runner Runner
	logger *slog.Logger
}

// NewService creates a Service backed by the given runner.
func NewService(runner Runner, logger *slog.Logger) *Service {
	return &Service{runner: runner, logger: logger}
}

// Start validates req and launches the generation. The run is detached from
// ctx cancellation: a client that disconnects stops receiving progress, but
// pages already in flight still settle.
func (s *Service) Start(ctx context.Context, req model.GenerateRequest) (*progress.Channel, error) {
	siteURL, err := pipeline.NormalizeSiteURL(req.URL)
	if err != nil {
		return nil, err
	}
	if req.MaxURLs < 0 {
		return nil, &errs.AppError{Kind: errs.InvalidInput, Message: "\"maxUrls\" must be a positive number."}
	}

	logger := s.logger.With("url", siteURL, "request_id", requestid.FromContext(ctx))

	out := progress.NewChannel(progressBuffer)
	runCtx := context.WithoutCancel(ctx)
	go func() {
		final := s.runner.Run(runCtx, pipeline.Request{
			SiteURL:     siteURL,
			MaxURLs:     req.MaxURLs,
			Credentials: req.Credentials(),
		}, out)

		logger.Info("generation finished",
			"status", final.Status,
			"processed_urls", final.ProcessedURLs,
			"failed_urls", len(final.Errors),
			"client_gone", out.Abandoned(),
		)
	}()
	return out, nil
}
