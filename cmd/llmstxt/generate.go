package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Bahjat/llms-txt-generator/internal/firecrawl"
	"github.com/Bahjat/llms-txt-generator/internal/model"
	"github.com/Bahjat/llms-txt-generator/internal/pipeline"
	"github.com/Bahjat/llms-txt-generator/internal/platform/config"
	"github.com/Bahjat/llms-txt-generator/internal/platform/errs"
	"github.com/Bahjat/llms-txt-generator/internal/platform/logger"
	"github.com/Bahjat/llms-txt-generator/internal/platform/sse"
	"github.com/Bahjat/llms-txt-generator/internal/progress"
	"github.com/Bahjat/llms-txt-generator/internal/sitecrawl"
	"github.com/Bahjat/llms-txt-generator/internal/summarizer"
)

type generateOptions struct {
	maxURLs      int
	outputDir    string
	noFullText   bool
	verbose      bool
	firecrawlKey string
	openAIKey    string
	local        bool
	server       string
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <url>",
		Short: "Crawl a website and write its llms.txt files",
		Long: `Generate discovers the pages of a website, fetches and summarizes them
concurrently, and writes {domain}-llms.txt and {domain}-llms-full.txt.

Keys default to the FIRECRAWL_API_KEY and OPENAI_API_KEY environment variables.

Examples:
  llmstxt generate https://example.com
  llmstxt generate example.com --max-urls 50 --output-dir ./out
  llmstxt generate https://example.com --local --no-full-text
  llmstxt generate https://example.com --server http://localhost:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), opts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.maxURLs, "max-urls", 0, "Maximum number of pages to process (default: server setting)")
	f.StringVar(&opts.outputDir, "output-dir", ".", "Directory the files are written to")
	f.BoolVar(&opts.noFullText, "no-full-text", false, "Skip writing llms-full.txt")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log every page as it settles")
	f.StringVar(&opts.firecrawlKey, "firecrawl-api-key", os.Getenv("FIRECRAWL_API_KEY"), "Firecrawl API key")
	f.StringVar(&opts.openAIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "OpenAI API key")
	f.BoolVar(&opts.local, "local", false, "Crawl the site directly instead of through Firecrawl")
	f.StringVar(&opts.server, "server", "", "Stream the generation from a running API server at this base URL")

	return cmd
}

func runGenerate(ctx context.Context, opts *generateOptions, rawURL string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if opts.maxURLs < 0 {
		return errors.New("--max-urls must be positive")
	}
	siteURL, err := pipeline.NormalizeSiteURL(rawURL)
	if err != nil {
		return errors.New(errs.Message(err))
	}

	level := "INFO"
	if opts.verbose {
		level = "DEBUG"
	}
	log := logger.New(stderr, level)

	req := model.GenerateRequest{
		URL:             siteURL,
		MaxURLs:         opts.maxURLs,
		FirecrawlAPIKey: opts.firecrawlKey,
		OpenAIAPIKey:    opts.openAIKey,
	}

	report := newReporter(stderr, opts.verbose)

	var final model.ProgressSnapshot
	if opts.server != "" {
		final, err = streamRemote(ctx, opts.server, req, report.observe)
	} else {
		final, err = runLocal(ctx, opts, req, log, report.observe)
	}
	if err != nil {
		return err
	}

	if final.Status != model.StatusCompleted || final.Files == nil {
		msg := "generation did not complete"
		if len(final.Errors) > 0 {
			msg = final.Errors[0].Message
		}
		return errors.New(msg)
	}

	written, err := writeDocuments(opts.outputDir, siteURL, *final.Files, !opts.noFullText)
	if err != nil {
		return err
	}
	printSummary(stdout, final, written)
	return nil
}

// runLocal runs the pipeline in this process.
func runLocal(ctx context.Context, opts *generateOptions, req model.GenerateRequest, log *slog.Logger, observe func(model.ProgressSnapshot)) (model.ProgressSnapshot, error) {
	cfg := config.Defaults()

	var (
		discoverer pipeline.Discoverer
		fetcher    pipeline.Fetcher
	)
	if opts.local {
		crawler := sitecrawl.NewCrawler(sitecrawl.NewHTTPClient(), log)
		discoverer, fetcher = crawler, crawler
	} else {
		fc := firecrawl.NewClient(os.Getenv("FIRECRAWL_BASE_URL"), "")
		discoverer, fetcher = fc, fc
	}
	summary := summarizer.NewClient(os.Getenv("OPENAI_BASE_URL"), "", os.Getenv("OPENAI_MODEL"))

	pipe := pipeline.New(discoverer, pipeline.NewWorker(fetcher, summary, log), pipeline.Limits{
		Default: cfg.DefaultMaxURLs,
		Cap:     cfg.MaxURLsCap,
		Free:    cfg.FreeMaxURLs,
	}, log)

	out := progress.NewChannel(0)
	done := make(chan model.ProgressSnapshot, 1)
	go func() {
		done <- pipe.Run(ctx, pipeline.Request{
			SiteURL:     req.URL,
			MaxURLs:     req.MaxURLs,
			Credentials: req.Credentials(),
		}, out)
	}()

	for s := range out.Events() {
		observe(s)
	}
	return <-done, nil
}

// streamRemote asks a running API server to generate and follows its
// progress stream until the terminal snapshot.
func streamRemote(ctx context.Context, server string, req model.GenerateRequest, observe func(model.ProgressSnapshot)) (model.ProgressSnapshot, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(server, "/")+"/generate", bytes.NewReader(body))
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return model.ProgressSnapshot{}, fmt.Errorf("contact server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var apiErr model.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return model.ProgressSnapshot{}, fmt.Errorf("server rejected the request: %s", apiErr.Message)
		}
		return model.ProgressSnapshot{}, fmt.Errorf("server rejected the request: %s", resp.Status)
	}

	dec := sse.NewDecoder(resp.Body)
	var last model.ProgressSnapshot
	for {
		var s model.ProgressSnapshot
		err := dec.Next(&s)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return last, err
		}
		observe(s)
		last = s
	}

	if !last.Status.Terminal() {
		return last, errors.New("progress stream ended before the generation finished")
	}
	return last, nil
}
