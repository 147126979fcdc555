package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"sjsage522/brochureworker/config"
	"sjsage522/brochureworker/helpers"
	"sjsage522/brochureworker/internal/browser"
	"sjsage522/brochureworker/internal/crawler"
	"sjsage522/brochureworker/logger"
	apperrors "sjsage522/brochureworker/pkg/errors"
	"sjsage522/brochureworker/services/cache"
	"sjsage522/brochureworker/services/sink"
	"sjsage522/brochureworker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		logger.Default.Error().Err(err).Msg("Brochure worker failed")
		os.Exit(1)
	}
}

// newRootCommand binds the flags on top of the environment configuration
func newRootCommand() *cobra.Command {
	cfg := config.LoadConfig()

	cmd := &cobra.Command{
		Use:           "brochureworker",
		Short:         "brochureworker collects the currently valid shop brochures from prospektmaschine.de.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.EntryURL, "entry-url", cfg.EntryURL, "Page listing the shop directory.")
	flags.StringVar(&cfg.SiteOrigin, "origin", cfg.SiteOrigin, "Origin prefixed to relative shop links.")
	flags.StringSliceVar(&cfg.Shops, "shops", cfg.Shops, "Shops to scrape, \"*\" for all.")
	flags.StringVar(&cfg.DateFormat, "date-format", cfg.DateFormat, "Date format of the stored validity dates (strftime or Go layout).")
	flags.StringVarP(&cfg.OutputFile, "output", "o", cfg.OutputFile, "JSON file the brochures are written to.")
	flags.StringVar(&cfg.FailureLog, "failure-log", cfg.FailureLog, "File shop failures are appended to.")
	flags.StringVar(&cfg.RenderMode, "render", cfg.RenderMode, "How pages are loaded: http or chrome.")
	flags.StringVar(&cfg.ChromeAddr, "chrome-addr", cfg.ChromeAddr, "Address of the browserless instance used in chrome mode.")
	flags.DurationVar(&cfg.PageTimeout, "page-timeout", cfg.PageTimeout, "Timeout of a single page load.")
	flags.StringVar(&cfg.MemcacheAddr, "memcache", cfg.MemcacheAddr, "Memcache address remembering rate limits between runs.")
	flags.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address the brochures are also published to.")

	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.ForWorker()

	if err := cfg.Validate(); err != nil {
		return err
	}
	layout, err := cfg.DateLayout()
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log.Info().
		Str("environment", cfg.Environment).
		Str("entry_url", cfg.EntryURL).
		Strs("shops", cfg.Shops).
		Str("render_mode", cfg.RenderMode).
		Str("run_id", runID).
		Msg("Starting brochure worker")

	session := browser.NewSession(newRenderer(cfg), newCache(cfg), browser.Options{
		PageTimeout: cfg.PageTimeout,
		PaceMin:     cfg.PaceMin,
		PaceMax:     cfg.PaceMax,
		BlockKey:    browser.DefaultOptions().BlockKey,
		BlockTime:   cfg.BlockTime,
	})

	sinks := newSinks(ctx, cfg, runID)
	defer sinks.Close()

	opts := worker.Options{
		EntryURL: cfg.EntryURL,
		Origin:   cfg.SiteOrigin,
		Filter:   crawler.AllowList(cfg.Shops...),
		RunID:    runID,
	}
	if cfg.FailureLog != "" {
		opts.Failures = helpers.NewFailureLog(cfg.FailureLog)
	}

	w := worker.NewWorker(session, crawler.NewShopProcessor(layout), sinks, opts)
	return exitError(w.Run(ctx))
}

// exitError keeps only the errors that fail the process. Anything else has
// already been logged and the run counts as complete.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if apperrors.IsType(err, apperrors.ErrorTypePersistence) || apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		logger.Warn("Run cancelled: %v", err)
		return nil
	}
	logger.LogError("worker", err, "Run finished without results")
	return nil
}

func newRenderer(cfg config.Config) browser.Renderer {
	if cfg.RenderMode == config.RenderModeChrome {
		return browser.NewChromeRenderer(cfg.ChromeAddr, cfg.PageTimeout)
	}
	return browser.NewHTTPRenderer(browser.HTTPOptions{
		Timeout:           cfg.PageTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		CloudflareBypass:  cfg.CloudflareBypass,
	})
}

// newCache prefers memcache and falls back to an in-process cache
func newCache(cfg config.Config) cache.CacheService {
	if cfg.MemcacheAddr != "" {
		memcacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
		err := memcacheService.Ping()
		if err == nil {
			logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
			return memcacheService
		}
		logger.Warn("Memcache at %s unavailable, using in-process cache: %v", cfg.MemcacheAddr, err)
	}
	return cache.NewMemoryService(128)
}

// newSinks always writes the output file and adds the Redis stream when configured
func newSinks(ctx context.Context, cfg config.Config, runID string) sink.Multi {
	sinks := sink.Multi{sink.NewFileSink(cfg.OutputFile)}
	if cfg.RedisAddr == "" {
		return sinks
	}

	redisSink := sink.NewRedisSink(cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLength, runID)
	if err := redisSink.Ping(ctx); err != nil {
		logger.Warn("Redis at %s unavailable, publishing disabled: %v", cfg.RedisAddr, err)
		redisSink.Close()
		return sinks
	}

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)", cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	return append(sinks, redisSink)
}
