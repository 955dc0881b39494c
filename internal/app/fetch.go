package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nisee.app/newsflow/internal/cli"
	"nisee.app/newsflow/internal/config"
	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/embed"
	"nisee.app/newsflow/internal/logging"
	"nisee.app/newsflow/internal/media"
	"nisee.app/newsflow/internal/metrics"
	"nisee.app/newsflow/internal/pipeline"
	"nisee.app/newsflow/internal/provider"
	"nisee.app/newsflow/internal/vectorindex"
)

func runFetch(args []string) int {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	providerCategory := fs.String("category", "", "Provider category to fetch (e.g. technology)")
	categoryCode := fs.String("category-code", "", "Stored category code posts are filed under")
	subCategoriesRaw := fs.String("sub-categories", "", "Comma-separated sub-category search terms")
	language := fs.String("language", "en", "Provider language filter")
	batchSize := fs.Int("batch-size", pipeline.DefaultBatchSize, "Posts per commit batch")
	skipIndex := fs.Bool("skip-index", false, "Skip inline vector indexing after the run")
	timeout := fs.Duration("timeout", 10*time.Minute, "Overall run timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if strings.TrimSpace(*providerCategory) == "" {
		fmt.Fprintln(os.Stderr, "--category is required")
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	fetcher, err := provider.NewClient(cfg.NewsAPIBaseURL, cfg.NewsAPIKey, cfg.NewsAPITimeout, logger)
	if err != nil {
		logger.Error().Err(err).Msg("provider client initialization failed")
		fmt.Fprintf(os.Stderr, "Failed to initialize provider client: %v\n", err)
		return 1
	}

	var indexer pipeline.Indexer
	if !*skipIndex {
		qdrantClient, err := vectorindex.Connect(cfg)
		if err != nil {
			logger.Error().Err(err).Msg("vector index connection failed")
			fmt.Fprintf(os.Stderr, "Failed to connect to vector index: %v\n", err)
			return 1
		}
		encoder := embed.NewClient(cfg.EmbedEndpoint, cfg.EmbedRequestTimeout)
		indexer = vectorindex.NewIndexer(qdrantClient, encoder, cfg.QdrantCollection, logger)
	}

	service := pipeline.NewService(
		pool,
		fetcher,
		media.NewImageProbe(cfg.ImageProbeTimeout),
		media.NewHTTPProcessor(cfg.MediaProcessorURL, cfg.MediaProcessorTimeout),
		indexer,
		metrics.NewLogSink(logger),
		*batchSize,
		logger,
	)

	result, err := service.Run(ctx, pipeline.Request{
		ProviderCategory: *providerCategory,
		CategoryCode:     *categoryCode,
		SubCategories:    splitCSV(*subCategoriesRaw),
		Language:         *language,
		SkipIndex:        *skipIndex,
	})
	if err != nil {
		logger.Error().Err(err).Msg("ingestion run failed")
		fmt.Fprintf(os.Stderr, "Ingestion run failed: %v\n", err)
		return 1
	}

	logger.Info().
		Int("fetched", result.Fetched).
		Int("saved", result.Saved).
		Int("skipped", result.Skipped).
		Int("indexed", result.Indexed).
		Int("sub_category_errors", result.SubCategoryErrors).
		Msg("ingestion run completed")
	fmt.Printf("ok: fetched=%d saved=%d skipped=%d indexed=%d\n", result.Fetched, result.Saved, result.Skipped, result.Indexed)
	if result.SubCategoryErrors > 0 {
		fmt.Printf("warning: %d sub-categories were abandoned after commit failures\n", result.SubCategoryErrors)
	}
	return 0
}

func splitCSV(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}
