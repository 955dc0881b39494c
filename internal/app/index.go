package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"nisee.app/newsflow/internal/cli"
	"nisee.app/newsflow/internal/config"
	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/embed"
	"nisee.app/newsflow/internal/logging"
	"nisee.app/newsflow/internal/vectorindex"
)

func runIndex(args []string) int {
	fs := flag.NewFlagSet("index", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	afterID := fs.Int64("after", 0, "Only index posts with id greater than this")
	pageSize := fs.Int("page-size", 500, "Posts loaded per database page")
	timeout := fs.Duration("timeout", 30*time.Minute, "Overall backfill timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *pageSize <= 0 {
		fmt.Fprintln(os.Stderr, "--page-size must be > 0")
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
		logger.Error().Err(err).Msg("index failed to connect to database")
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		return 1
	}
	defer pool.Close()

	qdrantClient, err := vectorindex.Connect(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("vector index connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to vector index: %v\n", err)
		return 1
	}

	encoder := embed.NewClient(cfg.EmbedEndpoint, cfg.EmbedRequestTimeout)
	indexer := vectorindex.NewIndexer(qdrantClient, encoder, cfg.QdrantCollection, logger)

	if err := indexer.EnsureCollection(ctx); err != nil {
		logger.Error().Err(err).Msg("collection provisioning failed")
		fmt.Fprintf(os.Stderr, "Failed to provision collection: %v\n", err)
		return 1
	}

	indexed := 0
	cursor := *afterID
	for {
		posts, err := pool.ListPostsForIndexing(ctx, cursor, *pageSize)
		if err != nil {
			logger.Error().Err(err).Int64("after_id", cursor).Msg("loading posts for indexing failed")
			fmt.Fprintf(os.Stderr, "Failed to load posts: %v\n", err)
			return 1
		}
		if len(posts) == 0 {
			break
		}

		if err := indexer.UpsertPosts(ctx, posts); err != nil {
			logger.Error().Err(err).Int64("after_id", cursor).Msg("indexing page failed")
			fmt.Fprintf(os.Stderr, "Failed to index posts: %v\n", err)
			return 1
		}

		indexed += len(posts)
		cursor = posts[len(posts)-1].ID
		logger.Info().Int("indexed", indexed).Int64("cursor", cursor).Msg("backfill progress")
	}

	logger.Info().Int("indexed", indexed).Msg("backfill completed")
	fmt.Printf("ok: indexed %d posts\n", indexed)
	return 0
}
