package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nisee.app/newsflow/internal/cli"
	"nisee.app/newsflow/internal/config"
	"nisee.app/newsflow/internal/embed"
	"nisee.app/newsflow/internal/logging"
	"nisee.app/newsflow/internal/search"
	"nisee.app/newsflow/internal/vectorindex"
)

func runSearch(args []string) int {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	query := fs.String("query", "", "Search query text")
	language := fs.String("language", search.DefaultLanguage, "Result language filter")
	limit := fs.Int("limit", search.DefaultLimit, "Maximum number of results")
	timeout := fs.Duration("timeout", 30*time.Second, "Search timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	term := strings.TrimSpace(*query)
	if term == "" && fs.NArg() > 0 {
		term = strings.TrimSpace(strings.Join(fs.Args(), " "))
	}
	if term == "" {
		fmt.Fprintln(os.Stderr, "--query is required")
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

	qdrantClient, err := vectorindex.Connect(cfg)
	if err != nil {
		logger.Error().Err(err).Msg("vector index connection failed")
		fmt.Fprintf(os.Stderr, "Failed to connect to vector index: %v\n", err)
		return 1
	}

	encoder := embed.NewClient(cfg.EmbedEndpoint, cfg.EmbedRequestTimeout)
	service := search.NewService(qdrantClient, encoder, cfg.QdrantCollection, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	results, err := service.Search(ctx, term, *language, *limit)
	if err != nil {
		logger.Error().Err(err).Msg("search failed")
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		return 1
	}

	encoded, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode results: %v\n", err)
		return 1
	}
	fmt.Println(string(encoded))
	return 0
}
