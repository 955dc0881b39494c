package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/media"
	"nisee.app/newsflow/internal/metrics"
	"nisee.app/newsflow/internal/provider"
	"nisee.app/newsflow/internal/refdata"
	payloadschema "nisee.app/newsflow/schema"
)

// Store is everything the pipeline needs from the database.
type Store interface {
	refdata.Store
	ExistsStore
	PostStore
}

// Fetcher pulls the latest articles from the news provider.
type Fetcher interface {
	FetchLatest(ctx context.Context, query provider.Query) ([]*payloadschema.Article, error)
}

// Indexer pushes saved posts into the vector index.
type Indexer interface {
	EnsureCollection(ctx context.Context) error
	UpsertPosts(ctx context.Context, posts []db.IndexablePost) error
}

// Request describes one ingestion run.
type Request struct {
	ProviderCategory string
	CategoryCode     string
	SubCategories    []string
	Language         string
	SkipIndex        bool
}

// Result summarizes an ingestion run.
type Result struct {
	Fetched           int
	Saved             int
	Skipped           int
	Indexed           int
	SubCategoryErrors int
}

// Service orchestrates one ingestion run: fetch, filter, enrich, batch
// persist and index. Per-article failures are logged and skipped; a
// failed batch commit abandons the rest of its sub-category; provider
// failures abort the run.
type Service struct {
	store     Store
	fetcher   Fetcher
	probe     ImageProber
	processor media.Processor
	indexer   Indexer
	sink      metrics.Sink
	batchSize int
	logger    zerolog.Logger
}

func NewService(store Store, fetcher Fetcher, probe ImageProber, processor media.Processor, indexer Indexer, sink metrics.Sink, batchSize int, logger zerolog.Logger) *Service {
	return &Service{
		store:     store,
		fetcher:   fetcher,
		probe:     probe,
		processor: processor,
		indexer:   indexer,
		sink:      sink,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run executes one ingestion run over the request's sub-categories.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	var result Result

	resolver := refdata.NewResolver(s.store, s.logger)
	filter := NewFilter(s.store, s.probe, s.logger)
	enricher := NewEnricher(resolver, s.processor, s.logger)

	category, err := resolver.Category(ctx, req.CategoryCode)
	if err != nil {
		return result, err
	}
	if category == nil && req.CategoryCode != "" {
		s.logger.Warn().Str("category_code", req.CategoryCode).Msg("category not found, posts will be uncategorized")
	}

	subCategories := req.SubCategories
	if len(subCategories) == 0 {
		subCategories = []string{""}
	}

	var saved []*db.NewsPost
	for _, subCategory := range subCategories {
		subSaved, err := s.runSubCategory(ctx, req, subCategory, category, filter, enricher, &result)
		if err != nil {
			return result, err
		}
		saved = append(saved, subSaved...)
	}

	if !req.SkipIndex && s.indexer != nil && len(saved) > 0 {
		result.Indexed = s.indexSaved(ctx, saved)
	}

	return result, nil
}

// runSubCategory returns an error only for provider failures; everything
// narrower is absorbed here.
func (s *Service) runSubCategory(
	ctx context.Context,
	req Request,
	subCategory string,
	category *db.Category,
	filter *Filter,
	enricher *Enricher,
	result *Result,
) ([]*db.NewsPost, error) {
	logger := s.logger.With().Str("sub_category", subCategory).Logger()

	articles, err := s.fetcher.FetchLatest(ctx, provider.Query{
		Term:            subCategory,
		Category:        req.ProviderCategory,
		Language:        req.Language,
		FullContent:     true,
		Image:           true,
		RemoveDuplicate: true,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch sub-category %q: %w", subCategory, err)
	}
	result.Fetched += len(articles)

	persister := NewBatchPersister(s.store, s.batchSize, logger)
	for _, article := range articles {
		decision, err := filter.Evaluate(ctx, article)
		if err != nil {
			logger.Warn().Err(err).Str("remote_id", article.ArticleID).Msg("filter check failed, skipping article")
			result.Skipped++
			continue
		}
		if !decision.Accepted {
			result.Skipped++
			continue
		}

		post, err := enricher.Enrich(ctx, article, category, subCategory)
		if err != nil {
			logger.Warn().Err(err).Str("remote_id", article.ArticleID).Msg("enrichment failed, skipping article")
			result.Skipped++
			continue
		}

		if err := persister.Add(ctx, post); err != nil {
			logger.Error().Err(err).Msg("batch commit failed, abandoning sub-category")
			result.SubCategoryErrors++
			break
		}
	}

	if err := persister.Flush(ctx); err != nil {
		logger.Error().Err(err).Msg("final batch commit failed")
		result.SubCategoryErrors++
	}

	result.Saved += persister.SavedCount()
	if s.sink != nil {
		s.sink.ReportSaved(req.CategoryCode, subCategory, persister.SavedCount())
	}
	return persister.Saved(), nil
}

// indexSaved is best effort: an index failure never undoes a completed
// ingestion, it only leaves posts for the backfill pass.
func (s *Service) indexSaved(ctx context.Context, saved []*db.NewsPost) int {
	if err := s.indexer.EnsureCollection(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("vector collection unavailable, skipping inline indexing")
		return 0
	}

	indexable := make([]db.IndexablePost, 0, len(saved))
	for _, post := range saved {
		indexable = append(indexable, toIndexable(post))
	}

	if err := s.indexer.UpsertPosts(ctx, indexable); err != nil {
		s.logger.Warn().Err(err).Msg("inline indexing failed, posts remain for backfill")
		return 0
	}
	return len(indexable)
}

func toIndexable(post *db.NewsPost) db.IndexablePost {
	indexable := db.IndexablePost{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		Language:    post.Language,
		PublishedAt: post.PublishedAt,
		ImagesJSON:  post.ImagesJSON,
	}
	if len(post.Images) > 0 {
		indexable.OriginalImageURL = post.Images[0].OriginalImageURL
	}
	return indexable
}
