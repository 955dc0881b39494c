package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
)

// DefaultBatchSize is how many posts accumulate before a commit.
const DefaultBatchSize = 10

// PostStore commits batches of posts.
type PostStore interface {
	SaveNewsPosts(ctx context.Context, posts []*db.NewsPost) error
}

// BatchPersister buffers enriched posts and commits them in fixed-size
// transactional batches. Saved posts are retained so the caller can hand
// them to the indexer after the run.
type BatchPersister struct {
	store     PostStore
	batchSize int
	logger    zerolog.Logger

	pending []*db.NewsPost
	saved   []*db.NewsPost
}

func NewBatchPersister(store PostStore, batchSize int, logger zerolog.Logger) *BatchPersister {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchPersister{
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Add buffers a post and commits when the buffer reaches the batch size.
func (bp *BatchPersister) Add(ctx context.Context, post *db.NewsPost) error {
	bp.pending = append(bp.pending, post)
	if len(bp.pending) < bp.batchSize {
		return nil
	}
	return bp.Flush(ctx)
}

// Flush commits whatever is buffered, including a short final batch. On
// error the buffered posts are dropped; the batch either fully commits
// or not at all.
func (bp *BatchPersister) Flush(ctx context.Context) error {
	if len(bp.pending) == 0 {
		return nil
	}

	batch := bp.pending
	bp.pending = nil

	if err := bp.store.SaveNewsPosts(ctx, batch); err != nil {
		return fmt.Errorf("commit batch of %d posts: %w", len(batch), err)
	}

	bp.saved = append(bp.saved, batch...)
	bp.logger.Info().Int("batch", len(batch)).Int("total_saved", len(bp.saved)).Msg("batch committed")
	return nil
}

// Saved returns every post committed so far, in commit order.
func (bp *BatchPersister) Saved() []*db.NewsPost {
	return bp.saved
}

func (bp *BatchPersister) SavedCount() int {
	return len(bp.saved)
}
