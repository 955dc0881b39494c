package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/doc"
	payloadschema "nisee.app/newsflow/schema"
)

const minSentences = 10

// Rejection reasons, logged per dropped article.
const (
	ReasonImageUnreachable = "image_unreachable"
	ReasonLowSentenceCount = "low_sentence_count"
	ReasonMissingMedia     = "missing_media"
	ReasonDuplicate        = "duplicate"
)

// Decision is the filter's verdict for one article. Reason is set only
// when the article is rejected.
type Decision struct {
	Accepted bool
	Reason   string
}

// ExistsStore answers the idempotency check.
type ExistsStore interface {
	PostExistsByRemoteID(ctx context.Context, remoteID string) (bool, error)
}

// ImageProber reports whether an image URL serves a usable image.
type ImageProber interface {
	CheckImage(ctx context.Context, imageURL string) bool
}

// Filter applies the quality and dedup rules in a fixed order: declared
// image must be reachable, text must have enough sentences, some media
// must be present, and the provider id must not already be persisted.
type Filter struct {
	store  ExistsStore
	probe  ImageProber
	logger zerolog.Logger
}

func NewFilter(store ExistsStore, probe ImageProber, logger zerolog.Logger) *Filter {
	return &Filter{store: store, probe: probe, logger: logger}
}

// Evaluate decides whether the article enters the pipeline. A non-nil
// error means the dedup lookup failed; the caller skips the article
// without a verdict.
func (f *Filter) Evaluate(ctx context.Context, article *payloadschema.Article) (Decision, error) {
	imageURL := deref(article.ImageURL)
	videoURL := deref(article.VideoURL)

	if imageURL != "" && !f.probe.CheckImage(ctx, imageURL) {
		return f.reject(article, ReasonImageUnreachable), nil
	}

	if doc.CountSentences(deref(article.Content)) < minSentences {
		return f.reject(article, ReasonLowSentenceCount), nil
	}

	if imageURL == "" && videoURL == "" {
		return f.reject(article, ReasonMissingMedia), nil
	}

	exists, err := f.store.PostExistsByRemoteID(ctx, article.ArticleID)
	if err != nil {
		return Decision{}, fmt.Errorf("dedup check for %q: %w", article.ArticleID, err)
	}
	if exists {
		return f.reject(article, ReasonDuplicate), nil
	}

	return Decision{Accepted: true}, nil
}

func (f *Filter) reject(article *payloadschema.Article, reason string) Decision {
	f.logger.Debug().
		Str("remote_id", article.ArticleID).
		Str("reason", reason).
		Msg("article rejected")
	return Decision{Reason: reason}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
