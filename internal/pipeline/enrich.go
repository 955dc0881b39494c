package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/doc"
	"nisee.app/newsflow/internal/globaltime"
	"nisee.app/newsflow/internal/language"
	"nisee.app/newsflow/internal/media"
	"nisee.app/newsflow/internal/refdata"
	payloadschema "nisee.app/newsflow/schema"
)

// Provider timestamps come in two shapes.
var pubDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

type storedImage struct {
	ID       string            `json:"id"`
	BaseURL  string            `json:"base_url"`
	Variants map[string]string `json:"variants"`
}

// Enricher turns an accepted provider article into a persistable post:
// media is processed into stored variants, references are resolved and
// the text is restructured into a paragraph-block document.
type Enricher struct {
	resolver *refdata.Resolver
	media    media.Processor
	logger   zerolog.Logger
}

func NewEnricher(resolver *refdata.Resolver, processor media.Processor, logger zerolog.Logger) *Enricher {
	return &Enricher{resolver: resolver, media: processor, logger: logger}
}

// Enrich builds the post for one article. Any returned error is a
// per-article failure; the caller logs it and moves on.
func (e *Enricher) Enrich(ctx context.Context, article *payloadschema.Article, category *db.Category, subCategory string) (*db.NewsPost, error) {
	rawContent := deref(article.Content)

	document := doc.FromText(rawContent, globaltime.UTC())
	content, err := document.Marshal()
	if err != nil {
		return nil, fmt.Errorf("serialize content document: %w", err)
	}

	post := &db.NewsPost{
		RemoteID:    article.ArticleID,
		Title:       strings.TrimSpace(article.Title),
		Description: optional(deref(article.Description)),
		Content:     content,
		Language:    language.ResolveCode(deref(article.Language), rawContent),
		PublishedAt: parsePubDate(deref(article.PubDate)),
		Link:        optional(deref(article.Link)),
		Formatting:  "MARKDOWN",
		Type:        "ORGANISATION_POST",
		SubCategory: optional(subCategoryTag(subCategory)),
	}

	if len(article.Creator) > 0 {
		post.Creator = optional(article.Creator[0])
	}
	if category != nil {
		post.CategoryID = &category.ID
	}

	if err := e.attachMedia(ctx, article, post); err != nil {
		return nil, err
	}

	country, err := e.resolver.Country(ctx, "", article.Country...)
	if err != nil {
		return nil, err
	}
	if country != nil {
		post.CountryID = &country.ID
		if country.Region != nil {
			post.WorldRegion = optional(*country.Region)
		}
	}

	source, err := e.resolver.Source(ctx, refdata.SourceDescriptor{
		Code: deref(article.SourceID),
		Name: deref(article.SourceName),
		URL:  deref(article.SourceURL),
		Icon: deref(article.SourceIcon),
	})
	if err != nil {
		return nil, err
	}
	if source != nil {
		post.SourceID = &source.ID
	}

	return post, nil
}

func (e *Enricher) attachMedia(ctx context.Context, article *payloadschema.Article, post *db.NewsPost) error {
	if imageURL := deref(article.ImageURL); imageURL != "" {
		asset, err := e.media.Process(ctx, imageURL, uuid.New())
		if err != nil {
			return fmt.Errorf("process image for %q: %w", article.ArticleID, err)
		}

		imagesJSON, err := json.Marshal([]storedImage{{
			ID:       asset.ID.String(),
			BaseURL:  asset.BaseURL,
			Variants: asset.Variants,
		}})
		if err != nil {
			return fmt.Errorf("marshal image variants: %w", err)
		}

		post.ImagesJSON = imagesJSON
		post.Images = []db.NewsPostImage{{
			ID:               asset.ID.String(),
			OriginalImageURL: optional(imageURL),
			StoredBaseURL:    optional(asset.BaseURL),
		}}
	}

	if videoURL := deref(article.VideoURL); videoURL != "" {
		post.Videos = []db.NewsPostVideo{{VideoURL: videoURL}}
	}
	return nil
}

// parsePubDate falls back to the ingestion time when the provider
// timestamp is absent or unparseable.
func parsePubDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw != "" {
		for _, layout := range pubDateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				parsed = parsed.UTC()
				return &parsed
			}
		}
	}
	now := globaltime.UTC()
	return &now
}

// subCategoryTag normalizes a human sub-category into its stored tag,
// "Climate Change" becomes "CLIMATE_CHANGE".
func subCategoryTag(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.ToUpper(strings.Join(strings.Fields(trimmed), "_"))
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
