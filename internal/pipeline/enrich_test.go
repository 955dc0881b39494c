package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/doc"
	"nisee.app/newsflow/internal/globaltime"
	"nisee.app/newsflow/internal/refdata"
)

func newTestEnricher(store *fakePipelineStore, processor *fakeProcessor) *Enricher {
	resolver := refdata.NewResolver(store, zerolog.Nop())
	return NewEnricher(resolver, processor, zerolog.Nop())
}

func TestEnrichBuildsPost(t *testing.T) {
	store := newFakePipelineStore()
	store.countries["germany"] = &db.Country{ID: 3, NameEN: "Germany", Region: str("Europe")}
	enricher := newTestEnricher(store, &fakeProcessor{})

	article := testArticle("a1", 12, "https://img.example.com/a.jpg", "https://example.com/v.mp4")
	article.Title = "  Spaced title  "
	article.PubDate = str("2026-02-14 10:30:00")
	article.Country = []string{"Germany"}
	article.Creator = []string{"Jane Doe", "Ignored Second"}

	category := &db.Category{ID: 7, Code: "TECH"}
	post, err := enricher.Enrich(context.Background(), article, category, "Climate Change")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if post.RemoteID != "a1" || post.Title != "Spaced title" {
		t.Fatalf("unexpected identity: %q %q", post.RemoteID, post.Title)
	}
	if post.Language != "en" {
		t.Fatalf("expected english mapped to en, got %q", post.Language)
	}
	if post.SubCategory == nil || *post.SubCategory != "CLIMATE_CHANGE" {
		t.Fatalf("unexpected sub-category tag: %v", post.SubCategory)
	}
	if post.Creator == nil || *post.Creator != "Jane Doe" {
		t.Fatalf("expected first creator only, got %v", post.Creator)
	}
	if post.CategoryID == nil || *post.CategoryID != 7 {
		t.Fatalf("unexpected category id: %v", post.CategoryID)
	}
	if post.CountryID == nil || *post.CountryID != 3 {
		t.Fatalf("unexpected country id: %v", post.CountryID)
	}
	if post.WorldRegion == nil || *post.WorldRegion != "Europe" {
		t.Fatalf("unexpected world region: %v", post.WorldRegion)
	}
	if post.SourceID == nil {
		t.Fatalf("expected source to be created and linked")
	}
	if len(store.sources) != 1 {
		t.Fatalf("expected one source created, got %d", len(store.sources))
	}

	want := time.Date(2026, 2, 14, 10, 30, 0, 0, time.UTC)
	if post.PublishedAt == nil || !post.PublishedAt.Equal(want) {
		t.Fatalf("unexpected published_at: %v", post.PublishedAt)
	}

	// Content is stored as an editor.js document over the original text.
	var document doc.Document
	if err := json.Unmarshal([]byte(post.Content), &document); err != nil {
		t.Fatalf("content is not a document: %v", err)
	}
	if document.Version != doc.Version || len(document.Blocks) != 4 {
		t.Fatalf("unexpected document shape: version=%q blocks=%d", document.Version, len(document.Blocks))
	}

	if len(post.Images) != 1 || post.Images[0].OriginalImageURL == nil {
		t.Fatalf("expected one image row, got %+v", post.Images)
	}
	var storedImages []storedImage
	if err := json.Unmarshal(post.ImagesJSON, &storedImages); err != nil {
		t.Fatalf("images json: %v", err)
	}
	if len(storedImages) != 1 || storedImages[0].Variants["sm"] == "" {
		t.Fatalf("expected sm variant in images json: %+v", storedImages)
	}
	if len(post.Videos) != 1 || post.Videos[0].VideoURL != "https://example.com/v.mp4" {
		t.Fatalf("unexpected videos: %+v", post.Videos)
	}
}

func TestEnrichPubDateFallback(t *testing.T) {
	mock := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	globaltime.SetMockTime(mock)
	defer globaltime.ResetTime()

	enricher := newTestEnricher(newFakePipelineStore(), &fakeProcessor{})

	article := testArticle("a2", 12, "", "https://example.com/v.mp4")
	article.PubDate = str("not a timestamp")

	post, err := enricher.Enrich(context.Background(), article, nil, "")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if post.PublishedAt == nil || !post.PublishedAt.Equal(mock) {
		t.Fatalf("expected ingestion-time fallback, got %v", post.PublishedAt)
	}
	if post.SubCategory != nil {
		t.Fatalf("expected no sub-category tag for blank input")
	}
}

func TestEnrichRFC3339PubDate(t *testing.T) {
	enricher := newTestEnricher(newFakePipelineStore(), &fakeProcessor{})

	article := testArticle("a3", 12, "", "https://example.com/v.mp4")
	article.PubDate = str("2026-02-14T10:30:00+02:00")

	post, err := enricher.Enrich(context.Background(), article, nil, "")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	want := time.Date(2026, 2, 14, 8, 30, 0, 0, time.UTC)
	if post.PublishedAt == nil || !post.PublishedAt.Equal(want) {
		t.Fatalf("expected UTC-normalized timestamp, got %v", post.PublishedAt)
	}
}

func TestEnrichMediaFailureSkipsArticle(t *testing.T) {
	enricher := newTestEnricher(newFakePipelineStore(), &fakeProcessor{err: fmt.Errorf("resize failed")})

	article := testArticle("a4", 12, "https://img.example.com/a.jpg", "")
	if _, err := enricher.Enrich(context.Background(), article, nil, ""); err == nil {
		t.Fatalf("expected media processing error to surface")
	}
}

func TestEnrichCountryFirstCandidateOnly(t *testing.T) {
	store := newFakePipelineStore()
	store.countries["germany"] = &db.Country{ID: 3, NameEN: "Germany"}
	enricher := newTestEnricher(store, &fakeProcessor{})

	article := testArticle("a5", 12, "", "https://example.com/v.mp4")
	article.Country = []string{"Atlantis", "Germany"}

	post, err := enricher.Enrich(context.Background(), article, nil, "")
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if post.CountryID != nil {
		t.Fatalf("later candidates must not be consulted, got country id %v", post.CountryID)
	}
}
