package search

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
)

type fakeStore struct {
	lastQuery *qdrant.QueryPoints
	points    []*qdrant.ScoredPoint
}

func (s *fakeStore) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	return true, nil
}

func (s *fakeStore) CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error {
	return nil
}

func (s *fakeStore) Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	return nil, nil
}

func (s *fakeStore) Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	s.lastQuery = request
	return s.points, nil
}

type fakeEncoder struct {
	lastTexts []string
}

func (e *fakeEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	e.lastTexts = texts
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = make([]float32, 384)
	}
	return vectors, nil
}

func newTestService(store *fakeStore, encoder *fakeEncoder) *Service {
	return NewService(store, encoder, "news_posts", zerolog.Nop())
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	t.Parallel()

	service := newTestService(&fakeStore{}, &fakeEncoder{})
	if _, err := service.Search(context.Background(), "   ", "en", 10); err == nil {
		t.Fatalf("expected error for blank query")
	}
}

func TestSearchAppliesDefaults(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	encoder := &fakeEncoder{}
	service := newTestService(store, encoder)

	if _, err := service.Search(context.Background(), "climate policy", "", 0); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(encoder.lastTexts) != 1 || encoder.lastTexts[0] != "climate policy" {
		t.Fatalf("expected query to be re-embedded, got %v", encoder.lastTexts)
	}
	if store.lastQuery.Limit == nil || *store.lastQuery.Limit != DefaultLimit {
		t.Fatalf("expected default limit %d, got %v", DefaultLimit, store.lastQuery.Limit)
	}

	match := store.lastQuery.Filter.Must[0].GetField()
	if match.Key != "language" {
		t.Fatalf("expected language filter, got %q", match.Key)
	}
	if match.GetMatch().GetKeyword() != DefaultLanguage {
		t.Fatalf("expected default language %q, got %q", DefaultLanguage, match.GetMatch().GetKeyword())
	}
}

func TestSearchUsesRequestedLanguageFilter(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	service := newTestService(store, &fakeEncoder{})

	if _, err := service.Search(context.Background(), "wirtschaft", "de", 5); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	match := store.lastQuery.Filter.Must[0].GetField()
	if match.GetMatch().GetKeyword() != "de" {
		t.Fatalf("expected de filter, got %q", match.GetMatch().GetKeyword())
	}
	if *store.lastQuery.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", *store.lastQuery.Limit)
	}
}

func TestSearchMapsPayloadToResults(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		points: []*qdrant.ScoredPoint{{
			Id:    qdrant.NewIDNum(42),
			Score: 0.87,
			Payload: qdrant.NewValueMap(map[string]any{
				"id":           int64(42),
				"title":        "Rate cut announced",
				"content":      "The central bank cut rates.",
				"image_url":    "https://cdn.example.com/x/sm.webp",
				"video_url":    "",
				"language":     "en",
				"published_at": "2026-02-14T09:30:00Z",
			}),
		}},
	}
	service := newTestService(store, &fakeEncoder{})

	results, err := service.Search(context.Background(), "rates", "en", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}

	got := results[0]
	if got.ID != 42 || got.Title != "Rate cut announced" {
		t.Fatalf("unexpected result identity: %+v", got)
	}
	if got.Score != 0.87 {
		t.Fatalf("unexpected score: %f", got.Score)
	}
	if got.PublishedAt != "2026-02-14T09:30:00Z" {
		t.Fatalf("unexpected published_at: %q", got.PublishedAt)
	}
}
