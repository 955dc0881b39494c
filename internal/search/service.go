package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/vectorindex"
)

const (
	DefaultLanguage = "en"
	DefaultLimit    = 50
)

// Result is one search hit, assembled from the point's stored payload.
type Result struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	ImageURL    string  `json:"image_url"`
	VideoURL    string  `json:"video_url"`
	Language    string  `json:"language"`
	PublishedAt string  `json:"published_at"`
	Score       float32 `json:"score"`
}

// Service answers semantic queries against the vector index. The query is
// embedded with the same encoder used at indexing time.
type Service struct {
	store      vectorindex.Store
	encoder    vectorindex.Encoder
	collection string
	logger     zerolog.Logger
}

func NewService(store vectorindex.Store, encoder vectorindex.Encoder, collection string, logger zerolog.Logger) *Service {
	return &Service{
		store:      store,
		encoder:    encoder,
		collection: collection,
		logger:     logger,
	}
}

// Search embeds the query and returns the nearest posts in the requested
// language. Blank language falls back to "en", non-positive limit to 50.
func (s *Service) Search(ctx context.Context, query, language string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = DefaultLanguage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	vectors, err := s.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("encode query: expected 1 vector, got %d", len(vectors))
	}

	points, err := s.store.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vectors[0]...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("language", language),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	results := make([]Result, 0, len(points))
	for _, point := range points {
		results = append(results, resultFromPoint(point))
	}

	s.logger.Debug().
		Str("language", language).
		Int("limit", limit).
		Int("results", len(results)).
		Msg("search completed")
	return results, nil
}

func resultFromPoint(point *qdrant.ScoredPoint) Result {
	payload := point.GetPayload()
	return Result{
		ID:          payloadInt(payload, "id"),
		Title:       payloadString(payload, "title"),
		Content:     payloadString(payload, "content"),
		ImageURL:    payloadString(payload, "image_url"),
		VideoURL:    payloadString(payload, "video_url"),
		Language:    payloadString(payload, "language"),
		PublishedAt: payloadString(payload, "published_at"),
		Score:       point.GetScore(),
	}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if payload == nil {
		return ""
	}
	return payload[key].GetStringValue()
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if payload == nil {
		return 0
	}
	return payload[key].GetIntegerValue()
}
