package refdata

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
)

// Store is the subset of the database pool the resolver needs.
type Store interface {
	FindCountryByName(ctx context.Context, name string) (*db.Country, error)
	FindSourceByCode(ctx context.Context, code string) (*db.Source, error)
	CreateSource(ctx context.Context, source *db.Source) error
	FindCategoryByCode(ctx context.Context, code string) (*db.Category, error)
}

// SourceDescriptor carries the provider-supplied source fields used when a
// source has to be created.
type SourceDescriptor struct {
	Code string
	Name string
	URL  string
	Icon string
}

// Resolver provides cached lookup/create for Country, Source and Category.
// One resolver lives for the duration of one pipeline run; the caches are an
// optimization only and are never shared across runs, so no locking is
// needed. On a cache miss the store is always queried before anything is
// created.
type Resolver struct {
	store  Store
	logger zerolog.Logger

	countries  map[string]*db.Country
	sources    map[string]*db.Source
	categories map[string]*db.Category
}

func NewResolver(store Store, logger zerolog.Logger) *Resolver {
	return &Resolver{
		store:      store,
		logger:     logger,
		countries:  make(map[string]*db.Country),
		sources:    make(map[string]*db.Source),
		categories: make(map[string]*db.Category),
	}
}

// Country resolves a country by its English name. Fallback candidates are
// accepted but only the first candidate is consulted: when name is blank the
// first non-blank fallback becomes the candidate and the rest are ignored.
// A blank candidate list resolves to (nil, nil), not an error.
func (r *Resolver) Country(ctx context.Context, name string, fallbacks ...string) (*db.Country, error) {
	candidate := strings.TrimSpace(name)
	if candidate == "" && len(fallbacks) > 0 {
		candidate = strings.TrimSpace(fallbacks[0])
	}
	if candidate == "" {
		return nil, nil
	}

	key := strings.ToLower(candidate)
	if country, ok := r.countries[key]; ok {
		r.logger.Debug().Str("country", candidate).Msg("country cache hit")
		return country, nil
	}

	country, err := r.store.FindCountryByName(ctx, candidate)
	if err != nil {
		return nil, fmt.Errorf("resolve country %q: %w", candidate, err)
	}
	if country != nil {
		r.countries[key] = country
	}
	return country, nil
}

// Source resolves a source by its provider code, creating it when missing.
// The create commits immediately as a single row so later articles in the
// same run see it. A blank code resolves to (nil, nil).
func (r *Resolver) Source(ctx context.Context, descriptor SourceDescriptor) (*db.Source, error) {
	code := strings.TrimSpace(descriptor.Code)
	if code == "" {
		return nil, nil
	}

	if source, ok := r.sources[code]; ok {
		r.logger.Debug().Str("source", code).Msg("source cache hit")
		return source, nil
	}

	source, err := r.store.FindSourceByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve source %q: %w", code, err)
	}

	if source == nil {
		r.logger.Info().Str("source", code).Msg("creating new source")
		source = &db.Source{
			Code: code,
			Name: optional(descriptor.Name),
			URL:  optional(descriptor.URL),
			Icon: optional(descriptor.Icon),
		}
		if err := r.store.CreateSource(ctx, source); err != nil {
			return nil, fmt.Errorf("create source %q: %w", code, err)
		}
	}

	r.sources[code] = source
	return source, nil
}

// Category resolves a category by its uppercased code. Read-only: an absent
// category resolves to (nil, nil) and callers must tolerate it.
func (r *Resolver) Category(ctx context.Context, code string) (*db.Category, error) {
	key := strings.ToUpper(strings.TrimSpace(code))
	if key == "" {
		return nil, nil
	}

	if category, ok := r.categories[key]; ok {
		r.logger.Debug().Str("category", key).Msg("category cache hit")
		return category, nil
	}

	category, err := r.store.FindCategoryByCode(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("resolve category %q: %w", key, err)
	}
	if category != nil {
		r.categories[key] = category
	}
	return category, nil
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
