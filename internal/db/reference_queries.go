package db

import (
	"context"
	"fmt"
)

// FindCountryByName looks a country up by its English name.
// Returns (nil, nil) when absent.
func (p *Pool) FindCountryByName(ctx context.Context, name string) (*Country, error) {
	const q = `
SELECT
	id,
	name_en,
	cca2,
	cca3,
	region,
	region_en,
	subregion_en,
	capital_en,
	deleted
FROM countries
WHERE LOWER(name_en) = LOWER($1)
LIMIT 1
`

	var country Country
	err := p.QueryRow(ctx, q, name).Scan(
		&country.ID,
		&country.NameEN,
		&country.CCA2,
		&country.CCA3,
		&country.Region,
		&country.RegionEN,
		&country.SubregionEN,
		&country.CapitalEN,
		&country.Deleted,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query country name=%q: %w", name, err)
	}
	return &country, nil
}

// FindSourceByCode looks a source up by its provider code.
// Returns (nil, nil) when absent.
func (p *Pool) FindSourceByCode(ctx context.Context, code string) (*Source, error) {
	const q = `
SELECT
	id,
	code,
	name,
	url,
	icon,
	deleted
FROM sources
WHERE code = $1
LIMIT 1
`

	var source Source
	err := p.QueryRow(ctx, q, code).Scan(
		&source.ID,
		&source.Code,
		&source.Name,
		&source.URL,
		&source.Icon,
		&source.Deleted,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query source code=%q: %w", code, err)
	}
	return &source, nil
}

// CreateSource inserts a new source row and commits immediately. The unique
// index on code backs the create-if-missing path: a concurrent insert for
// the same code fails here instead of producing a duplicate.
func (p *Pool) CreateSource(ctx context.Context, source *Source) error {
	if source == nil {
		return fmt.Errorf("source is nil")
	}

	const q = `
INSERT INTO sources (code, name, url, icon, deleted)
VALUES ($1, $2, $3, $4, FALSE)
RETURNING id
`

	if err := p.QueryRow(ctx, q, source.Code, source.Name, source.URL, source.Icon).Scan(&source.ID); err != nil {
		return fmt.Errorf("insert source code=%q: %w", source.Code, err)
	}
	return nil
}

// FindCategoryByCode looks a category up by its uppercased code.
// Returns (nil, nil) when absent.
func (p *Pool) FindCategoryByCode(ctx context.Context, code string) (*Category, error) {
	const q = `
SELECT
	id,
	code,
	description,
	position,
	redirect_url,
	deleted
FROM categories
WHERE code = UPPER($1)
LIMIT 1
`

	var category Category
	err := p.QueryRow(ctx, q, code).Scan(
		&category.ID,
		&category.Code,
		&category.Description,
		&category.Position,
		&category.RedirectURL,
		&category.Deleted,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query category code=%q: %w", code, err)
	}
	return &category, nil
}
