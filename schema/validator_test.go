package payloadschema

import (
	"encoding/json"
	"testing"
)

func TestValidateArticle_Valid(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"article_id":"abc123",
		"title":"Markets rally after rate decision",
		"link":"https://example.com/markets",
		"description":"Short summary.",
		"content":"Long body text.",
		"pubDate":"2026-02-14 10:00:00",
		"image_url":"https://example.com/a.jpg",
		"source_id":"example_wire",
		"source_name":"Example Wire",
		"language":"english",
		"country":["germany"],
		"category":["business"],
		"creator":["Jane Doe"]
	}`)

	article, err := ValidateArticle(payload)
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}
	if article.ArticleID != "abc123" {
		t.Fatalf("unexpected article_id: %q", article.ArticleID)
	}
	if article.SourceID == nil || *article.SourceID != "example_wire" {
		t.Fatalf("unexpected source_id: %v", article.SourceID)
	}
	if len(article.Country) != 1 || article.Country[0] != "germany" {
		t.Fatalf("unexpected country list: %v", article.Country)
	}
}

func TestValidateArticle_MissingTitle(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"article_id":"abc123"}`)
	if _, err := ValidateArticle(payload); err == nil {
		t.Fatalf("expected validation to fail without title")
	}
}

func TestValidateArticle_BlankArticleID(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"article_id":"   ","title":"Something"}`)
	if _, err := ValidateArticle(payload); err == nil {
		t.Fatalf("expected validation to fail for blank article_id")
	}
}

func TestValidateArticle_NullableFields(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{
		"article_id":"abc123",
		"title":"Title",
		"content":null,
		"image_url":null,
		"language":null
	}`)

	article, err := ValidateArticle(payload)
	if err != nil {
		t.Fatalf("expected nullable fields to validate, got error: %v", err)
	}
	if article.Content != nil {
		t.Fatalf("expected nil content, got %v", *article.Content)
	}
}

func TestValidateArticle_TrailingContent(t *testing.T) {
	t.Parallel()

	payload := json.RawMessage(`{"article_id":"a","title":"T"} {"extra":true}`)
	if _, err := ValidateArticle(payload); err == nil {
		t.Fatalf("expected trailing content to be rejected")
	}
}
