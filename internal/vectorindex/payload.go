package vectorindex

import (
	"encoding/json"
	"strings"
	"time"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/doc"
)

// SnippetLimit is the maximum number of runes kept from a post's text in
// the index payload.
const SnippetLimit = 300

const smallVariant = "sm"

// BuildPayload flattens a post into the payload stored alongside its
// vector, so search results carry enough to render without a database
// round trip.
func BuildPayload(post db.IndexablePost) map[string]any {
	publishedAt := ""
	if post.PublishedAt != nil {
		publishedAt = post.PublishedAt.UTC().Format(time.RFC3339)
	}

	return map[string]any{
		"id":           post.ID,
		"title":        post.Title,
		"content":      Snippet(doc.PlainText(post.Content)),
		"image_url":    imageURL(post),
		"video_url":    "",
		"language":     post.Language,
		"published_at": publishedAt,
	}
}

// Snippet truncates text to SnippetLimit runes with a "..." marker. Text
// at or under the limit is returned unchanged.
func Snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= SnippetLimit {
		return text
	}
	return strings.TrimRight(string(runes[:SnippetLimit]), " ") + "..."
}

// imageURL prefers the small processed variant and falls back to the
// original image when no variants were stored.
func imageURL(post db.IndexablePost) string {
	if len(post.ImagesJSON) > 0 {
		var assets []struct {
			Variants map[string]string `json:"variants"`
		}
		if err := json.Unmarshal(post.ImagesJSON, &assets); err == nil {
			for _, asset := range assets {
				if url := asset.Variants[smallVariant]; url != "" {
					return url
				}
			}
		}
	}
	if post.OriginalImageURL != nil {
		return *post.OriginalImageURL
	}
	return ""
}
