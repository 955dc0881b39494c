package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// IndexablePost carries the columns the embedding indexer needs.
type IndexablePost struct {
	ID               int64
	Title            string
	Content          string
	Language         string
	PublishedAt      *time.Time
	ImagesJSON       json.RawMessage
	OriginalImageURL *string
}

// PostExistsByRemoteID reports whether a post with the given provider id
// is already persisted.
func (p *Pool) PostExistsByRemoteID(ctx context.Context, remoteID string) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1
	FROM news_posts
	WHERE remote_id = $1
)
`

	var exists bool
	if err := p.QueryRow(ctx, q, remoteID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check post remote_id=%q: %w", remoteID, err)
	}
	return exists, nil
}

// SaveNewsPosts persists a batch of posts with their image and video rows
// in a single transaction. All rows commit or none do.
func (p *Pool) SaveNewsPosts(ctx context.Context, posts []*NewsPost) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return fmt.Errorf("begin batch transaction: %w", err)
	}

	for _, post := range posts {
		if err := insertNewsPost(ctx, tx, post); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("commit %d news posts: %w", len(posts), err)
	}
	return nil
}

// insertNewsPost inserts one post and its media rows, filling in the
// generated ids as it goes.
func insertNewsPost(ctx context.Context, tx Tx, post *NewsPost) error {
	const postQuery = `
INSERT INTO news_posts (
	remote_id,
	title,
	description,
	content,
	language,
	published_at,
	creator,
	link,
	likes,
	formatting,
	type,
	sub_category,
	world_region,
	images_json,
	country_id,
	source_id,
	category_id,
	deleted
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING id
`

	err := tx.QueryRow(ctx, postQuery,
		post.RemoteID,
		post.Title,
		post.Description,
		post.Content,
		post.Language,
		post.PublishedAt,
		post.Creator,
		post.Link,
		post.Likes,
		post.Formatting,
		post.Type,
		post.SubCategory,
		post.WorldRegion,
		jsonbArg(post.ImagesJSON),
		post.CountryID,
		post.SourceID,
		post.CategoryID,
		post.Deleted,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("insert news post remote_id=%q: %w", post.RemoteID, err)
	}

	const imageQuery = `
INSERT INTO news_post_images (id, news_post_id, original_image_url, stored_base_url)
VALUES ($1, $2, $3, $4)
`

	for i := range post.Images {
		image := &post.Images[i]
		image.NewsPostID = post.ID
		tag, err := tx.Exec(ctx, imageQuery, image.ID, image.NewsPostID, image.OriginalImageURL, image.StoredBaseURL)
		if err != nil {
			return fmt.Errorf("insert image for post %d: %w", post.ID, err)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("insert image for post %d: %d rows affected", post.ID, tag.RowsAffected())
		}
	}

	const videoQuery = `
INSERT INTO news_post_videos (news_post_id, video_url)
VALUES ($1, $2)
`

	for i := range post.Videos {
		video := &post.Videos[i]
		video.NewsPostID = post.ID
		if _, err := tx.Exec(ctx, videoQuery, video.NewsPostID, video.VideoURL); err != nil {
			return fmt.Errorf("insert video for post %d: %w", post.ID, err)
		}
	}
	return nil
}

// jsonbArg passes raw JSON as text so the driver does not bind it as a
// byte array; an empty document becomes NULL.
func jsonbArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// ListPostsForIndexing returns non-deleted posts with id > afterID in id
// order, for the backfill indexing pass.
func (p *Pool) ListPostsForIndexing(ctx context.Context, afterID int64, limit int) ([]IndexablePost, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	const q = `
SELECT
	p.id,
	p.title,
	p.content,
	p.language,
	p.published_at,
	p.images_json,
	(
		SELECT i.original_image_url
		FROM news_post_images i
		WHERE i.news_post_id = p.id
		ORDER BY i.id
		LIMIT 1
	) AS original_image_url
FROM news_posts p
WHERE p.id > $1
  AND p.deleted = FALSE
ORDER BY p.id
LIMIT $2
`

	rows, err := p.Query(ctx, q, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("query posts for indexing: %w", err)
	}
	defer rows.Close()

	posts := make([]IndexablePost, 0, limit)
	for rows.Next() {
		var post IndexablePost
		if err := rows.Scan(
			&post.ID,
			&post.Title,
			&post.Content,
			&post.Language,
			&post.PublishedAt,
			&post.ImagesJSON,
			&post.OriginalImageURL,
		); err != nil {
			return nil, fmt.Errorf("scan indexable post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexable posts: %w", err)
	}
	return posts, nil
}
