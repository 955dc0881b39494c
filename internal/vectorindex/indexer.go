package vectorindex

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/embed"
)

const upsertChunkSize = 1000

// Encoder turns texts into vectors in the index's vector space.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer writes post embeddings into the vector index. Point ids are the
// posts' numeric ids, so re-indexing a post overwrites its prior vector.
type Indexer struct {
	store      Store
	encoder    Encoder
	collection string
	logger     zerolog.Logger
}

func NewIndexer(store Store, encoder Encoder, collection string, logger zerolog.Logger) *Indexer {
	return &Indexer{
		store:      store,
		encoder:    encoder,
		collection: collection,
		logger:     logger,
	}
}

// EnsureCollection provisions the collection on first use. Re-provisioning
// an existing collection is a no-op: recreating would silently discard
// prior vectors, so existence is checked before create.
func (ix *Indexer) EnsureCollection(ctx context.Context) error {
	exists, err := ix.store.CollectionExists(ctx, ix.collection)
	if err != nil {
		return fmt.Errorf("check collection %q: %w", ix.collection, err)
	}
	if exists {
		return nil
	}

	err = ix.store.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(embed.VectorDimensions),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection %q: %w", ix.collection, err)
	}

	ix.logger.Info().Str("collection", ix.collection).Msg("vector collection created")
	return nil
}

// UpsertPosts embeds each post's title and upserts {id, vector, payload}
// points, chunked to bound request size.
func (ix *Indexer) UpsertPosts(ctx context.Context, posts []db.IndexablePost) error {
	for start := 0; start < len(posts); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(posts))
		if err := ix.upsertChunk(ctx, posts[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (ix *Indexer) upsertChunk(ctx context.Context, posts []db.IndexablePost) error {
	if len(posts) == 0 {
		return nil
	}

	titles := make([]string, 0, len(posts))
	for _, post := range posts {
		titles = append(titles, post.Title)
	}

	vectors, err := ix.encoder.Encode(ctx, titles)
	if err != nil {
		return fmt.Errorf("encode %d post titles: %w", len(posts), err)
	}

	points := make([]*qdrant.PointStruct, 0, len(posts))
	for i, post := range posts {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(uint64(post.ID)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(BuildPayload(post)),
		})
	}

	_, err = ix.store.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ix.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}

	ix.logger.Info().Int("points", len(points)).Str("collection", ix.collection).Msg("indexed posts")
	return nil
}
