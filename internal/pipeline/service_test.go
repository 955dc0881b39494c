package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nisee.app/newsflow/internal/db"
	"nisee.app/newsflow/internal/media"
	"nisee.app/newsflow/internal/provider"
	payloadschema "nisee.app/newsflow/schema"
)

type fakePipelineStore struct {
	existing      map[string]bool
	countries     map[string]*db.Country
	sources       map[string]*db.Source
	categories    map[string]*db.Category
	batches       [][]*db.NewsPost
	existsCalls   int
	failFirstSave bool
	nextID        int64
}

func newFakePipelineStore() *fakePipelineStore {
	return &fakePipelineStore{
		existing:   map[string]bool{},
		countries:  map[string]*db.Country{},
		sources:    map[string]*db.Source{},
		categories: map[string]*db.Category{},
	}
}

func (s *fakePipelineStore) PostExistsByRemoteID(ctx context.Context, remoteID string) (bool, error) {
	s.existsCalls++
	return s.existing[remoteID], nil
}

func (s *fakePipelineStore) SaveNewsPosts(ctx context.Context, posts []*db.NewsPost) error {
	if s.failFirstSave {
		s.failFirstSave = false
		return fmt.Errorf("database unavailable")
	}
	for _, post := range posts {
		s.nextID++
		post.ID = s.nextID
		s.existing[post.RemoteID] = true
	}
	s.batches = append(s.batches, posts)
	return nil
}

func (s *fakePipelineStore) FindCountryByName(ctx context.Context, name string) (*db.Country, error) {
	return s.countries[strings.ToLower(name)], nil
}

func (s *fakePipelineStore) FindSourceByCode(ctx context.Context, code string) (*db.Source, error) {
	return s.sources[code], nil
}

func (s *fakePipelineStore) CreateSource(ctx context.Context, source *db.Source) error {
	source.ID = int64(len(s.sources) + 1)
	s.sources[source.Code] = source
	return nil
}

func (s *fakePipelineStore) FindCategoryByCode(ctx context.Context, code string) (*db.Category, error) {
	return s.categories[code], nil
}

type fakeFetcher struct {
	articles map[string][]*payloadschema.Article
	err      error
	queries  []provider.Query
}

func (f *fakeFetcher) FetchLatest(ctx context.Context, query provider.Query) ([]*payloadschema.Article, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.articles[query.Term], nil
}

type fakeProber struct {
	unreachable map[string]bool
}

func (p *fakeProber) CheckImage(ctx context.Context, imageURL string) bool {
	return !p.unreachable[imageURL]
}

type fakeProcessor struct {
	err   error
	calls int
}

func (p *fakeProcessor) Process(ctx context.Context, imageURL string, assetID uuid.UUID) (media.Asset, error) {
	p.calls++
	if p.err != nil {
		return media.Asset{}, p.err
	}
	return media.Asset{
		ID:      assetID,
		BaseURL: "https://cdn.example.com/" + assetID.String(),
		Variants: map[string]string{
			"sm": "https://cdn.example.com/" + assetID.String() + "/sm.webp",
		},
	}, nil
}

type fakeIndexer struct {
	ensureErr error
	upsertErr error
	upserted  []db.IndexablePost
}

func (ix *fakeIndexer) EnsureCollection(ctx context.Context) error {
	return ix.ensureErr
}

func (ix *fakeIndexer) UpsertPosts(ctx context.Context, posts []db.IndexablePost) error {
	if ix.upsertErr != nil {
		return ix.upsertErr
	}
	ix.upserted = append(ix.upserted, posts...)
	return nil
}

type fakeSink struct {
	reports []string
}

func (s *fakeSink) ReportSaved(category, subCategory string, saved int) {
	s.reports = append(s.reports, fmt.Sprintf("%s/%s=%d", category, subCategory, saved))
}

func str(s string) *string { return &s }

// testArticle builds a schema-valid article with the requested number of
// sentences and optional media.
func testArticle(id string, sentences int, imageURL, videoURL string) *payloadschema.Article {
	parts := make([]string, 0, sentences)
	for i := 0; i < sentences; i++ {
		parts = append(parts, fmt.Sprintf("Sentence number %d of the report.", i+1))
	}

	article := &payloadschema.Article{
		ArticleID:  id,
		Title:      "Story " + id,
		Content:    str(strings.Join(parts, " ")),
		Language:   str("english"),
		SourceID:   str("example_wire"),
		SourceName: str("Example Wire"),
	}
	if imageURL != "" {
		article.ImageURL = str(imageURL)
	}
	if videoURL != "" {
		article.VideoURL = str(videoURL)
	}
	return article
}

func newTestService(store *fakePipelineStore, fetcher *fakeFetcher, prober *fakeProber, indexer Indexer, sink *fakeSink) *Service {
	return NewService(store, fetcher, prober, &fakeProcessor{}, indexer, sink, DefaultBatchSize, zerolog.Nop())
}

func TestRunCommitsInBatchesOfTen(t *testing.T) {
	t.Parallel()

	articles := make([]*payloadschema.Article, 0, 25)
	for i := 0; i < 25; i++ {
		articles = append(articles, testArticle(fmt.Sprintf("a%02d", i), 12, fmt.Sprintf("https://img.example.com/%d.jpg", i), ""))
	}

	store := newFakePipelineStore()
	fetcher := &fakeFetcher{articles: map[string][]*payloadschema.Article{"ai": articles}}
	indexer := &fakeIndexer{}
	sink := &fakeSink{}
	service := newTestService(store, fetcher, &fakeProber{}, indexer, sink)

	result, err := service.Run(context.Background(), Request{
		ProviderCategory: "technology",
		CategoryCode:     "TECH",
		SubCategories:    []string{"ai"},
		Language:         "en",
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Fetched != 25 || result.Saved != 25 || result.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.batches) != 3 {
		t.Fatalf("expected 3 commits for 25 posts, got %d", len(store.batches))
	}
	if len(store.batches[0]) != 10 || len(store.batches[1]) != 10 || len(store.batches[2]) != 5 {
		t.Fatalf("unexpected batch sizes: %d %d %d", len(store.batches[0]), len(store.batches[1]), len(store.batches[2]))
	}
	if result.Indexed != 25 || len(indexer.upserted) != 25 {
		t.Fatalf("expected all saved posts indexed, got %d", result.Indexed)
	}
	if indexer.upserted[0].ID == 0 {
		t.Fatalf("expected committed post ids to reach the indexer")
	}
	if len(sink.reports) != 1 || sink.reports[0] != "TECH/ai=25" {
		t.Fatalf("unexpected sink reports: %v", sink.reports)
	}
}

func TestRunSkipsRejectedAndDuplicateArticles(t *testing.T) {
	t.Parallel()

	articles := []*payloadschema.Article{
		testArticle("ok", 12, "https://img.example.com/ok.jpg", ""),
		testArticle("short", 5, "https://img.example.com/short.jpg", ""),
		testArticle("dupe", 12, "https://img.example.com/dupe.jpg", ""),
		testArticle("nomedia", 12, "", ""),
		testArticle("badimg", 12, "https://img.example.com/broken.jpg", ""),
	}

	store := newFakePipelineStore()
	store.existing["dupe"] = true
	fetcher := &fakeFetcher{articles: map[string][]*payloadschema.Article{"": articles}}
	prober := &fakeProber{unreachable: map[string]bool{"https://img.example.com/broken.jpg": true}}
	service := newTestService(store, fetcher, prober, nil, &fakeSink{})

	result, err := service.Run(context.Background(), Request{ProviderCategory: "top", SkipIndex: true})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.Saved != 1 || result.Skipped != 4 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(store.batches) != 1 || store.batches[0][0].RemoteID != "ok" {
		t.Fatalf("expected only the clean article to be saved")
	}
}

func TestRunTwiceSavesEachArticleOnce(t *testing.T) {
	t.Parallel()

	articles := make([]*payloadschema.Article, 0, 4)
	for i := 0; i < 4; i++ {
		articles = append(articles, testArticle(fmt.Sprintf("r%02d", i), 12, fmt.Sprintf("https://img.example.com/r%d.jpg", i), ""))
	}

	store := newFakePipelineStore()
	fetcher := &fakeFetcher{articles: map[string][]*payloadschema.Article{"": articles}}
	service := newTestService(store, fetcher, &fakeProber{}, nil, &fakeSink{})

	request := Request{ProviderCategory: "top", SkipIndex: true}

	first, err := service.Run(context.Background(), request)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Saved != 4 || first.Skipped != 0 {
		t.Fatalf("unexpected first run result: %+v", first)
	}

	// The same article set again: every remote_id is now persisted, so
	// the dedup rule drops all of them and no commit is issued.
	second, err := service.Run(context.Background(), request)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Saved != 0 || second.Skipped != 4 {
		t.Fatalf("unexpected second run result: %+v", second)
	}
	if len(store.batches) != 1 {
		t.Fatalf("expected a single commit across both runs, got %d", len(store.batches))
	}
}

func TestRunProviderFailureAbortsRun(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: fmt.Errorf("provider down")}
	service := newTestService(newFakePipelineStore(), fetcher, &fakeProber{}, nil, &fakeSink{})

	if _, err := service.Run(context.Background(), Request{ProviderCategory: "top", SkipIndex: true}); err == nil {
		t.Fatalf("expected run to fail when the provider fails")
	}
}

func TestRunBatchFailureAbandonsSubCategoryOnly(t *testing.T) {
	t.Parallel()

	first := make([]*payloadschema.Article, 0, 12)
	for i := 0; i < 12; i++ {
		first = append(first, testArticle(fmt.Sprintf("f%02d", i), 12, fmt.Sprintf("https://img.example.com/f%d.jpg", i), ""))
	}
	second := []*payloadschema.Article{
		testArticle("s1", 12, "https://img.example.com/s1.jpg", ""),
	}

	store := newFakePipelineStore()
	store.failFirstSave = true
	fetcher := &fakeFetcher{articles: map[string][]*payloadschema.Article{"alpha": first, "beta": second}}
	sink := &fakeSink{}
	service := newTestService(store, fetcher, &fakeProber{}, nil, sink)

	result, err := service.Run(context.Background(), Request{
		ProviderCategory: "top",
		CategoryCode:     "NEWS",
		SubCategories:    []string{"alpha", "beta"},
		SkipIndex:        true,
	})
	if err != nil {
		t.Fatalf("batch failure must not abort the run: %v", err)
	}

	// Alpha's first batch failed and the sub-category was abandoned; beta
	// still ran to completion.
	if result.Saved != 1 {
		t.Fatalf("expected only beta's post saved, got %d", result.Saved)
	}
	if result.SubCategoryErrors != 1 {
		t.Fatalf("expected one abandoned sub-category, got %d", result.SubCategoryErrors)
	}
	if len(fetcher.queries) != 2 {
		t.Fatalf("expected both sub-categories fetched, got %d", len(fetcher.queries))
	}
	if len(sink.reports) != 2 || sink.reports[0] != "NEWS/alpha=0" || sink.reports[1] != "NEWS/beta=1" {
		t.Fatalf("unexpected sink reports: %v", sink.reports)
	}
}

func TestRunIndexFailureIsBestEffort(t *testing.T) {
	t.Parallel()

	articles := []*payloadschema.Article{
		testArticle("ok", 12, "https://img.example.com/ok.jpg", ""),
	}
	store := newFakePipelineStore()
	fetcher := &fakeFetcher{articles: map[string][]*payloadschema.Article{"": articles}}
	indexer := &fakeIndexer{upsertErr: fmt.Errorf("qdrant down")}
	service := newTestService(store, fetcher, &fakeProber{}, indexer, &fakeSink{})

	result, err := service.Run(context.Background(), Request{ProviderCategory: "top"})
	if err != nil {
		t.Fatalf("index failure must not fail the run: %v", err)
	}
	if result.Saved != 1 || result.Indexed != 0 {
		t.Fatalf("expected saved=1 indexed=0, got %+v", result)
	}
}

func TestRunForwardsProviderQueryFlags(t *testing.T) {
	t.Parallel()

	store := newFakePipelineStore()
	fetcher := &fakeFetcher{}
	service := newTestService(store, fetcher, &fakeProber{}, nil, &fakeSink{})

	if _, err := service.Run(context.Background(), Request{
		ProviderCategory: "business",
		SubCategories:    []string{"markets"},
		Language:         "de",
		SkipIndex:        true,
	}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	query := fetcher.queries[0]
	if query.Term != "markets" || query.Category != "business" || query.Language != "de" {
		t.Fatalf("unexpected query: %+v", query)
	}
	if !query.FullContent || !query.Image || !query.RemoveDuplicate {
		t.Fatalf("expected content flags on provider query: %+v", query)
	}
}
