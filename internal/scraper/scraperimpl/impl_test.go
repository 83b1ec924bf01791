package scraperimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/orgball2608/insta-saver/internal/domain"
	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/internal/repositories/media"
	"github.com/orgball2608/insta-saver/internal/repositories/post"
	"github.com/orgball2608/insta-saver/internal/scraper"
	"github.com/orgball2608/insta-saver/internal/status"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstagram struct {
	mu    sync.Mutex
	pages map[string]*domain.SavedPage
	errs  map[string]error
	calls []string
}

func (f *fakeInstagram) Verify(context.Context) (string, error) {
	return "tester", nil
}

func (f *fakeInstagram) SavedPosts(_ context.Context, cursor string) (*domain.SavedPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cursor)

	if err, ok := f.errs[cursor]; ok {
		delete(f.errs, cursor)
		return nil, err
	}
	page, ok := f.pages[cursor]
	if !ok {
		return nil, fmt.Errorf("no page for cursor %q", cursor)
	}
	return page, nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	seen   map[string]bool
	failed map[string]bool
	calls  int
}

func (f *fakeFetcher) FetchItem(_ context.Context, takenAt time.Time, item domain.MediaItem) domain.ItemOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	out := domain.ItemOutcome{MediaID: item.MediaID, Index: item.Index}
	if f.failed[item.MediaID] {
		out.Err = errors.New("simulated transfer failure")
		return out
	}

	ext := "jpg"
	if item.ContentType == "video/mp4" {
		ext = "mp4"
	}
	out.Path = fmt.Sprintf("%s/%s_%d.%s", takenAt.UTC().Format(time.DateOnly), item.MediaID, item.Index, ext)
	out.Fingerprint = "fp-" + item.MediaID
	out.ByteSize = 42
	if f.seen[item.MediaID] {
		out.Skipped = true
	} else {
		if f.seen == nil {
			f.seen = map[string]bool{}
		}
		f.seen[item.MediaID] = true
	}
	return out
}

type fakePostRepo struct {
	mu     sync.Mutex
	nextID int64
	byURL  map[string]*domain.SavedPost
}

func (r *fakePostRepo) Upsert(_ context.Context, p domain.SavedPost) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byURL[p.URL]; ok {
		p.ID = existing.ID
	} else {
		r.nextID++
		p.ID = r.nextID
	}
	if r.byURL == nil {
		r.byURL = map[string]*domain.SavedPost{}
	}
	r.byURL[p.URL] = &p
	return p.ID, nil
}

func (r *fakePostRepo) GetByURL(_ context.Context, url string) (*domain.SavedPost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byURL[url]
	if !ok {
		return nil, post.ErrNotFound
	}
	return p, nil
}

type fakeTagRepo struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]int64
	links  map[[2]int64]int
}

func (r *fakeTagRepo) GetOrCreate(_ context.Context, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byName[name]; ok {
		return id, nil
	}
	if r.byName == nil {
		r.byName = map[string]int64{}
	}
	r.nextID++
	r.byName[name] = r.nextID
	return r.nextID, nil
}

func (r *fakeTagRepo) Link(_ context.Context, postID, tagID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.links == nil {
		r.links = map[[2]int64]int{}
	}
	r.links[[2]int64{postID, tagID}]++
	return nil
}

type fakeMediaRepo struct {
	mu      sync.Mutex
	records map[string]*domain.MediaRecord
}

func (r *fakeMediaRepo) GetByMediaID(_ context.Context, mediaID string) (*domain.MediaRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[mediaID]
	if !ok {
		return nil, media.ErrNotFound
	}
	return rec, nil
}

func (r *fakeMediaRepo) Upsert(_ context.Context, rec domain.MediaRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.records == nil {
		r.records = map[string]*domain.MediaRecord{}
	}
	r.records[rec.MediaID] = &rec
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scraper.SyncInterval = time.Hour
	cfg.Scraper.RunTimeout = time.Minute
	cfg.Scraper.PageDelay = 0
	cfg.Downloader.Workers = 4
	return cfg
}

func newTestScraper(ig instagram.Client, fetcher scraper.ItemFetcher) (*ScraperImpl, *fakePostRepo, *fakeTagRepo, *fakeMediaRepo) {
	posts := &fakePostRepo{}
	tags := &fakeTagRepo{}
	medias := &fakeMediaRepo{}
	s := New(Opts{
		Instagram:  ig,
		Downloader: fetcher,
		PostRepo:   posts,
		TagRepo:    tags,
		MediaRepo:  medias,
		Status:     status.NewTracker(),
		Logger:     logger.New(logger.Opts{}),
		Config:     testConfig(),
	})
	return s, posts, tags, medias
}

func carouselPost(url string, takenAt time.Time, mediaIDs ...string) domain.Post {
	p := domain.Post{URL: url, TakenAt: takenAt}
	for i, id := range mediaIDs {
		p.Items = append(p.Items, domain.MediaItem{
			MediaID:     id,
			Index:       i,
			SourceURL:   "https://cdn.example/" + id,
			ContentType: "image/jpeg",
		})
	}
	return p
}

func TestSyncSavedPostsWalksAllPages(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	ig := &fakeInstagram{pages: map[string]*domain.SavedPage{
		"": {
			Posts:      []domain.Post{carouselPost("https://www.instagram.com/p/AAA/", takenAt, "a1", "a2")},
			NextCursor: "cur1",
		},
		"cur1": {
			Posts: []domain.Post{
				carouselPost("https://www.instagram.com/p/BBB/", takenAt, "b1"),
				carouselPost("https://www.instagram.com/p/CCC/", takenAt, "c1"),
			},
		},
	}}
	fetcher := &fakeFetcher{}
	s, posts, _, medias := newTestScraper(ig, fetcher)

	summary, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, 3, summary.Posts)
	assert.Equal(t, 4, summary.Fetched)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, []string{"", "cur1"}, ig.calls)

	stored, err := posts.GetByURL(context.Background(), "https://www.instagram.com/p/AAA/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-05-17/a1_0.jpg",
		"2024-05-17/a2_1.jpg",
	}, stored.MediaPaths, "media paths must follow carousel order")

	assert.Len(t, medias.records, 4)
	assert.Equal(t, "fp-b1", medias.records["b1"].Fingerprint)
}

func TestSyncSavedPostsCarouselIsolation(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	ig := &fakeInstagram{pages: map[string]*domain.SavedPage{
		"": {Posts: []domain.Post{carouselPost("https://www.instagram.com/p/AAA/", takenAt, "a1", "bad", "a3")}},
	}}
	fetcher := &fakeFetcher{failed: map[string]bool{"bad": true}}
	s, posts, _, medias := newTestScraper(ig, fetcher)

	summary, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err, "an item failure must not abort the run")

	assert.Equal(t, 2, summary.Fetched)
	assert.Equal(t, 1, summary.Failed)

	stored, err := posts.GetByURL(context.Background(), "https://www.instagram.com/p/AAA/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2024-05-17/a1_0.jpg",
		"2024-05-17/a3_2.jpg",
	}, stored.MediaPaths, "the failed sibling must be absent, the others kept")

	assert.Len(t, medias.records, 2)
	_, hasBad := medias.records["bad"]
	assert.False(t, hasBad, "no fingerprint record may exist for a failed item")
}

func TestSyncSavedPostsSessionExpiryAbortsRun(t *testing.T) {
	ig := &fakeInstagram{
		pages: map[string]*domain.SavedPage{},
		errs:  map[string]error{"": instagram.ErrSessionExpired},
	}
	fetcher := &fakeFetcher{}
	s, _, _, _ := newTestScraper(ig, fetcher)

	_, err := s.SyncSavedPosts(context.Background())
	require.ErrorIs(t, err, instagram.ErrSessionExpired)
	assert.Len(t, ig.calls, 1, "an expired session must not be retried")
	assert.Equal(t, 0, fetcher.calls)
}

func TestSyncSavedPostsRetriesTransientPageErrors(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	ig := &fakeInstagram{
		pages: map[string]*domain.SavedPage{
			"": {Posts: []domain.Post{carouselPost("https://www.instagram.com/p/AAA/", takenAt, "a1")}},
		},
		errs: map[string]error{"": errors.New("upstream hiccup")},
	}
	s, _, _, _ := newTestScraper(ig, &fakeFetcher{})

	summary, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Posts)
	assert.Len(t, ig.calls, 2)
}

func TestSyncSavedPostsSecondRunFetchesNothing(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	ig := &fakeInstagram{pages: map[string]*domain.SavedPage{
		"": {Posts: []domain.Post{carouselPost("https://www.instagram.com/p/AAA/", takenAt, "a1", "a2")}},
	}}
	fetcher := &fakeFetcher{}
	s, _, _, _ := newTestScraper(ig, fetcher)

	first, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Fetched)

	second, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Fetched)
	assert.Equal(t, 2, second.Skipped)
}

func TestSyncSavedPostsTwoRunsConverge(t *testing.T) {
	takenAt := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	p := domain.Post{
		URL:     "https://www.instagram.com/p/P1/",
		TakenAt: takenAt,
		Items: []domain.MediaItem{
			{MediaID: "A", Index: 0, SourceURL: "https://cdn.example/A", ContentType: "image/jpeg"},
			{MediaID: "B", Index: 1, SourceURL: "https://cdn.example/B", ContentType: "video/mp4"},
		},
	}
	ig := &fakeInstagram{pages: map[string]*domain.SavedPage{"": {Posts: []domain.Post{p}}}}
	fetcher := &fakeFetcher{}
	s, posts, _, _ := newTestScraper(ig, fetcher)

	first, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Fetched)

	row, err := posts.GetByURL(context.Background(), p.URL)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01/A_0.jpg", "2024-01-01/B_1.mp4"}, row.MediaPaths)

	second, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Fetched)
	assert.Equal(t, 2, second.Skipped)

	again, err := posts.GetByURL(context.Background(), p.URL)
	require.NoError(t, err)
	assert.Equal(t, row.MediaPaths, again.MediaPaths, "a no-change re-run must leave the row as it was")
}

func TestSyncSavedPostsRejectsOverlappingRuns(t *testing.T) {
	s, _, _, _ := newTestScraper(&fakeInstagram{}, &fakeFetcher{})
	s.running.Store(true)

	_, err := s.SyncSavedPosts(context.Background())
	assert.ErrorIs(t, err, scraper.ErrSyncInProgress)
}

func TestReconcileLinksNormalizedTags(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	p := carouselPost("https://www.instagram.com/p/AAA/", takenAt, "a1")
	p.Caption = "Sunset #Travel, again #travel and #Food"

	ig := &fakeInstagram{pages: map[string]*domain.SavedPage{"": {Posts: []domain.Post{p}}}}
	s, posts, tags, _ := newTestScraper(ig, &fakeFetcher{})

	_, err := s.SyncSavedPosts(context.Background())
	require.NoError(t, err)

	stored, err := posts.GetByURL(context.Background(), p.URL)
	require.NoError(t, err)

	assert.Len(t, tags.byName, 2)
	assert.Contains(t, tags.byName, "travel")
	assert.Contains(t, tags.byName, "food")
	assert.Equal(t, 1, tags.links[[2]int64{stored.ID, tags.byName["travel"]}])
}
