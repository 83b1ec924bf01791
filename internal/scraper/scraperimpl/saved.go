package scraperimpl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/orgball2608/insta-saver/internal/domain"
	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/internal/scraper"
	"github.com/orgball2608/insta-saver/pkg/retry"
	"golang.org/x/time/rate"
)

// SyncSavedPosts walks the saved feed page by page. Posts on a page are
// processed concurrently, but the next page is only requested after every
// post on the current one has been joined, so a crash loses at most one
// page of progress.
func (s *ScraperImpl) SyncSavedPosts(ctx context.Context) (domain.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return domain.RunSummary{}, scraper.ErrSyncInProgress
	}
	defer s.running.Store(false)

	runID := s.Status.BeginRun()
	s.Logger.Info("Starting saved-posts sync", "run_id", runID)
	s.Status.SetPhase("running")

	limiter := rate.NewLimiter(rate.Every(s.Config.Scraper.PageDelay), 1)

	var (
		mu      sync.Mutex
		summary domain.RunSummary
	)

	cursor := ""
	for {
		if err := limiter.Wait(ctx); err != nil {
			s.Status.SetPhase("aborted")
			return summary, err
		}

		page, err := s.fetchPage(ctx, cursor)
		if err != nil {
			s.Status.SetPhase("failed")
			s.Status.Message(fmt.Sprintf("page fetch failed: %v", err))
			return summary, err
		}

		summary.Pages++
		s.Status.AddTotal(len(page.Posts))

		var wg sync.WaitGroup
		for _, post := range page.Posts {
			wg.Add(1)
			go func(post domain.Post) {
				defer wg.Done()

				outcome := s.processPost(ctx, post)
				s.Status.RecordPost(outcome.Fetched, outcome.Skipped, outcome.Failed)

				mu.Lock()
				summary.Posts++
				summary.Fetched += outcome.Fetched
				summary.Skipped += outcome.Skipped
				summary.Failed += outcome.Failed
				mu.Unlock()
			}(post)
		}
		wg.Wait()

		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	s.Status.SetPhase("idle")
	s.Status.Message(fmt.Sprintf("run complete: %d posts, %d fetched, %d skipped, %d failed",
		summary.Posts, summary.Fetched, summary.Skipped, summary.Failed))
	s.Logger.Info("Saved-posts sync finished",
		"run_id", runID,
		"pages", summary.Pages,
		"posts", summary.Posts,
		"fetched", summary.Fetched,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// fetchPage retries transient page failures. An expired session aborts the
// whole run immediately; retrying it would only hammer the login wall.
func (s *ScraperImpl) fetchPage(ctx context.Context, cursor string) (*domain.SavedPage, error) {
	var page *domain.SavedPage
	err := retry.Do(ctx, s.Logger, "FetchSavedPage", func() error {
		var err error
		page, err = s.Instagram.SavedPosts(ctx, cursor)
		if err != nil {
			if errors.Is(err, instagram.ErrSessionExpired) {
				return retry.Permanent(err)
			}
			return err
		}
		return nil
	}, retry.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return page, nil
}
