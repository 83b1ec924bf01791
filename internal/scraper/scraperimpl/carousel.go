package scraperimpl

import (
	"context"
	"sync"

	"github.com/orgball2608/insta-saver/internal/domain"
)

// processPost drives every item of one post to a terminal outcome and then
// reconciles the store. Items fail independently; one broken carousel child
// never blocks its siblings.
func (s *ScraperImpl) processPost(ctx context.Context, post domain.Post) domain.PostOutcome {
	outcome := domain.PostOutcome{
		Items:     make([]domain.ItemOutcome, len(post.Items)),
		Attempted: len(post.Items),
	}

	var wg sync.WaitGroup
	for i, item := range post.Items {
		wg.Add(1)
		go func(i int, item domain.MediaItem) {
			defer wg.Done()

			if err := s.sem.Acquire(ctx, 1); err != nil {
				outcome.Items[i] = domain.ItemOutcome{MediaID: item.MediaID, Index: item.Index, Err: err}
				return
			}
			defer s.sem.Release(1)

			outcome.Items[i] = s.Downloader.FetchItem(ctx, post.TakenAt, item)
		}(i, item)
	}
	wg.Wait()

	for _, item := range outcome.Items {
		switch {
		case item.Failed():
			outcome.Failed++
			s.Logger.Warn("Media item failed",
				"post_url", post.URL,
				"media_id", item.MediaID,
				"index", item.Index,
				"error", item.Err,
			)
		case item.Skipped:
			outcome.Skipped++
		default:
			outcome.Fetched++
		}
	}

	if err := s.reconcile(ctx, post, outcome); err != nil {
		s.Logger.Error("Failed to reconcile post", "post_url", post.URL, "error", err)
	}
	return outcome
}
