package scraperimpl

import (
	"context"
	"fmt"
	"sync"

	"github.com/orgball2608/insta-saver/internal/domain"
	apperrors "github.com/orgball2608/insta-saver/pkg/errors"
	"github.com/orgball2608/insta-saver/pkg/hashtag"
)

// urlLocks serializes reconciliation per post URL so two workers that saw
// the same post on different pages cannot interleave their upserts.
type urlLocks struct {
	m sync.Map
}

func (l *urlLocks) lock(url string) func() {
	v, _ := l.m.LoadOrStore(url, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// reconcile writes the post row, its hashtags and the fingerprint records
// of every item that made it to disk. Failed items are left out entirely,
// so a reader never sees a path that does not exist.
func (s *ScraperImpl) reconcile(ctx context.Context, post domain.Post, outcome domain.PostOutcome) error {
	unlock := s.locks.lock(post.URL)
	defer unlock()

	postID, err := s.PostRepo.Upsert(ctx, domain.SavedPost{
		URL:        post.URL,
		Caption:    post.Caption,
		Timestamp:  post.TakenAt,
		MediaPaths: outcome.Paths(),
	})
	if err != nil {
		return apperrors.Wrap(err, "upsert post")
	}

	for _, name := range hashtag.Parse(post.Caption) {
		tagID, err := s.TagRepo.GetOrCreate(ctx, name)
		if err != nil {
			return apperrors.Wrap(err, fmt.Sprintf("get or create tag %q", name))
		}
		if err := s.TagRepo.Link(ctx, postID, tagID); err != nil {
			return apperrors.Wrap(err, fmt.Sprintf("link tag %q", name))
		}
	}

	for _, item := range outcome.Items {
		if item.Failed() {
			continue
		}
		rec := domain.MediaRecord{
			PostID:      postID,
			MediaID:     item.MediaID,
			Index:       item.Index,
			Path:        item.Path,
			Fingerprint: item.Fingerprint,
			ByteSize:    item.ByteSize,
		}
		if err := s.MediaRepo.Upsert(ctx, rec); err != nil {
			return apperrors.Wrap(err, fmt.Sprintf("upsert media record %s", item.MediaID))
		}
	}
	return nil
}
