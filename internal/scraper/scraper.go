package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/insta-saver/internal/domain"
)

// ErrSyncInProgress means a sync run is already active; runs never overlap.
var ErrSyncInProgress = errors.New("a sync run is already in progress")

//go:generate go run go.uber.org/mock/mockgen -source=scraper.go -destination=mocks/mock.go
type Client interface {
	// SyncSavedPosts walks the whole saved-posts feed once, downloading
	// missing media and reconciling the store. Item-level failures are
	// absorbed into the summary; only session expiry and page-fetch
	// exhaustion abort the run.
	SyncSavedPosts(ctx context.Context) (domain.RunSummary, error)

	// ScheduleSync sets up periodic sync runs until ctx is cancelled.
	ScheduleSync(ctx context.Context) error
}

// ItemFetcher drives one media item to a terminal outcome.
type ItemFetcher interface {
	FetchItem(ctx context.Context, takenAt time.Time, item domain.MediaItem) domain.ItemOutcome
}
