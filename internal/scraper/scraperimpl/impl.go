package scraperimpl

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-co-op/gocron/v2"
	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/internal/repositories/media"
	"github.com/orgball2608/insta-saver/internal/repositories/post"
	"github.com/orgball2608/insta-saver/internal/repositories/tag"
	"github.com/orgball2608/insta-saver/internal/scraper"
	"github.com/orgball2608/insta-saver/internal/status"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"go.uber.org/fx"
	"golang.org/x/sync/semaphore"
)

type Opts struct {
	fx.In

	Instagram  instagram.Client
	Downloader scraper.ItemFetcher
	PostRepo   post.Repository
	TagRepo    tag.Repository
	MediaRepo  media.Repository
	Status     *status.Tracker
	Logger     logger.Logger
	Config     *config.Config
}

type ScraperImpl struct {
	Instagram  instagram.Client
	Downloader scraper.ItemFetcher
	PostRepo   post.Repository
	TagRepo    tag.Repository
	MediaRepo  media.Repository
	Status     *status.Tracker
	Logger     logger.Logger
	Config     *config.Config
	Scheduler  gocron.Scheduler

	sem     *semaphore.Weighted
	locks   urlLocks
	running atomic.Bool
}

func New(opts Opts) *ScraperImpl {
	workers := opts.Config.Downloader.Workers
	if workers < 1 {
		workers = 1
	}
	return &ScraperImpl{
		Instagram:  opts.Instagram,
		Downloader: opts.Downloader,
		PostRepo:   opts.PostRepo,
		TagRepo:    opts.TagRepo,
		MediaRepo:  opts.MediaRepo,
		Status:     opts.Status,
		Logger:     opts.Logger.WithComponent("Scraper"),
		Config:     opts.Config,
		sem:        semaphore.NewWeighted(int64(workers)),
	}
}

var _ scraper.Client = (*ScraperImpl)(nil)

// ScheduleSync runs SyncSavedPosts on the configured interval until ctx is
// cancelled. Each run gets its own timeout; overlapping runs are skipped.
func (s *ScraperImpl) ScheduleSync(ctx context.Context) error {
	if s.Scheduler == nil {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create sync scheduler: %w", err)
		}
		s.Scheduler = scheduler
	}

	interval := s.Config.Scraper.SyncInterval
	s.Logger.Info("Setting up saved-posts sync schedule", "interval", interval)

	_, err := s.Scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if ctx.Err() != nil {
				s.Logger.Info("Context cancelled, skipping scheduled sync")
				return
			}

			runCtx, cancel := context.WithTimeout(ctx, s.Config.Scraper.RunTimeout)
			defer cancel()

			summary, err := s.SyncSavedPosts(runCtx)
			if err != nil {
				if errors.Is(err, scraper.ErrSyncInProgress) {
					s.Logger.Warn("Previous sync still running, skipping this tick")
					return
				}
				s.Logger.Error("Scheduled sync failed", "error", err)
				return
			}
			s.Logger.Info("Scheduled sync finished",
				"posts", summary.Posts,
				"fetched", summary.Fetched,
				"skipped", summary.Skipped,
				"failed", summary.Failed,
			)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule saved-posts sync: %w", err)
	}

	s.Scheduler.Start()

	go func() {
		<-ctx.Done()
		s.Logger.Info("Stopping sync scheduler")
		if err := s.Scheduler.Shutdown(); err != nil {
			s.Logger.Error("Failed to shut down sync scheduler", "error", err)
		}
	}()

	return nil
}
