package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	"github.com/orgball2608/insta-saver/internal/downloader"
	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/internal/instagram/igapi"
	repositories "github.com/orgball2608/insta-saver/internal/repositories/fx"
	"github.com/orgball2608/insta-saver/internal/scraper"
	"github.com/orgball2608/insta-saver/internal/scraper/scraperimpl"
	"github.com/orgball2608/insta-saver/internal/status"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"github.com/orgball2608/insta-saver/pkg/pgx"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(
		config.New,
		logger.FxOption,
		pgx.New,
		status.NewTracker,
	),
	fx.Provide(
		fx.Annotate(
			igapi.New,
			fx.As(new(instagram.Client)),
		),
		fx.Annotate(
			downloader.New,
			fx.As(new(scraper.ItemFetcher)),
		),
		fx.Annotate(
			scraperimpl.New,
			fx.As(new(scraper.Client)),
		),
	),
	repositories.Module,
	fx.Invoke(migrate),
	fx.Invoke(run),
)

func migrate(c *config.Config) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	db, err := sql.Open("postgres", c.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	return goose.Up(db, filepath.Join(wd, "migrations"))
}

func run(lc fx.Lifecycle, log logger.Logger, cfg *config.Config,
	igClient instagram.Client, scrClient scraper.Client, tracker *status.Tracker) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go startHttpServer(log, cfg, tracker)

			username, err := igClient.Verify(ctx)
			if err != nil {
				log.Error("Instagram session check failed", "error", err)
				tracker.Message("session check failed: " + err.Error())
			} else {
				log.Info("Instagram session verified", "username", username)
				tracker.SetUser(username)
			}

			if err := scrClient.ScheduleSync(ctx); err != nil {
				return err
			}

			go func() {
				runCtx, cancel := context.WithTimeout(ctx, cfg.Scraper.RunTimeout)
				defer cancel()

				if _, err := scrClient.SyncSavedPosts(runCtx); err != nil &&
					!errors.Is(err, scraper.ErrSyncInProgress) {
					log.Error("Initial sync failed", "error", err)
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func startHttpServer(log logger.Logger, cfg *config.Config, tracker *status.Tracker) {
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Failed to write response", "error", err)
		}
	})

	http.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tracker.Snapshot()); err != nil {
			log.Error("Failed to encode status", "error", err)
		}
	})

	log.Info(fmt.Sprintf("Starting server on :%d", cfg.App.Port))

	if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.App.Port), nil); err != nil {
		log.Error("Server failed to start", "error", err)
	}
}
