// Package downloader implements the media ingestion path for a single item:
// deterministic path resolution, resumable HTTP transfer into a temp file,
// content fingerprinting and atomic promotion to the final path.
package downloader

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/orgball2608/insta-saver/internal/domain"
	"github.com/orgball2608/insta-saver/internal/repositories/media"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config    *config.Config
	Logger    logger.Logger
	MediaRepo media.Repository
}

// Downloader ties the resolver, gate and transferer together for one item.
type Downloader struct {
	root     string
	transfer *Transferer
	gate     *Gate
	logger   logger.Logger
}

func New(opts Opts) *Downloader {
	cfg := opts.Config.Downloader
	return &Downloader{
		root: cfg.MediaRoot,
		transfer: NewTransferer(TransferConfig{
			ConnectTimeout:  cfg.ConnectTimeout,
			ReadTimeout:     cfg.ReadTimeout,
			MaxAttempts:     cfg.MaxAttempts,
			InitialInterval: cfg.InitialInterval,
			MaxInterval:     cfg.MaxInterval,
			UserAgent:       opts.Config.Instagram.UserAgent,
		}, opts.Logger),
		gate:   NewGate(opts.MediaRepo, opts.Logger),
		logger: opts.Logger.WithComponent("Downloader"),
	}
}

// FetchItem drives one media item through resolve -> gate -> transfer ->
// commit. The returned outcome is always terminal: fetched, skipped, or
// failed with the cause attached. It never returns a partial state.
func (d *Downloader) FetchItem(ctx context.Context, takenAt time.Time, item domain.MediaItem) domain.ItemOutcome {
	out := domain.ItemOutcome{MediaID: item.MediaID, Index: item.Index}

	rel := Resolve(takenAt, item.MediaID, item.Index, item.ContentType)
	abs := filepath.Join(d.root, filepath.FromSlash(rel))

	need, prior, err := d.gate.NeedsFetch(ctx, item.MediaID, abs)
	if err != nil {
		out.Err = err
		return out
	}
	if !need {
		out.Path = rel
		out.Fingerprint = prior.Fingerprint
		out.ByteSize = prior.ByteSize
		out.Skipped = true
		return out
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		out.Err = err
		return out
	}

	// the temp file sits beside the final path so the rename in Commit
	// stays within one volume
	tempPath := abs + ".part"
	if err := d.transfer.Fetch(ctx, item.SourceURL, tempPath); err != nil {
		out.Err = err
		return out
	}

	fp, size, err := d.gate.Commit(tempPath, abs)
	if err != nil {
		out.Err = err
		return out
	}

	out.Path = rel
	out.Fingerprint = fp
	out.ByteSize = size
	d.logger.Debug("Fetched media item", "media_id", item.MediaID, "path", rel, "bytes", size)
	return out
}
