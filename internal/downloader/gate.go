package downloader

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/orgball2608/insta-saver/internal/domain"
	"github.com/orgball2608/insta-saver/internal/repositories/media"
	"github.com/orgball2608/insta-saver/pkg/logger"
)

// FingerprintStore is the slice of the media repository the gate needs.
type FingerprintStore interface {
	GetByMediaID(ctx context.Context, mediaID string) (*domain.MediaRecord, error)
}

// Gate is the single authority deciding whether a media item needs to be
// fetched at all, and the only code path that promotes a finished temp
// file onto its final path.
type Gate struct {
	store  FingerprintStore
	logger logger.Logger
}

func NewGate(store FingerprintStore, log logger.Logger) *Gate {
	return &Gate{
		store:  store,
		logger: log.WithComponent("Gate"),
	}
}

// NeedsFetch reports whether mediaID must be fetched into absPath. It is
// false only when a fingerprint record exists AND the file at absPath is
// present with the recorded size; the double condition guards against a
// record surviving an externally deleted file. When no fetch is needed the
// prior record is returned so the caller can reuse its fingerprint.
func (g *Gate) NeedsFetch(ctx context.Context, mediaID, absPath string) (bool, *domain.MediaRecord, error) {
	rec, err := g.store.GetByMediaID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			return true, nil, nil
		}
		return false, nil, fmt.Errorf("fingerprint lookup for %s: %w", mediaID, err)
	}

	fi, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			g.logger.Warn("Fingerprint record exists but file is missing, refetching", "media_id", mediaID, "path", absPath)
			return true, nil, nil
		}
		return false, nil, err
	}
	if fi.Size() != rec.ByteSize {
		g.logger.Warn("File size differs from fingerprint record, refetching", "media_id", mediaID, "path", absPath,
			"on_disk", fi.Size(), "recorded", rec.ByteSize)
		return true, nil, nil
	}

	return false, rec, nil
}

// Commit fingerprints the finished temp file and atomically renames it onto
// finalPath. The temp file must live on the same volume as finalPath. If a
// concurrent run already placed a file at finalPath, the existing file wins:
// the temp file is discarded and the existing file's fingerprint is returned.
// Readers of finalPath therefore only ever see nothing or a complete file.
func (g *Gate) Commit(tempPath, finalPath string) (fingerprint string, size int64, err error) {
	if fi, statErr := os.Stat(finalPath); statErr == nil {
		_ = os.Remove(tempPath)
		fp, hashErr := FileSHA256(finalPath)
		if hashErr != nil {
			return "", 0, hashErr
		}
		g.logger.Debug("Final path already exists, keeping first writer's file", "path", finalPath)
		return fp, fi.Size(), nil
	}

	fi, err := os.Stat(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("stat temp file: %w", err)
	}
	fp, err := FileSHA256(tempPath)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, err
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("promote temp file: %w", err)
	}
	return fp, fi.Size(), nil
}
