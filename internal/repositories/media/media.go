package media

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-saver/internal/domain"
)

var ErrNotFound = errors.New("media record not found")

//go:generate go run go.uber.org/mock/mockgen -source=media.go -destination=mocks/mock.go
type Repository interface {
	// GetByMediaID returns the fingerprint record for a media id, or
	// ErrNotFound. Lookups key on media_id so reordered carousels never
	// trigger a refetch.
	GetByMediaID(ctx context.Context, mediaID string) (*domain.MediaRecord, error)

	// Upsert writes the fingerprint record, replacing a prior record with
	// the same media_id.
	Upsert(ctx context.Context, rec domain.MediaRecord) error
}
