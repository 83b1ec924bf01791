package post

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-saver/internal/domain"
)

var ErrNotFound = errors.New("post not found")

//go:generate go run go.uber.org/mock/mockgen -source=post.go -destination=mocks/mock.go
type Repository interface {
	// Upsert inserts the post or, when a row with the same URL exists,
	// refreshes its caption, timestamp and media paths. Returns the row id.
	Upsert(ctx context.Context, post domain.SavedPost) (int64, error)

	// GetByURL returns the post stored under the given origin URL.
	GetByURL(ctx context.Context, url string) (*domain.SavedPost, error)
}
