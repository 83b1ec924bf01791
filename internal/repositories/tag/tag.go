package tag

import (
	"context"
)

//go:generate go run go.uber.org/mock/mockgen -source=tag.go -destination=mocks/mock.go
type Repository interface {
	// GetOrCreate returns the id of the tag with the given normalized name,
	// creating the row if it does not exist yet. Concurrent creators of the
	// same name converge on one row via the unique constraint.
	GetOrCreate(ctx context.Context, name string) (int64, error)

	// Link attaches a tag to a post. Linking twice is a no-op.
	Link(ctx context.Context, postID, tagID int64) error
}
