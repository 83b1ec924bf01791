package instagram

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-saver/internal/domain"
)

// ErrSessionExpired means the session cookie is no longer accepted. It is
// fatal for the current run; credentials must be refreshed externally.
var ErrSessionExpired = errors.New("instagram session expired: set a fresh INSTAGRAM_SESSION_ID and restart")

type Client interface {
	// Verify checks the session cookie and returns the logged-in username.
	Verify(ctx context.Context) (string, error)

	// SavedPosts returns one page of the saved-posts feed. An empty cursor
	// starts from the beginning; an empty NextCursor on the returned page
	// means the feed is exhausted.
	SavedPosts(ctx context.Context, cursor string) (*domain.SavedPage, error)
}
