package domain

import "time"

// MediaItem is one downloadable asset of a saved post. MediaID is the
// server-assigned stable identity; Index is the item's position within
// the post's carousel (0 for single-item posts).
type MediaItem struct {
	MediaID     string
	Index       int
	SourceURL   string
	ContentType string
}

// Post is one saved post as reported by the metadata source.
type Post struct {
	URL     string // canonical post URL, unique identity
	Caption string
	TakenAt time.Time
	Items   []MediaItem
}

// SavedPage is one page of the saved-posts feed. An empty NextCursor
// means the feed is exhausted.
type SavedPage struct {
	Posts      []Post
	NextCursor string
}
