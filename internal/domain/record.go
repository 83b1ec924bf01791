package domain

import "time"

// SavedPost is the persisted form of a post.
type SavedPost struct {
	ID         int64
	URL        string
	Caption    string
	Timestamp  time.Time
	MediaPaths []string
	CreatedAt  time.Time
}

// MediaRecord is the persisted fingerprint record of one fetched media item.
// Path is relative to the media root.
type MediaRecord struct {
	ID          int64
	PostID      int64
	MediaID     string
	Index       int
	Path        string
	Fingerprint string
	ByteSize    int64
}

// Tag is a normalized hashtag.
type Tag struct {
	ID   int64
	Name string
}
