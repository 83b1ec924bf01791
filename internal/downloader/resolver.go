package downloader

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Resolve maps a media item's identity to its storage path, relative to the
// media root: <capture-date>/<media_id>_<index>.<ext>. It is a pure function
// of its inputs; the filename never depends on captions or source URLs, so
// posts sharing a caption or timestamp cannot collide.
func Resolve(takenAt time.Time, mediaID string, index int, contentType string) string {
	bucket := takenAt.UTC().Format(time.DateOnly)
	return path.Join(bucket, fmt.Sprintf("%s_%d.%s", mediaID, index, ExtensionFor(contentType)))
}

// ExtensionFor derives a file extension from a declared content type,
// falling back to a generic binary extension.
func ExtensionFor(contentType string) string {
	mt := contentType
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	mt = strings.ToLower(strings.TrimSpace(mt))

	switch mt {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	case "image/heic":
		return "heic"
	case "video/mp4":
		return "mp4"
	case "video/quicktime":
		return "mov"
	case "video/webm":
		return "webm"
	default:
		return "bin"
	}
}
