package downloader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	takenAt := time.Date(2024, 5, 17, 22, 45, 0, 0, time.FixedZone("ICT", 7*3600))

	got := Resolve(takenAt, "314159", 0, "image/jpeg")
	assert.Equal(t, "2024-05-17/314159_0.jpg", got)

	// same inputs, same path
	assert.Equal(t, got, Resolve(takenAt, "314159", 0, "image/jpeg"))

	// carousel siblings differ only by index
	assert.Equal(t, "2024-05-17/314159_1.mp4", Resolve(takenAt, "314159", 1, "video/mp4"))
}

func TestResolveUsesUTCBucket(t *testing.T) {
	// 01:30 on the 18th in UTC+7 is still the 17th in UTC
	takenAt := time.Date(2024, 5, 18, 1, 30, 0, 0, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, "2024-05-17/9_0.jpg", Resolve(takenAt, "9", 0, "image/jpeg"))
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"image/jpeg", "jpg"},
		{"image/jpg", "jpg"},
		{"IMAGE/JPEG", "jpg"},
		{"image/jpeg; charset=utf-8", "jpg"},
		{"image/png", "png"},
		{"image/webp", "webp"},
		{"image/heic", "heic"},
		{"video/mp4", "mp4"},
		{"video/quicktime", "mov"},
		{"video/webm", "webm"},
		{"application/octet-stream", "bin"},
		{"", "bin"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ExtensionFor(tc.contentType), "content type %q", tc.contentType)
	}
}
