package igapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const savedFeedFixture = `{
	"items": [
		{
			"media": {
				"pk": 111,
				"code": "AAA",
				"taken_at": 1715947200,
				"media_type": 8,
				"caption": {"text": "beach day #travel"},
				"carousel_media": [
					{
						"pk": 1111,
						"media_type": 1,
						"image_versions2": {"candidates": [{"url": "https://cdn.example/1111.jpg", "width": 1080, "height": 1080}]}
					},
					{
						"pk": 1112,
						"media_type": 2,
						"video_versions": [{"url": "https://cdn.example/1112.mp4"}]
					}
				]
			}
		},
		{
			"media": {
				"pk": 222,
				"code": "BBB",
				"taken_at": 1715947300,
				"media_type": 2,
				"video_versions": [{"url": "https://cdn.example/222.mp4"}]
			}
		},
		{
			"media": {
				"pk": 333,
				"code": "CCC",
				"taken_at": 1715947400,
				"media_type": 1
			}
		}
	],
	"more_available": true,
	"next_max_id": "cursor-2",
	"status": "ok"
}`

func newTestClient(t *testing.T, srvURL string) *APIClient {
	t.Helper()
	cfg := &config.Config{}
	cfg.Instagram.SessionID = "session-cookie"
	cfg.Instagram.UserAgent = "test-agent"
	cfg.Instagram.PageSize = 12

	c := New(Opts{Config: cfg, Logger: logger.New(logger.Opts{})})
	c.baseURL = srvURL
	return c
}

func TestSavedPostsMapsFeed(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/feed/saved/posts/", r.URL.Path)
		gotQuery = r.URL.RawQuery

		cookie, err := r.Cookie("sessionid")
		require.NoError(t, err)
		assert.Equal(t, "session-cookie", cookie.Value)
		assert.NotEmpty(t, r.Header.Get("X-IG-App-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(savedFeedFixture))
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL).SavedPosts(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, "count=12", gotQuery)
	assert.Equal(t, "cursor-2", page.NextCursor)

	// the imageless post CCC is dropped
	require.Len(t, page.Posts, 2)

	carousel := page.Posts[0]
	assert.Equal(t, "https://www.instagram.com/p/AAA/", carousel.URL)
	assert.Equal(t, "beach day #travel", carousel.Caption)
	assert.Equal(t, time.Unix(1715947200, 0).UTC(), carousel.TakenAt)
	require.Len(t, carousel.Items, 2)
	assert.Equal(t, "1111", carousel.Items[0].MediaID)
	assert.Equal(t, 0, carousel.Items[0].Index)
	assert.Equal(t, "image/jpeg", carousel.Items[0].ContentType)
	assert.Equal(t, "1112", carousel.Items[1].MediaID)
	assert.Equal(t, 1, carousel.Items[1].Index)
	assert.Equal(t, "video/mp4", carousel.Items[1].ContentType)
	assert.Equal(t, "https://cdn.example/1112.mp4", carousel.Items[1].SourceURL)

	video := page.Posts[1]
	assert.Equal(t, "https://www.instagram.com/p/BBB/", video.URL)
	require.Len(t, video.Items, 1)
	assert.Equal(t, "222", video.Items[0].MediaID)
	assert.Equal(t, "video/mp4", video.Items[0].ContentType)
}

func TestSavedPostsSendsCursor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cursor-2", r.URL.Query().Get("max_id"))
		_, _ = w.Write([]byte(`{"items": [], "more_available": false, "status": "ok"}`))
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL).SavedPosts(context.Background(), "cursor-2")
	require.NoError(t, err)
	assert.Empty(t, page.Posts)
	assert.Empty(t, page.NextCursor, "no cursor may be produced once the feed is exhausted")
}

func TestSavedPostsLoginRequired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "fail", "message": "login_required"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).SavedPosts(context.Background(), "")
	assert.ErrorIs(t, err, instagram.ErrSessionExpired)
}

func TestSavedPostsUnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).SavedPosts(context.Background(), "")
	assert.ErrorIs(t, err, instagram.ErrSessionExpired)
}

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/accounts/current_user/", r.URL.Path)
		_, _ = w.Write([]byte(`{"user": {"username": "tester"}, "status": "ok"}`))
	}))
	defer srv.Close()

	username, err := newTestClient(t, srv.URL).Verify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tester", username)
}
