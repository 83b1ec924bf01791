package igapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/orgball2608/insta-saver/internal/domain"
)

const (
	mediaTypeImage    = 1
	mediaTypeVideo    = 2
	mediaTypeCarousel = 8
)

func (c *APIClient) Verify(ctx context.Context) (string, error) {
	var resp currentUserResponse
	if err := c.get(ctx, c.baseURL+"/accounts/current_user/?edit=true", &resp); err != nil {
		return "", err
	}
	if err := statusError(resp.Status, resp.Message); err != nil {
		return "", err
	}
	return resp.User.Username, nil
}

func (c *APIClient) SavedPosts(ctx context.Context, cursor string) (*domain.SavedPage, error) {
	q := url.Values{}
	q.Set("count", fmt.Sprintf("%d", c.config.Instagram.PageSize))
	if cursor != "" {
		q.Set("max_id", cursor)
	}

	var resp savedFeedResponse
	if err := c.get(ctx, c.baseURL+"/feed/saved/posts/?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if err := statusError(resp.Status, resp.Message); err != nil {
		return nil, err
	}

	page := &domain.SavedPage{}
	for _, it := range resp.Items {
		post := mapPost(it.Media)
		if len(post.Items) == 0 {
			c.logger.Warn("Saved post has no downloadable media, skipping", "url", post.URL)
			continue
		}
		page.Posts = append(page.Posts, post)
	}
	if resp.MoreAvailable {
		page.NextCursor = resp.NextMaxID
	}
	return page, nil
}

func mapPost(m mediaInfo) domain.Post {
	post := domain.Post{
		URL:     fmt.Sprintf("https://www.instagram.com/p/%s/", m.Code),
		TakenAt: time.Unix(m.TakenAt, 0).UTC(),
	}
	if m.Caption != nil {
		post.Caption = m.Caption.Text
	}

	if m.MediaType == mediaTypeCarousel {
		for i, child := range m.CarouselMedia {
			if item, ok := mapItem(child, i); ok {
				post.Items = append(post.Items, item)
			}
		}
		return post
	}

	if item, ok := mapItem(m, 0); ok {
		post.Items = append(post.Items, item)
	}
	return post
}

func mapItem(m mediaInfo, index int) (domain.MediaItem, bool) {
	item := domain.MediaItem{
		MediaID: m.Pk.String(),
		Index:   index,
	}

	if m.MediaType == mediaTypeVideo && len(m.VideoVersions) > 0 {
		item.SourceURL = m.VideoVersions[0].URL
		item.ContentType = "video/mp4"
		return item, true
	}
	if m.ImageVersions != nil && len(m.ImageVersions.Candidates) > 0 {
		item.SourceURL = m.ImageVersions.Candidates[0].URL
		item.ContentType = "image/jpeg"
		return item, true
	}
	return item, false
}
