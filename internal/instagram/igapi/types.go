package igapi

import "encoding/json"

// Wire types for the private web API. Only the fields we consume.

type savedFeedResponse struct {
	Items         []savedFeedItem `json:"items"`
	MoreAvailable bool            `json:"more_available"`
	NextMaxID     string          `json:"next_max_id"`
	Status        string          `json:"status"`
	Message       string          `json:"message"`
}

type savedFeedItem struct {
	Media mediaInfo `json:"media"`
}

type mediaInfo struct {
	Pk            json.Number    `json:"pk"`
	Code          string         `json:"code"`
	TakenAt       int64          `json:"taken_at"`
	MediaType     int            `json:"media_type"`
	Caption       *captionInfo   `json:"caption"`
	ImageVersions *imageVersions `json:"image_versions2"`
	VideoVersions []videoVersion `json:"video_versions"`
	CarouselMedia []mediaInfo    `json:"carousel_media"`
}

type captionInfo struct {
	Text string `json:"text"`
}

type imageVersions struct {
	Candidates []imageCandidate `json:"candidates"`
}

type imageCandidate struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type videoVersion struct {
	URL string `json:"url"`
}

type currentUserResponse struct {
	User struct {
		Username string `json:"username"`
	} `json:"user"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
