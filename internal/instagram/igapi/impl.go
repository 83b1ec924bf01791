// Package igapi implements instagram.Client against the private web API,
// authenticating with the session cookie handed in via configuration.
package igapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/orgball2608/insta-saver/internal/instagram"
	"github.com/orgball2608/insta-saver/pkg/config"
	"github.com/orgball2608/insta-saver/pkg/logger"
	"go.uber.org/fx"
)

// App id the web client sends; requests without it get HTML instead of JSON.
const webAppID = "936619743392459"

const defaultBaseURL = "https://www.instagram.com/api/v1"

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

type APIClient struct {
	http    *http.Client
	config  *config.Config
	logger  logger.Logger
	baseURL string
}

func New(opts Opts) *APIClient {
	return &APIClient{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		config:  opts.Config,
		logger:  opts.Logger.WithComponent("Instagram"),
		baseURL: defaultBaseURL,
	}
}

var _ instagram.Client = (*APIClient)(nil)

func (c *APIClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.config.Instagram.UserAgent)
	req.Header.Set("X-IG-App-ID", webAppID)
	req.Header.Set("Accept", "application/json")
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: c.config.Instagram.SessionID})

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return instagram.ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("instagram responded with status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// statusError converts an application-level error payload into a Go error.
// The API reports expired sessions with status 200 and "login_required".
func statusError(status, message string) error {
	if status == "ok" {
		return nil
	}
	if message == "login_required" {
		return instagram.ErrSessionExpired
	}
	return fmt.Errorf("instagram api error: %s", message)
}
