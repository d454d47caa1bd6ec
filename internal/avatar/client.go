package avatar

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/resume-export/internal/fetch"
	"github.com/jonathan/resume-export/internal/schemas"
)

// DefaultAPIBase is the public GitHub REST endpoint.
const DefaultAPIBase = "https://api.github.com"

//go:embed profile.schema.json
var profileSchema string

// Profile is the part of a user object the build cares about.
type Profile struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Client looks up profiles and downloads avatars. Each request is bounded
// by the timeout in Options.
type Client struct {
	BaseURL string
	Options *fetch.Options
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIBase
	}
	opts := fetch.DefaultOptions()
	if timeout > 0 {
		opts.Timeout = timeout
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Options: opts,
	}
}

// LookupProfile queries the user endpoint for handle.
func (c *Client) LookupProfile(ctx context.Context, handle string) (*Profile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, &LookupError{Handle: handle, Message: "handle is empty"}
	}

	profileURL := c.BaseURL + "/users/" + url.PathEscape(handle)

	opts := *c.Options
	opts.Headers = map[string]string{"Accept": "application/vnd.github+json"}
	for k, v := range c.Options.Headers {
		opts.Headers[k] = v
	}

	result, err := fetch.URL(ctx, profileURL, &opts)
	if err != nil {
		return nil, &LookupError{Handle: handle, Message: "profile request failed", Cause: err}
	}

	if err := schemas.ValidateJSONBytes(profileSchema, result.Body); err != nil {
		return nil, &LookupError{Handle: handle, Message: "unexpected profile response", Cause: err}
	}

	var profile Profile
	if err := json.Unmarshal(result.Body, &profile); err != nil {
		return nil, &LookupError{Handle: handle, Message: "failed to decode profile", Cause: err}
	}

	return &profile, nil
}

// FetchAvatar looks up handle and downloads the avatar image it points to.
func (c *Client) FetchAvatar(ctx context.Context, handle string) ([]byte, error) {
	profile, err := c.LookupProfile(ctx, handle)
	if err != nil {
		return nil, err
	}

	result, err := fetch.URL(ctx, profile.AvatarURL, c.Options)
	if err != nil {
		return nil, &LookupError{Handle: handle, Message: "avatar download failed", Cause: err}
	}
	if len(result.Body) == 0 {
		return nil, &LookupError{Handle: handle, Message: "avatar image is empty"}
	}

	return result.Body, nil
}
