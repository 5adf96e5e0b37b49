package tikapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public TikAPI endpoint.
	DefaultBaseURL = "https://api.tikapi.io"

	searchPath    = "/user/live/search"
	recommendPath = "/user/live/recommend"

	userAgent = "livescan/1.0"

	// maxBodyBytes bounds how much of a response body is read.
	maxBodyBytes = 8 << 20
)

// Client issues authenticated live search and recommendation calls.
type Client struct {
	baseURL    string
	apiKey     string
	accountKey string
	client     *http.Client
}

// NewClient creates a TikAPI client. An empty baseURL uses DefaultBaseURL and
// a non-positive timeout defaults to 30 seconds.
func NewClient(baseURL, apiKey, accountKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		accountKey: accountKey,
		client:     &http.Client{Timeout: timeout},
	}
}

// Search runs a live search for query and returns the raw response body.
func (c *Client) Search(ctx context.Context, query string) ([]byte, error) {
	req := SearchRequest{Query: strings.TrimSpace(query)}
	if err := c.validate(req); err != nil {
		return nil, err
	}
	return c.get(ctx, searchPath, url.Values{"query": {req.Query}})
}

// Recommend fetches live sessions recommended from roomID and returns the raw
// response body.
func (c *Client) Recommend(ctx context.Context, roomID string) ([]byte, error) {
	req := RecommendRequest{RoomID: strings.TrimSpace(roomID)}
	if err := c.validate(req); err != nil {
		return nil, err
	}
	return c.get(ctx, recommendPath, url.Values{"room_id": {req.RoomID}})
}

func (c *Client) validate(req any) error {
	if err := validateRequest(credentials{APIKey: c.apiKey, AccountKey: c.accountKey}); err != nil {
		return err
	}
	return validateRequest(req)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("X-ACCOUNT-KEY", c.accountKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tikapi request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
