// Package cover fetches book cover images from the Open Library API.
package cover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Status describes the outcome of a cover lookup. Unreachable means the
// upstream could not be consulted and is distinct from a book that simply
// has no cover on record.
type Status int

const (
	StatusNotFound Status = iota
	StatusFound
	StatusUnreachable
)

// Result is a tagged lookup outcome. URL is set only when Status is StatusFound.
type Result struct {
	Status Status
	URL    string
}

// Client queries Open Library with client-side rate limiting.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, userAgent string, requestsPerSecond int, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
	}
}

type bookData struct {
	Cover struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	} `json:"cover"`
}

// Fetch looks up the medium-size cover URL for an ISBN.
func (c *Client) Fetch(ctx context.Context, isbn string) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{Status: StatusUnreachable}
	}

	bibkey := "ISBN:" + isbn
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=%s&format=json&jscmd=data",
		c.baseURL, url.QueryEscape(bibkey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{Status: StatusUnreachable}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("isbn", isbn).Msg("Cover lookup failed")
		return Result{Status: StatusUnreachable}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Str("isbn", isbn).Msg("Cover lookup returned error status")
		return Result{Status: StatusUnreachable}
	}

	var payload map[string]bookData
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&payload); err != nil {
		return Result{Status: StatusUnreachable}
	}

	data, ok := payload[bibkey]
	if !ok || data.Cover.Medium == "" {
		return Result{Status: StatusNotFound}
	}
	return Result{Status: StatusFound, URL: data.Cover.Medium}
}

// Download retrieves the image bytes behind a cover URL, returning the
// content type reported by the server.
func (c *Client) Download(ctx context.Context, coverURL string) ([]byte, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("cover download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("cover download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, "", fmt.Errorf("cover download read failed: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}
