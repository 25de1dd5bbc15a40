package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	UserAgent = "Mozilla/5.0 (compatible; concert-events/1.0; +https://github.com/pfrederiksen/concert-events)"
	Timeout   = 15 * time.Second

	// MaxContentLength caps the page content sent to the extraction service
	MaxContentLength = 30000
)

// Client performs HTTP requests on behalf of sources
type Client struct {
	http *http.Client
}

// NewClient creates a client with the given per-request timeout.
// A zero timeout uses the default.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = Timeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// get performs a GET request and checks for a 200 response.
// The caller must close the body.
func (c *Client) get(ctx context.Context, url string, header http.Header) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() // nolint:errcheck
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

// Document fetches url and parses it as HTML
func (c *Client) Document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.get(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close() // nolint:errcheck

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return doc, nil
}

// JSON fetches url and decodes the response body into v
func (c *Client) JSON(ctx context.Context, url string, header http.Header, v interface{}) error {
	body, err := c.get(ctx, url, header)
	if err != nil {
		return err
	}
	defer body.Close() // nolint:errcheck

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
