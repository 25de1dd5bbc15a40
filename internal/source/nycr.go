package source

import (
	"context"
	"fmt"
	"strings"
)

const (
	NYCRName = "New York Classical Review"
	NYCRURL  = "https://newyorkclassicalreview.com/category/calendar/"
)

// nycrNoise is page chrome stripped before extraction
const nycrNoise = "script, style, link, meta, nav, footer, #col-right, #ad-col, #header, " +
	"#navigation-box, #footer, .sidebar, .ad, iframe, noscript, img"

// NYCR reads the New York Classical Review calendar, a single page of
// posts grouped under date headers.
type NYCR struct {
	client *Client
	url    string
}

// NewNYCR creates the New York Classical Review source
func NewNYCR(client *Client) *NYCR {
	return &NYCR{client: client, url: NYCRURL}
}

func (n *NYCR) Name() string { return NYCRName }
func (n *NYCR) URL() string  { return NYCRURL }

// Fetch returns the calendar's main column as HTML
func (n *NYCR) Fetch(ctx context.Context) (string, error) {
	doc, err := n.client.Document(ctx, n.url)
	if err != nil {
		return "", err
	}

	doc.Find(nycrNoise).Remove()

	main := doc.Find("#col-main")
	if main.Length() == 0 {
		return truncate(strings.TrimSpace(doc.Find("body").Text()), MaxContentLength), nil
	}

	html, err := main.Html()
	if err != nil {
		return "", fmt.Errorf("rendering main column: %w", err)
	}
	return truncate(strings.TrimSpace(html), MaxContentLength), nil
}
