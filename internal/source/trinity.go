package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/concert-events/internal/logger"
)

const (
	TrinityName = "Trinity Church NYC"
	TrinityURL  = "https://trinitychurchnyc.org/events-search?event_type%5BMusic%5D=Music"

	// trinityPages bounds pagination; pages hold twelve events each
	trinityPages = 3
)

const trinityNoise = "script, style, link, meta, nav, footer, header, iframe, noscript, img, svg, .view__filters-bar"

// Trinity reads music events from the Trinity Church search listing.
// All Trinity concerts are free.
type Trinity struct {
	client *Client
	url    string
}

// NewTrinity creates the Trinity Church source
func NewTrinity(client *Client) *Trinity {
	return &Trinity{client: client, url: TrinityURL}
}

func (t *Trinity) Name() string { return TrinityName }
func (t *Trinity) URL() string  { return TrinityURL }

func (t *Trinity) pageURL(page int) string {
	if page == 0 {
		return t.url
	}
	sep := "?"
	if strings.Contains(t.url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%spage=%d", t.url, sep, page)
}

// Fetch walks the listing pages until one comes back empty
func (t *Trinity) Fetch(ctx context.Context) (string, error) {
	var events []string

	for page := 0; page < trinityPages; page++ {
		pageURL := t.pageURL(page)
		doc, err := t.client.Document(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return "", err
			}
			logger.Warn("Page fetch failed", logger.Fields{
				"source": TrinityName,
				"page":   pageURL,
				"error":  err.Error(),
			})
			break
		}

		found := parseTrinity(doc, pageURL)
		if len(found) == 0 {
			break
		}
		events = append(events, found...)
	}

	return truncate(strings.Join(events, "\n\n"), MaxContentLength), nil
}

// parseTrinity renders each event teaser as a labelled text block
func parseTrinity(doc *goquery.Document, pageURL string) []string {
	doc.Find(trinityNoise).Remove()

	var events []string
	doc.Find(".l-content-list").Each(func(_ int, group *goquery.Selection) {
		day := strings.TrimSpace(group.Find(".l-content-list__title").Text())

		group.Find("article.teaser-event-listing").Each(func(_ int, article *goquery.Selection) {
			link := article.Find(".teaser-event-listing__title a").First()
			title := strings.TrimSpace(link.Text())
			if title == "" {
				return
			}
			href, _ := link.Attr("href")

			location := strings.TrimSpace(article.Find(".teaser-event-listing__location").Text())
			if location == "" {
				location = strings.TrimSpace(article.Find(".add-to-calendar .location").Text())
			}

			var tags []string
			article.Find(".teaser-event-listing__tag li a").Each(func(_ int, tag *goquery.Selection) {
				if text := strings.TrimSpace(tag.Text()); text != "" {
					tags = append(tags, text)
				}
			})

			events = append(events, lines(
				field("Event", title),
				field("Date", day),
				field("Time", strings.TrimSpace(article.Find(".teaser-event-listing__time").Text())),
				field("Location", location),
				field("URL", absURL(pageURL, href)),
				field("Description", strings.TrimSpace(article.Find(".teaser-event-listing__summary").Text())),
				field("Tags", strings.Join(tags, ", ")),
				field("Calendar Start", strings.TrimSpace(article.Find(".add-to-calendar .start").Text())),
				"Price: Free",
			))
		})
	})
	return events
}
