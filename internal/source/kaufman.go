package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	KaufmanName = "Kaufman Music Center / Merkin Hall"
	KaufmanURL  = "https://www.kaufmanmusiccenter.org/mch/calendar/"

	kaufmanMonths = 2
)

// Kaufman reads the Merkin Hall calendar grid for the current and next month
type Kaufman struct {
	client *Client
	url    string
	now    func() time.Time
}

// NewKaufman creates the Kaufman Music Center source
func NewKaufman(client *Client, now func() time.Time) *Kaufman {
	if now == nil {
		now = time.Now
	}
	return &Kaufman{client: client, url: KaufmanURL, now: now}
}

func (k *Kaufman) Name() string { return KaufmanName }
func (k *Kaufman) URL() string  { return KaufmanURL }

func (k *Kaufman) monthURL(offset int, month time.Time) string {
	if offset == 0 {
		return k.url
	}
	return fmt.Sprintf("%s?y=%d&m=%d", k.url, month.Year(), int(month.Month()))
}

// Fetch renders one "Month Day, time: title" line per calendar entry.
// The calendar repeats entries across months, so entries are deduplicated
// by link.
func (k *Kaufman) Fetch(ctx context.Context) (string, error) {
	set := &pageSet{source: KaufmanName}
	seen := make(map[string]bool)

	for offset := 0; offset < kaufmanMonths; offset++ {
		month := monthStart(k.now(), offset)
		pageURL := k.monthURL(offset, month)

		doc, err := k.client.Document(ctx, pageURL)
		if err != nil {
			set.fail(pageURL, err)
			continue
		}

		entries := parseKaufman(doc, month, pageURL, seen)
		if len(entries) == 0 {
			set.add("")
			continue
		}
		set.add(fmt.Sprintf("--- %s ---\n%s", month.Format("January 2006"), strings.Join(entries, "\n\n")))
	}

	return set.result()
}

func parseKaufman(doc *goquery.Document, month time.Time, pageURL string, seen map[string]bool) []string {
	var entries []string
	doc.Find("div.day.entries").Each(func(_ int, day *goquery.Selection) {
		dayNum := strings.TrimSpace(day.Find(".date").First().Text())

		day.Find("a.entry").Each(func(_ int, entry *goquery.Selection) {
			href, _ := entry.Attr("href")
			href = absURL(pageURL, href)
			if href != "" {
				if seen[href] {
					return
				}
				seen[href] = true
			}

			title := strings.TrimSpace(entry.Find("span").First().Text())
			if title == "" {
				return
			}
			at := strings.TrimSpace(entry.Find("strong").First().Text())

			entries = append(entries, lines(
				fmt.Sprintf("%s %s, %d, %s: %s", month.Format("January"), dayNum, month.Year(), at, title),
				field("URL", href),
			))
		})
	})
	return entries
}
