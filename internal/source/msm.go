package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	MSMName = "Manhattan School of Music"
	MSMURL  = "https://www.msmnyc.edu/performances/"

	msmMonths      = 4
	msmTitleLength = 200
)

// MSM reads Manhattan School of Music performances, mostly free student
// recitals, four months ahead.
type MSM struct {
	client *Client
	url    string
	now    func() time.Time
}

// NewMSM creates the Manhattan School of Music source
func NewMSM(client *Client, now func() time.Time) *MSM {
	if now == nil {
		now = time.Now
	}
	return &MSM{client: client, url: MSMURL, now: now}
}

func (m *MSM) Name() string { return MSMName }
func (m *MSM) URL() string  { return MSMURL }

// Fetch renders one labelled block per performance, month by month
func (m *MSM) Fetch(ctx context.Context) (string, error) {
	set := &pageSet{source: MSMName}

	for offset := 0; offset < msmMonths; offset++ {
		month := monthStart(m.now(), offset)
		pageURL := fmt.Sprintf("%s?date=%s", m.url, month.Format("Jan-2006"))

		doc, err := m.client.Document(ctx, pageURL)
		if err != nil {
			set.fail(pageURL, err)
			continue
		}

		events := parseMSM(doc, pageURL)
		if len(events) == 0 {
			set.add("")
			continue
		}
		set.add(fmt.Sprintf("--- %s ---\n%s", month.Format("Jan 2006"), strings.Join(events, "\n\n")))
	}

	return set.result()
}

func msmBlock(title, when, href string) string {
	return lines(
		field("Event", title),
		field("Date/Time", when),
		field("URL", href),
		"Price: Free",
	)
}

// parseMSM reads listing items, falling back to bare <time> elements when
// the listing markup is not recognized
func parseMSM(doc *goquery.Document, pageURL string) []string {
	var events []string
	seen := make(map[string]bool)
	push := func(block string) {
		if !seen[block] {
			seen[block] = true
			events = append(events, block)
		}
	}

	doc.Find("article, .performance-item, .event-item, li").Each(func(_ int, item *goquery.Selection) {
		if item.HasClass("inactive") {
			return
		}
		when := strings.TrimSpace(item.Find("time").First().Text())
		link := item.Find("h2 a, h3 a, .title a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" || when == "" {
			return
		}
		href, _ := link.Attr("href")
		push(msmBlock(title, when, absURL(pageURL, href)))
	})

	if len(events) > 0 {
		return events
	}

	doc.Find("time").Each(func(_ int, t *goquery.Selection) {
		when := strings.TrimSpace(t.Text())
		parent := t.Closest("a, li, article, div")
		if parent.HasClass("inactive") {
			return
		}

		var title string
		if heading := parent.Find("h2, h3, .title").First(); heading.Length() > 0 {
			title = strings.TrimSpace(heading.Text())
		} else {
			title = firstLine(parent.Text())
		}
		if title == "" || when == "" {
			return
		}

		href, ok := parent.Find("a").First().Attr("href")
		if !ok {
			href, _ = parent.Closest("a").Attr("href")
		}
		push(msmBlock(truncate(title, msmTitleLength), when, absURL(pageURL, href)))
	})
	return events
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
