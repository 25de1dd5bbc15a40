// Package enrich fills in prices and ticket links for merged listings by
// reading venue detail pages.
package enrich

import (
	"context"
	"encoding/json"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/source"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency = 5
	DefaultTimeout     = 10 * time.Second

	// CheapCents is the inclusive ceiling for the "cheap" tag
	CheapCents = 2000
)

// DetailHosts are the sites whose detail pages carry ticketing data
var DetailHosts = []string{"kaufmanmusiccenter.org", "msmnyc.edu"}

var (
	dollarAmount   = regexp.MustCompile(`\$(\d+)`)
	freeIndicators = []string{"free admission", "free, no tickets", "free event"}
)

// Details is what a detail page revealed
type Details struct {
	Price      string
	PriceCents *int
	TicketURL  string
}

// Enricher reads detail pages with bounded concurrency
type Enricher struct {
	client      *source.Client
	concurrency int
	timeout     time.Duration
	hosts       []string
}

// New creates an Enricher. Zero values take defaults.
func New(client *source.Client, concurrency int, timeout time.Duration) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = source.NewClient(timeout)
	}
	return &Enricher{client: client, concurrency: concurrency, timeout: timeout, hosts: DetailHosts}
}

// NeedsEnrichment reports whether c links to a supported detail page and is
// missing a price or ticket link
func (e *Enricher) NeedsEnrichment(c *event.Canonical) bool {
	if c.SourceURL == "" || !onHost(c.SourceURL, e.hosts) {
		return false
	}
	return c.Price == event.PricePlaceholder || c.TicketURL == ""
}

func onHost(raw string, hosts []string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// Enrich updates records in place and returns how many changed. Detail
// page failures only skip the affected record.
func (e *Enricher) Enrich(ctx context.Context, records []*event.Canonical) int {
	var candidates []int
	for i, c := range records {
		if e.NeedsEnrichment(c) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	logger.Info("Enriching concerts from detail pages", logger.Fields{"candidates": len(candidates)})

	found := make([]*Details, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for n, i := range candidates {
		n, c := n, records[i]
		g.Go(func() error {
			found[n] = e.fetch(gctx, c)
			return nil
		})
	}
	g.Wait() // nolint:errcheck

	enriched := 0
	for n, i := range candidates {
		if found[n] != nil && Apply(records[i], found[n]) {
			enriched++
		}
	}
	return enriched
}

func (e *Enricher) fetch(ctx context.Context, c *event.Canonical) *Details {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	doc, err := e.client.Document(ctx, c.SourceURL)
	if err != nil {
		logger.Debug("Detail page unavailable", logger.Fields{
			"title": c.Title,
			"url":   c.SourceURL,
			"error": err.Error(),
		})
		return nil
	}
	return ParseDetails(doc)
}

// ParseDetails reads a ticket link and a price from a detail page.
// It returns nil when the page has neither.
func ParseDetails(doc *goquery.Document) *Details {
	d := &Details{}

	if href, ok := doc.Find(`a[href*="tickets.kaufmanmusiccenter.org"]`).First().Attr("href"); ok {
		d.TicketURL = strings.TrimSpace(href)
	}

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		offer := firstOffer(s.Text())
		if offer == nil {
			return true
		}
		if price, ok := offer["price"]; ok && price != nil {
			text := priceText(price)
			d.Price = "$" + text
			d.PriceCents = parseCents(text)
		}
		if d.TicketURL == "" {
			if u, ok := offer["url"].(string); ok {
				d.TicketURL = strings.TrimSpace(u)
			}
		}
		return d.Price == ""
	})

	if d.Price == "" {
		doc.Find(".ticket-bar span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := strings.TrimSpace(s.Text())
			if !strings.Contains(text, "$") {
				return true
			}
			if m := dollarAmount.FindStringSubmatch(text); m != nil {
				dollars, _ := strconv.Atoi(m[1])
				cents := dollars * 100
				d.Price = text
				d.PriceCents = &cents
			}
			return false
		})
	}

	if d.Price == "" {
		body := strings.ToLower(doc.Find("body").Text())
		for _, indicator := range freeIndicators {
			if strings.Contains(body, indicator) {
				free := 0
				d.Price = "Free"
				d.PriceCents = &free
				break
			}
		}
	}

	if d.Price == "" && d.TicketURL == "" {
		return nil
	}
	return d
}

// firstOffer returns the first offer object of a JSON-LD document. The
// document may be an object or an array of objects; offers may be an object
// or an array.
func firstOffer(raw string) map[string]interface{} {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data interface{}
	if err := dec.Decode(&data); err != nil {
		return nil
	}

	if list, ok := data.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		data = list[0]
	}
	obj, ok := data.(map[string]interface{})
	if !ok {
		return nil
	}

	offers := obj["offers"]
	if list, ok := offers.([]interface{}); ok {
		if len(list) == 0 {
			return nil
		}
		offers = list[0]
	}
	offer, _ := offers.(map[string]interface{})
	return offer
}

func priceText(v interface{}) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case json.Number:
		return p.String()
	default:
		b, _ := json.Marshal(p)
		return string(b)
	}
}

// parseCents reads the first amount of a price such as "40/30"
func parseCents(text string) *int {
	first := strings.TrimSpace(strings.Split(text, "/")[0])
	first = strings.TrimPrefix(first, "$")
	dollars, err := strconv.ParseFloat(first, 64)
	if err != nil || math.IsNaN(dollars) || math.IsInf(dollars, 0) {
		return nil
	}
	cents := int(math.Round(dollars * 100))
	return &cents
}

// Apply merges d into c. Price is only filled when c shows the placeholder
// and a ticket link only when c has none. It reports whether c changed.
func Apply(c *event.Canonical, d *Details) bool {
	changed := false

	if d.Price != "" && c.Price == event.PricePlaceholder {
		c.Price = d.Price
		c.PriceCents = d.PriceCents
		switch {
		case d.PriceCents == nil:
		case *d.PriceCents == 0:
			c.AddTag("free")
		case *d.PriceCents <= CheapCents:
			c.AddTag("cheap")
		}
		changed = true
	}

	if d.TicketURL != "" && c.TicketURL == "" {
		c.TicketURL = d.TicketURL
		changed = true
	}

	return changed
}
