package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/logger"
)

const (
	JuilliardName    = "Juilliard"
	JuilliardURL     = "https://www.juilliard.edu/calendar"
	JuilliardVenue   = "Juilliard School"
	JuilliardAddress = "60 Lincoln Center Plaza, New York, NY 10023"

	// DefaultJuilcalURL is the Supabase project backing juilcal
	DefaultJuilcalURL = "https://zdwmhgrlcofyznavuvvm.supabase.co"

	juilcalLimit = 200
)

// ErrMissingAPIKey is returned when the juilcal key is not configured
var ErrMissingAPIKey = errors.New("JUILCAL_API_KEY is not set")

// juilcalEvent is one row of the juilcal Events table
type juilcalEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	DateTime string `json:"dateTime"`
	Venue    string `json:"venue"`
	Link     string `json:"link"`
	Tags     string `json:"tags"` // comma-separated
}

// tagRules maps juilcal tag keywords onto the shared vocabulary
var tagRules = []struct {
	keywords []string
	tag      string
}{
	{[]string{"free"}, "free"},
	{[]string{"orchestra"}, "orchestral"},
	{[]string{"chamber", "jazz"}, "chamber"},
	{[]string{"recital"}, "solo"},
	{[]string{"opera", "voice"}, "opera"},
	{[]string{"dance"}, "family"},
	{[]string{"organ"}, "organ"},
	{[]string{"choral", "chorus"}, "choral"},
	{[]string{"new music", "composition"}, "new-music"},
	{[]string{"student"}, "student"},
}

// Juilliard reads Juilliard performances from the juilcal REST API
type Juilliard struct {
	client  *Client
	baseURL string
	apiKey  string
	now     func() time.Time
}

// NewJuilliard creates the Juilliard source. An empty baseURL uses the
// public juilcal project.
func NewJuilliard(client *Client, baseURL, apiKey string, now func() time.Time) *Juilliard {
	if baseURL == "" {
		baseURL = DefaultJuilcalURL
	}
	if now == nil {
		now = time.Now
	}
	return &Juilliard{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		now:     now,
	}
}

func (j *Juilliard) Name() string { return JuilliardName }
func (j *Juilliard) URL() string  { return JuilliardURL }

// Extract returns upcoming Juilliard events
func (j *Juilliard) Extract(ctx context.Context) ([]*event.Record, error) {
	if j.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("dateTime", "gte."+j.now().UTC().Format("2006-01-02T15:04:05.000Z"))
	query.Set("order", "dateTime.asc")
	query.Set("limit", fmt.Sprintf("%d", juilcalLimit))
	endpoint := j.baseURL + "/rest/v1/Events?" + query.Encode()

	header := http.Header{}
	header.Set("apikey", j.apiKey)
	header.Set("Authorization", "Bearer "+j.apiKey)

	var rows []juilcalEvent
	if err := j.client.JSON(ctx, endpoint, header, &rows); err != nil {
		return nil, fmt.Errorf("juilcal API: %w", err)
	}

	records := make([]*event.Record, 0, len(rows))
	for _, row := range rows {
		r, err := row.record()
		if err != nil {
			logger.Warn("Skipping juilcal event", logger.Fields{
				"id":    row.ID,
				"title": row.Title,
				"error": err.Error(),
			})
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (e juilcalEvent) record() (*event.Record, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, errors.New("missing title")
	}

	// juilcal stores Eastern wall-clock times with a UTC marker
	dateText := strings.TrimSuffix(strings.TrimSuffix(e.DateTime, "Z"), "+00:00")
	date, err := event.ParseDate(dateText)
	if err != nil {
		return nil, err
	}

	venue := strings.TrimSpace(e.Venue)
	if venue == "" {
		venue = JuilliardVenue
	}

	r := &event.Record{
		Title:     strings.TrimSpace(e.Title),
		Date:      date,
		Venue:     venue,
		Address:   JuilliardAddress,
		Price:     event.PricePlaceholder,
		SourceURL: e.Link,
		Tags:      mapJuilcalTags(e.Tags),
	}
	if strings.Contains(strings.ToLower(e.Tags), "free") {
		free := 0
		r.Price = "Free"
		r.PriceCents = &free
	}
	return r, nil
}

// mapJuilcalTags translates comma-separated juilcal tags by keyword
func mapJuilcalTags(raw string) []string {
	raw = strings.ToLower(raw)
	tags := make([]string, 0)
	for _, rule := range tagRules {
		for _, kw := range rule.keywords {
			if strings.Contains(raw, kw) {
				tags = event.UnionTags(tags, []string{rule.tag})
				break
			}
		}
	}
	return tags
}
