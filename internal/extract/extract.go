package extract

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/logger"
)

const (
	DefaultURL       = "https://api.anthropic.com/v1/messages"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 16384
	DefaultTimeout   = 120 * time.Second

	apiVersion = "2023-06-01"
)

// ErrNotArray is returned when the service answers with valid JSON that is
// not a list of listings
var ErrNotArray = errors.New("extraction result is not a JSON array")

// ErrNoAPIKey is returned by New when no key is configured
var ErrNoAPIKey = errors.New("extraction API key is not set")

//go:embed prompt.txt
var promptTemplate string

// Extractor turns page content into records
type Extractor interface {
	Extract(ctx context.Context, content, sourceName, sourceURL string) ([]*event.Record, error)
}

// Options configures a Client
type Options struct {
	URL       string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// Now supplies the date written into the prompt
	Now func() time.Time
}

// Client calls a messages-style completion API
type Client struct {
	http      *http.Client
	url       string
	apiKey    string
	model     string
	maxTokens int
	now       func() time.Time
}

// New creates an extraction client. Zero options take defaults.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Client{
		http:      &http.Client{Timeout: opts.Timeout},
		url:       opts.URL,
		apiKey:    opts.APIKey,
		model:     opts.Model,
		maxTokens: opts.MaxTokens,
		now:       opts.Now,
	}, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BuildPrompt fills the extraction prompt
func BuildPrompt(today time.Time, content, sourceName, sourceURL string) string {
	return strings.NewReplacer(
		"{{today}}", today.Format("2006-01-02"),
		"{{tags}}", quoteList(event.ValidTags),
		"{{source_name}}", sourceName,
		"{{source_url}}", sourceURL,
		"{{content}}", content,
	).Replace(promptTemplate)
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}

// Extract sends content to the service and parses its answer
func (c *Client) Extract(ctx context.Context, content, sourceName, sourceURL string) ([]*event.Record, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []message{
			{Role: "user", Content: BuildPrompt(c.now(), content, sourceName, sourceURL)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extraction service: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	var text strings.Builder
	for _, block := range decoded.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if decoded.StopReason == "max_tokens" {
		logger.Warn("Extraction response truncated", logger.Fields{"source": sourceName})
	}

	return Parse(text.String(), sourceName)
}

// Parse converts the service's text answer into records. Items that fail
// validation are dropped with a warning.
func Parse(text, sourceName string) ([]*event.Record, error) {
	value, err := decodeStrictJSON([]byte(StripCodeFence(text)))
	if err != nil {
		return nil, fmt.Errorf("parsing extraction result: %w", err)
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, ErrNotArray
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	records := make([]*event.Record, 0, len(items))
	for i, item := range items {
		rec, err := convert(schema.Validate, item, sourceName)
		if err != nil {
			logger.Warn("Skipping extracted item", logger.Fields{
				"source": sourceName,
				"index":  i,
				"error":  err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// StripCodeFence removes a surrounding Markdown code fence, if any
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop a language tag such as ```json
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], "[{") {
		text = text[nl+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// item is one listing as the service returns it
type item struct {
	Title      *string          `json:"title"`
	Date       event.Date       `json:"date"`
	Venue      *string          `json:"venue"`
	Address    *string          `json:"address"`
	Price      *string          `json:"price"`
	PriceCents *int             `json:"price_cents"`
	Program    *string          `json:"program"`
	Performers event.Performers `json:"performers"`
	SourceURL  *string          `json:"source_url"`
	TicketURL  *string          `json:"ticket_url"`
	Tags       []string         `json:"tags"`
}

func convert(validate func(interface{}) error, value interface{}, sourceName string) (*event.Record, error) {
	if err := validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize item JSON: %w", err)
	}
	var it item
	if err := json.Unmarshal(normalized, &it); err != nil {
		return nil, fmt.Errorf("unmarshal item: %w", err)
	}

	title := str(it.Title)
	if title == "" {
		return nil, errors.New("missing title")
	}
	if it.Date.IsZero() {
		return nil, fmt.Errorf("missing date for %q", title)
	}

	rec := &event.Record{
		Title:      title,
		Date:       it.Date,
		Venue:      str(it.Venue),
		Address:    str(it.Address),
		Price:      str(it.Price),
		PriceCents: it.PriceCents,
		Program:    str(it.Program),
		Performers: it.Performers,
		SourceURL:  str(it.SourceURL),
		TicketURL:  str(it.TicketURL),
		Tags:       validTags(it.Tags),
	}
	if rec.Venue == "" {
		rec.Venue = sourceName
	}
	if rec.Price == "" {
		rec.Price = event.PricePlaceholder
	}
	return rec, nil
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// validTags lowercases tags and drops those outside the vocabulary
func validTags(tags []string) []string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if event.IsValidTag(tag) {
			kept = append(kept, tag)
		}
	}
	return event.UnionTags(kept)
}
