package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
)

const (
	telegramAPIBaseURL = "https://api.telegram.org/bot"
	telegramTimeout    = 10 * time.Second
)

// TelegramNotifier sends listings to a Telegram chat through the Bot API
type TelegramNotifier struct {
	botToken   string
	chatID     string
	baseURL    string
	interval   time.Duration
	httpClient *http.Client
}

// NewTelegramNotifier creates a Telegram notifier
func NewTelegramNotifier(botToken, chatID string) (*TelegramNotifier, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required")
	}

	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  telegramAPIBaseURL,
		interval: Interval,
		httpClient: &http.Client{
			Timeout: telegramTimeout,
		},
	}, nil
}

func (n *TelegramNotifier) Name() string { return "telegram" }

// Notify sends one message per listing
func (n *TelegramNotifier) Notify(ctx context.Context, concerts []*event.Canonical) error {
	for i, c := range concerts {
		if err := n.SendMessage(ctx, FormatMessage(c)); err != nil {
			return postError("telegram message", c, err)
		}
		if i < len(concerts)-1 {
			if err := wait(ctx, n.interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// SendMessage sends an HTML text message to the configured chat
func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	payload := map[string]interface{}{
		"chat_id":                  n.chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	url := fmt.Sprintf("%s%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}
	return nil
}

// FormatMessage renders a listing as Telegram HTML
func FormatMessage(c *event.Canonical) string {
	lines := summaryLines(c)

	var b strings.Builder
	b.WriteString("🎻 <b>" + html.EscapeString(lines[0]) + "</b>\n")
	for _, line := range lines[1:] {
		b.WriteString(html.EscapeString(line) + "\n")
	}
	if text := c.Performers.Text(); text != "" {
		b.WriteString("<i>" + html.EscapeString(text) + "</i>\n")
	}
	if url := link(c); url != "" {
		fmt.Fprintf(&b, "\n<a href=\"%s\">Details</a>", html.EscapeString(url))
	}
	return strings.TrimRight(b.String(), "\n")
}
