package notifier

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
	"github.com/pfrederiksen/concert-events/internal/event"
)

// TweetLimit is the maximum length of a post in characters
const TweetLimit = 280

// ErrMissingCredentials is returned when any Twitter credential is empty
var ErrMissingCredentials = errors.New("missing required Twitter credentials")

// TwitterCredentials are the OAuth 1.0a user-context keys
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// TwitterNotifier posts listings to Twitter
type TwitterNotifier struct {
	client   *twitter.Client
	interval time.Duration
}

// NewTwitterNotifier creates a Twitter notifier
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if creds.APIKey == "" || creds.APISecret == "" || creds.AccessToken == "" || creds.AccessSecret == "" {
		return nil, ErrMissingCredentials
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient), interval: Interval}, nil
}

func (n *TwitterNotifier) Name() string { return "twitter" }

// Notify posts a tweet per listing, pausing between posts
func (n *TwitterNotifier) Notify(ctx context.Context, concerts []*event.Canonical) error {
	for i, c := range concerts {
		if _, _, err := n.client.Statuses.Update(FormatTweet(c), nil); err != nil {
			return postError("tweet", c, err)
		}
		if i < len(concerts)-1 {
			if err := wait(ctx, n.interval); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatTweet formats a listing as a tweet of at most TweetLimit characters
func FormatTweet(c *event.Canonical) string {
	var b strings.Builder
	b.WriteString("🎻 New NYC concert!\n\n")
	for _, line := range summaryLines(c) {
		b.WriteString(line + "\n")
	}

	tail := "\n#NYCConcerts #ClassicalMusic"
	if url := link(c); url != "" {
		tail = "\n" + url + tail
	}

	body := b.String()
	room := TweetLimit - len([]rune(tail))
	if len([]rune(body)) > room {
		body = truncateRunes(body, room-1) + "\n"
	}
	return body + tail
}
