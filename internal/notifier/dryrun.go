package notifier

import (
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/pfrederiksen/concert-events/internal/event"
)

// DryRunNotifier prints what would be posted without sending anything
type DryRunNotifier struct {
	w io.Writer
}

// NewDryRunNotifier creates a dry-run notifier writing to w
func NewDryRunNotifier(w io.Writer) *DryRunNotifier {
	return &DryRunNotifier{w: w}
}

func (n *DryRunNotifier) Name() string { return "dry-run" }

// Notify prints the posts that would be sent
func (n *DryRunNotifier) Notify(ctx context.Context, concerts []*event.Canonical) error {
	for i, c := range concerts {
		post := FormatTweet(c)
		fmt.Fprintf(n.w, "--- Post %d/%d ---\n", i+1, len(concerts))
		fmt.Fprintln(n.w, post)
		fmt.Fprintf(n.w, "\n(Length: %d characters)\n\n", utf8.RuneCountInString(post))
	}
	return ctx.Err()
}
