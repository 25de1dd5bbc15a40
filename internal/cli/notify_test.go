package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pfrederiksen/concert-events/internal/config"
	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/notifier"
)

type fakeNotifier struct {
	name  string
	err   error
	calls int
}

func (f *fakeNotifier) Name() string { return f.name }

func (f *fakeNotifier) Notify(ctx context.Context, concerts []*event.Canonical) error {
	f.calls++
	return f.err
}

func TestBuildNotifiers(t *testing.T) {
	cfg := &config.Config{TelegramBotToken: "token", TelegramChatID: "42"}

	tests := []struct {
		name      string
		channels  []string
		dryRun    bool
		wantNames []string
		wantErr   bool
	}{
		{"telegram", []string{"telegram"}, false, []string{"telegram"}, false},
		{"twitter without credentials", []string{"twitter"}, false, nil, true},
		{"dry run skips credentials", []string{"twitter", "telegram"}, true, []string{"dry-run"}, false},
		{"unknown channel", []string{"email"}, false, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildNotifiers(cfg, tt.channels, tt.dryRun, &bytes.Buffer{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("buildNotifiers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.wantNames) {
				t.Fatalf("buildNotifiers() returned %d notifiers, want %d", len(got), len(tt.wantNames))
			}
			for i, n := range got {
				if n.Name() != tt.wantNames[i] {
					t.Errorf("notifier[%d] = %s, want %s", i, n.Name(), tt.wantNames[i])
				}
			}
		})
	}
}

func TestNotify_ContinuesAfterFailure(t *testing.T) {
	failing := &fakeNotifier{name: "twitter", err: errors.New("rate limited")}
	ok := &fakeNotifier{name: "telegram"}

	err := notify(context.Background(), []notifier.Notifier{failing, ok}, []*event.Canonical{{ID: "a"}})
	if err == nil || !strings.Contains(err.Error(), "notifying twitter: rate limited") {
		t.Errorf("notify() error = %v", err)
	}
	if ok.calls != 1 {
		t.Errorf("second notifier called %d times, want 1", ok.calls)
	}
}
