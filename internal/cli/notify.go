package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pfrederiksen/concert-events/internal/config"
	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/logger"
	"github.com/pfrederiksen/concert-events/internal/notifier"
)

// buildNotifiers resolves --notify channel names. A dry run prints posts to w
// instead of sending them, once regardless of how many channels were named.
func buildNotifiers(cfg *config.Config, channels []string, dryRun bool, w io.Writer) ([]notifier.Notifier, error) {
	var notifiers []notifier.Notifier
	for _, channel := range channels {
		switch channel {
		case "twitter":
			if dryRun {
				continue
			}
			n, err := notifier.NewTwitterNotifier(notifier.TwitterCredentials{
				APIKey:       cfg.TwitterAPIKey,
				APISecret:    cfg.TwitterAPISecret,
				AccessToken:  cfg.TwitterAccessToken,
				AccessSecret: cfg.TwitterAccessSecret,
			})
			if err != nil {
				return nil, fmt.Errorf("creating twitter notifier: %w", err)
			}
			notifiers = append(notifiers, n)
		case "telegram":
			if dryRun {
				continue
			}
			n, err := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID)
			if err != nil {
				return nil, fmt.Errorf("creating telegram notifier: %w", err)
			}
			notifiers = append(notifiers, n)
		default:
			return nil, fmt.Errorf("unknown notification channel: %s (must be 'twitter' or 'telegram')", channel)
		}
	}
	if dryRun {
		notifiers = []notifier.Notifier{notifier.NewDryRunNotifier(w)}
	}
	return notifiers, nil
}

// notify posts to every channel. A failing channel does not stop the others.
func notify(ctx context.Context, notifiers []notifier.Notifier, concerts []*event.Canonical) error {
	var errs []error
	for _, n := range notifiers {
		if err := n.Notify(ctx, concerts); err != nil {
			logger.Error("Notification failed", logger.Fields{"channel": n.Name()}, err)
			errs = append(errs, fmt.Errorf("notifying %s: %w", n.Name(), err))
			continue
		}
		logger.Info("Notified new listings", logger.Fields{"channel": n.Name(), "count": len(concerts)})
	}
	return errors.Join(errs...)
}
