// Package notifier announces newly discovered concert listings.
//
// Notifiers post one message per listing to Twitter or a Telegram chat. The
// dry-run notifier prints the messages instead of sending them.
package notifier
