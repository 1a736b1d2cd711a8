package journal

import "context"

// Store persists and lists journal entries.
type Store interface {
	// Append records a finished run.
	Append(ctx context.Context, e Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)

	// Close closes the store and releases resources.
	Close() error
}
