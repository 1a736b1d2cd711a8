// Package notify announces completed releases on a NATS subject.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/charmrelease/internal/logfields"
)

const flushTimeout = 5 * time.Second

// ReleaseEvent is published after a run released at least one channel.
type ReleaseEvent struct {
	RunID      string    `json:"run_id"`
	Charm      string    `json:"charm"`
	Artifact   string    `json:"artifact"`
	Channels   []string  `json:"channels"`
	Identity   string    `json:"identity,omitempty"`
	MirroredTo string    `json:"mirrored_to,omitempty"`
	MirrorHead string    `json:"mirror_commit,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Notifier announces release events.
type Notifier interface {
	Notify(ctx context.Context, ev ReleaseEvent) error
	Close()
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, ReleaseEvent) error { return nil }
func (NopNotifier) Close()                                     {}

// publisher is the subset of *nats.Conn used for notifications.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// NATSNotifier publishes release events as JSON on a NATS subject.
type NATSNotifier struct {
	conn    publisher
	subject string
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		return nil, fmt.Errorf("notification subject is required")
	}
	conn, err := nats.Connect(url, nats.Name("charmrelease"), nats.Timeout(flushTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Debug("NATS notifier connected", slog.String("url", url), slog.String("subject", subject))
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Notify publishes ev and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Notify(ctx context.Context, ev ReleaseEvent) error {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	timeout := flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := n.conn.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}

	slog.Debug("Published release event", logfields.RunID(ev.RunID), logfields.Artifact(ev.Artifact), slog.String("subject", n.subject))
	return nil
}

// Close closes the NATS connection.
func (n *NATSNotifier) Close() {
	n.conn.Close()
}
