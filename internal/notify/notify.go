// Package notify publishes build events to interested subscribers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	ferrors "git.home.luguber.info/inful/docd/internal/foundation/errors"
	"git.home.luguber.info/inful/docd/internal/logfields"
)

// Outcome values of a BuildEvent.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// BuildEvent describes one finished build.
type BuildEvent struct {
	BuildID    string    `json:"build_id"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Nodes      int       `json:"nodes"`
	Pages      int       `json:"pages"`
	Documents  int       `json:"documents"`
	DurationMS int64     `json:"duration_ms"`
	FinishedAt time.Time `json:"finished_at"`
}

// Notifier delivers build events.
type Notifier interface {
	Notify(ctx context.Context, ev BuildEvent) error
	Close() error
}

// Noop discards events.
type Noop struct{}

func (Noop) Notify(context.Context, BuildEvent) error { return nil }
func (Noop) Close() error                             { return nil }

// NATSNotifier publishes events as JSON on a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// New returns a NATSNotifier for url, or Noop when url is empty.
func New(url, subject string) (Notifier, error) {
	if url == "" {
		return Noop{}, nil
	}
	return NewNATSNotifier(url, subject)
}

// NewNATSNotifier connects to the NATS server at url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url,
		nats.Name("docd"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, ferrors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS notifier connected", logfields.URL(url), slog.String("subject", subject))
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Notify publishes ev and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Notify(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal build event: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return ferrors.NetworkError("failed to publish build event").WithCause(err).Build()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return ferrors.NetworkError("failed to flush build event").WithCause(err).Build()
	}
	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), slog.String("outcome", ev.Outcome))
	return nil
}

// Close drains the connection.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
