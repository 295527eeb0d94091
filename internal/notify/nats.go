package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

const publishTimeout = 5 * time.Second

// natsConn is the subset of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATSPublisher publishes run events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher connects to url.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("sitecfg"),
		nats.Timeout(publishTimeout),
		nats.MaxReconnects(3),
	)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS publisher initialized", logfields.URL(url), logfields.Subject(subject))
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

// Publish sends ev and waits for the server to acknowledge the flush.
func (p *NATSPublisher) Publish(ctx context.Context, ev RunEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to publish run event").
			WithContext("subject", p.subject).
			Build()
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to flush run event").
			WithContext("subject", p.subject).
			Build()
	}
	slog.Debug("Published run event", logfields.RunID(ev.RunID), logfields.Subject(p.subject), logfields.Status(string(ev.Status)))
	return nil
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		p.conn.Close()
	}
	return nil
}
