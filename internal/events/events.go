// Package events publishes dataset notifications to NATS JetStream so
// downstream consumers can react to stored submissions.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Error is the error class for event publishing failures.
var Error = errs.Class("events")

const (
	// StreamName is the JetStream stream that captures dataset events.
	StreamName = "METADATA"
	// SubjectPrefix is followed by the event action, e.g. metadata.datasets.insert.
	SubjectPrefix = "metadata.datasets."
)

// DatasetEvent is published after a submission has been stored.
type DatasetEvent struct {
	EventID    string    `json:"event_id"`
	DatasetID  string    `json:"dataset_id"`
	Action     string    `json:"action"`
	Domain     string    `json:"domain"`
	Title      string    `json:"title,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers dataset events.
type Publisher interface {
	Publish(ctx context.Context, ev DatasetEvent) error
}

// JetStream is the subset of nats.JetStreamContext used by NATSPublisher.
type JetStream interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
	AddStream(cfg *nats.StreamConfig, opts ...nats.JSOpt) (*nats.StreamInfo, error)
}

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	js   JetStream
	conn *nats.Conn
	log  *zap.Logger
}

// Connect dials the NATS server at url and prepares the event stream.
func Connect(url string, log *zap.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("metadata-repository"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(3*time.Second),
	)
	if err != nil {
		return nil, Error.New("connect to NATS at %s: %v", url, err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, Error.New("create JetStream context: %v", err)
	}
	p, err := NewNATSPublisher(js, log)
	if err != nil {
		nc.Close()
		return nil, err
	}
	p.conn = nc
	return p, nil
}

// NewNATSPublisher ensures the event stream exists and returns a publisher on js.
func NewNATSPublisher(js JetStream, log *zap.Logger) (*NATSPublisher, error) {
	_, err := js.AddStream(&nats.StreamConfig{
		Name:     StreamName,
		Subjects: []string{SubjectPrefix + ">"},
		Storage:  nats.FileStorage,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		return nil, Error.New("create stream %s: %v", StreamName, err)
	}
	return &NATSPublisher{js: js, log: log}, nil
}

// Publish sends ev to metadata.datasets.<action>.
func (p *NATSPublisher) Publish(ctx context.Context, ev DatasetEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return Error.Wrap(err)
	}
	subject := SubjectPrefix + ev.Action
	ack, err := p.js.Publish(subject, payload, nats.Context(ctx))
	if err != nil {
		return Error.New("publish %s: %v", subject, err)
	}
	p.log.Debug("published dataset event",
		zap.String("subject", subject),
		zap.String("stream", ack.Stream),
		zap.Uint64("sequence", ack.Sequence),
	)
	return nil
}

// Close drains the connection when the publisher owns one.
func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
