package nats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/saviobatista/ballometer-tracker/internal/parser"
	"github.com/saviobatista/ballometer-tracker/internal/types"
)

const (
	// SubjectCursor carries drag and scrub gestures from the view layer
	SubjectCursor = "ballometer.cursor"
	// SubjectNow carries live samples pushed by the recorder
	SubjectNow = "ballometer.now"

	streamNow = "BALLOMETER_NOW"
)

// Client represents a NATS client
type Client struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *slog.Logger
}

// New creates a new NATS client and makes sure the live sample stream exists
func New(url string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to get JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamNow,
		Subjects: []string{SubjectNow},
		Storage:  nats.MemoryStorage,
		MaxAge:   time.Hour,
	})
	if err != nil && !strings.Contains(err.Error(), "stream name already in use") {
		nc.Close()
		return nil, fmt.Errorf("failed to create stream: %w", err)
	}

	return &Client{
		conn:   nc,
		js:     js,
		logger: logger,
	}, nil
}

// PublishLiveSample publishes a live sample on the live stream
func (c *Client) PublishLiveSample(sample *types.LiveSample) error {
	data, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("failed to marshal live sample: %w", err)
	}
	if _, err := c.js.Publish(SubjectNow, data); err != nil {
		return fmt.Errorf("failed to publish live sample: %w", err)
	}
	return nil
}

// SubscribeLiveSamples delivers samples published from now on. The stream
// sequence number is passed along so late redeliveries can be discarded.
func (c *Client) SubscribeLiveSamples(handler func(seq uint64, sample *types.LiveSample)) error {
	_, err := c.js.Subscribe(SubjectNow, func(msg *nats.Msg) {
		meta, err := msg.Metadata()
		if err != nil {
			c.logger.Warn("Live sample without stream metadata", slog.Any("error", err))
			return
		}
		sample, err := parser.ParseLiveSample(msg.Data)
		if err != nil {
			c.logger.Warn("Dropping live sample", slog.Any("error", err))
			return
		}
		handler(meta.Sequence.Stream, sample)
	}, nats.DeliverNew())
	if err != nil {
		return fmt.Errorf("failed to subscribe to live samples: %w", err)
	}
	return nil
}

// PublishCursorEvent publishes a drag or scrub gesture
func (c *Client) PublishCursorEvent(event *types.CursorEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cursor event: %w", err)
	}
	if err := c.conn.Publish(SubjectCursor, data); err != nil {
		return fmt.Errorf("failed to publish cursor event: %w", err)
	}
	return nil
}

// SubscribeCursorEvents delivers drag and scrub gestures
func (c *Client) SubscribeCursorEvents(handler func(*types.CursorEvent)) error {
	_, err := c.conn.Subscribe(SubjectCursor, func(msg *nats.Msg) {
		event, err := parser.ParseCursorEvent(msg.Data)
		if err != nil {
			c.logger.Warn("Dropping cursor event", slog.Any("error", err))
			return
		}
		handler(event)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to cursor events: %w", err)
	}
	return nil
}

// Close closes the NATS connection
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
