package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed message. A returned error is retried on the
// same message; the consumer never moves past a message its handler has
// not accepted. Handlers must return nil for messages they want dropped.
type Handler func(ctx context.Context, msg Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group.
type Consumer struct {
	reader  messageReader
	topic   string
	group   string
	handler Handler
	logger  *slog.Logger

	// newBackOff paces handler retries. Nil means exponential, capped at
	// maxRetryInterval, without an overall deadline.
	newBackOff func() backoff.BackOff
}

const maxRetryInterval = 30 * time.Second

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = maxRetryInterval
	b.MaxElapsedTime = 0
	return b
}

// NewConsumer creates a Consumer for topic. Messages are handed to handler
// one at a time.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	d, err := cfg.dialer()
	if err != nil {
		return nil, err
	}
	rc := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	}
	if d != nil {
		rc.Dialer = d
	}
	return &Consumer{
		reader:  kafkago.NewReader(rc),
		topic:   topic,
		group:   cfg.ConsumerGroup,
		handler: handler,
		logger:  logger,
	}, nil
}

// Start consumes until ctx is cancelled. Cancellation is a clean stop.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", c.topic)
				return nil
			}
			return fmt.Errorf("kafka: fetch message: %w", err)
		}

		msg := Message{
			Topic:   m.Topic,
			Key:     m.Key,
			Value:   m.Value,
			Offset:  m.Offset,
			Headers: make(map[string]string, len(m.Headers)),
		}
		for _, h := range m.Headers {
			msg.Headers[h.Key] = string(h.Value)
		}

		if err := c.handle(ctx, m.Partition, msg); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping", "topic", c.topic, "uncommitted_offset", m.Offset)
				return nil
			}
			return fmt.Errorf("kafka: handle message at offset %d: %w", m.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Warn("commit failed",
				"topic", m.Topic,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler until it succeeds or ctx ends, so a later commit
// can never cover a message that was not processed.
func (c *Consumer) handle(ctx context.Context, partition int, msg Message) error {
	newBackOff := c.newBackOff
	if newBackOff == nil {
		newBackOff = defaultBackOff
	}
	op := func() error { return c.handler(ctx, msg) }
	notify := func(err error, wait time.Duration) {
		c.logger.Error("handler failed, retrying",
			"topic", msg.Topic,
			"partition", partition,
			"offset", msg.Offset,
			"retry_in", wait,
			"error", err,
		)
	}
	return backoff.RetryNotify(op, backoff.WithContext(newBackOff(), ctx), notify)
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka: close reader: %w", err)
	}
	return nil
}
