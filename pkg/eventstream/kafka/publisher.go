// Package kafka publishes exchange events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/innerai/pkg/eventstream"
	"github.com/papercomputeco/innerai/pkg/logger"
)

// DefaultTopic is used when Config.Topic is empty.
const DefaultTopic = "innerai.exchanges"

// messageWriter is the subset of *kafkago.Writer the publisher uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Config configures the Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses (host:port).
	Brokers []string

	// Topic is the destination topic.
	Topic string

	// WriteTimeout bounds a single publish. Zero uses the writer default.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// Publisher implements eventstream.Publisher on a kafka-go Writer.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewPublisher creates a publisher that writes to cfg.Topic on cfg.Brokers.
func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           cfg.WriteTimeout,
	}

	return newPublisher(w, cfg.Topic, cfg.Logger), nil
}

func newPublisher(w messageWriter, topic string, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{
		writer: w,
		topic:  topic,
		logger: log,
	}
}

// PublishExchange encodes the event as JSON and writes it keyed by operation.
func (p *Publisher) PublishExchange(ctx context.Context, event *eventstream.ExchangeRecordedEvent) error {
	if event == nil {
		return eventstream.ErrNilExchangeEvent
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding exchange event: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(event.Key()),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "schema_version", Value: fmt.Appendf(nil, "%d", event.SchemaVersion)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing to kafka topic %s: %w", p.topic, err)
	}

	p.logger.Debug("published exchange event",
		"topic", p.topic,
		"event_id", event.EventID,
		"exchange_id", event.Exchange.ID,
	)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
