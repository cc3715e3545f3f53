package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jar-backoffice/internal/config"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader carries the ledger event type so consumers can route without decoding
const EventTypeHeader = "event-type"

// LedgerEventProducer writes outbox events to the ledger topic. Writes are synchronous
// so the relay only marks a message processed after the broker acknowledged it.
type LedgerEventProducer struct {
	logger *slog.Logger
	writer TopicWriter
	topic  string
}

// NewLedgerEventProducer ensures the ledger topic exists and opens a writer for it
func NewLedgerEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*LedgerEventProducer, error) {
	if cfg.LedgerTopic == "" {
		return nil, fmt.Errorf("kafka ledger topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for ledger event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.LedgerTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger topic %s exists: %w", cfg.LedgerTopic, err)
	}

	writer := &kafka.Writer{
		Addr:  kafka.TCP(cfg.Brokers),
		Topic: cfg.LedgerTopic,
		// Hash keeps one customer's events ordered on a single partition
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &LedgerEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.LedgerTopic,
	}, nil
}

// Publish writes value under key. A json.RawMessage value is sent as is.
func (p *LedgerEventProducer) Publish(ctx context.Context, key string, eventType string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal ledger event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}
	if eventType != "" {
		msg.Headers = []kafka.Header{{Key: EventTypeHeader, Value: []byte(eventType)}}
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish ledger event",
			"topic", p.topic,
			"key", key,
			"event_type", eventType,
			"error", err,
		)
		return fmt.Errorf("failed to publish ledger event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published ledger event", "topic", p.topic, "key", key, "event_type", eventType)
	return nil
}

func (p *LedgerEventProducer) Close() error {
	p.logger.Info("Closing ledger event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close ledger event writer for topic %s: %w", p.topic, err)
	}
	return nil
}
