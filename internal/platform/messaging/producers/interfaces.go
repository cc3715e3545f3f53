package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// EventPublisher sends ledger events keyed by customer so one customer's events share a partition
type EventPublisher interface {
	Publish(ctx context.Context, key string, eventType string, value interface{}) error
	Close() error
}

// DeadLetterPublisher parks events that exhausted their retries, with the failure reason attached
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// TopicWriter is the subset of *kafka.Writer the producers depend on
type TopicWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var (
	_ EventPublisher      = (*LedgerEventProducer)(nil)
	_ DeadLetterPublisher = (*DLQProducer)(nil)
	_ TopicWriter         = (*kafka.Writer)(nil)
)
