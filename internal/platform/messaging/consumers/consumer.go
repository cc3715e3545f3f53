package consumers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jar-backoffice/internal/config"
	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key []byte, value []byte) error

// Consumer defines the message queue consumer interface
type Consumer interface {
	Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error
	Close() error
}

// MessageReader is the part of kafka.Reader the consumer drives
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConsumer implements Consumer using Kafka consumer groups
type KafkaConsumer struct {
	reader        MessageReader
	logger        *slog.Logger
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

func NewKafkaConsumer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) *KafkaConsumer {
	startOffset := kafka.FirstOffset
	if cfg.StartOffset == kafka.LastOffset {
		startOffset = kafka.LastOffset
	}

	return &KafkaConsumer{
		logger:        logger,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     strings.Split(cfg.Brokers, ","),
			Topic:       cfg.LedgerTopic,
			GroupID:     cfg.ConsumerGroup,
			MinBytes:    cfg.MinBytes,
			MaxBytes:    cfg.MaxBytes,
			MaxWait:     cfg.MaxWait,
			StartOffset: startOffset,
		}),
	}
}

// Subscribe starts a background loop feeding each message to handler.
// A failed message is handled again, with growing delays, until it succeeds
// or ctx ends. Later offsets are not fetched meanwhile, so a commit never
// skips a message that was not handled.
func (c *KafkaConsumer) Subscribe(ctx context.Context, topic string, groupID string, handler MessageHandler) error {
	logger := c.logger.With("topic", topic, "group_id", groupID)
	logger.Info("Subscribed to Kafka topic")

	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Info("Context canceled, stopping consumer")
					return
				}
				logger.Error("Failed to fetch message from Kafka", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.retryDelay):
				}
				continue
			}

			msgLogger := logger.With("partition", msg.Partition, "offset", msg.Offset, "key", string(msg.Key))
			msgLogger.Debug("Received message from Kafka")

			if !c.handleUntilDone(ctx, msgLogger, msg, handler) {
				logger.Info("Context canceled, stopping consumer")
				return
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				msgLogger.Error("Failed to commit message after successful processing", "error", err)
			}
		}
	}()

	return nil
}

// handleUntilDone reports false when ctx ended before the handler succeeded
func (c *KafkaConsumer) handleUntilDone(ctx context.Context, logger *slog.Logger, msg kafka.Message, handler MessageHandler) bool {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return true
		}
		logger.Error("Failed to process message, retrying", "attempt", attempt, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		if delay *= 2; c.maxRetryDelay > 0 && delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

func (c *KafkaConsumer) Close() error {
	if c.reader != nil {
		return c.reader.Close()
	}
	return nil
}
