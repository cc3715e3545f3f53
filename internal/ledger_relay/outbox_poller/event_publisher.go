package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/messaging/producers"
	"github.com/sony/gobreaker"
)

// ErrBrokerUnavailable is returned while the breaker rejects publishes.
// Messages rejected this way were never attempted and keep their attempt count.
var ErrBrokerUnavailable = errors.New("ledger event broker unavailable")

// EventPublisher relays one outbox message to the broker and marks it processed
type EventPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

type BreakerSettings struct {
	Failures uint32        // Consecutive failures that open the breaker
	Timeout  time.Duration // Time spent open before a probe is allowed
}

// BreakerPublisher guards the broker with a circuit breaker so an outage
// does not burn through every message's retry budget
type BreakerPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.EventPublisher
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

func NewBreakerPublisher(
	outboxRepo outbox.Repository,
	producer producers.EventPublisher,
	settings BreakerSettings,
	logger *slog.Logger,
) *BreakerPublisher {
	failures := settings.Failures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ledger-events",
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Publish breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &BreakerPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		breaker:    breaker,
		logger:     logger,
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, message *outbox.Message) error {
	event, err := message.Event()
	if err != nil {
		return fmt.Errorf("decode payload of outbox %d: %w", message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "entry_id", message.EntryID, "event_type", message.EventType)
	if event.CorrelationID != "" {
		logger = logger.With("correlation_id", event.CorrelationID)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.producer.Publish(ctx, event.PartitionKey(), string(message.EventType), message.Payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrBrokerUnavailable
	}
	if err != nil {
		return err
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		// The event is out; a later republish is absorbed by the idempotent projection
		logger.Error("Published but failed to mark outbox message processed", "error", err)
		return fmt.Errorf("mark outbox %d processed: %w", message.ID, err)
	}

	logger.Info("Ledger event published")
	return nil
}

// State exposes the breaker state for logging and tests
func (p *BreakerPublisher) State() gobreaker.State {
	return p.breaker.State()
}
