package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/shared"
)

// LedgerEvent is the payload relayed to the message broker
type LedgerEvent struct {
	EventID       uuid.UUID        `json:"event_id"`
	Type          shared.EventType `json:"type"`
	Entry         ledger.Entry     `json:"entry"`
	CorrelationID string           `json:"correlation_id,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// PartitionKey keeps all events of one customer on the same partition
func (e *LedgerEvent) PartitionKey() string {
	return fmt.Sprintf("%d:%d", e.Entry.OwnerID, e.Entry.CustomerID)
}

// Message is a ledger event waiting in the outbox table to be published
type Message struct {
	ID            int64               `json:"id"`
	EventID       uuid.UUID           `json:"event_id"`
	EventType     shared.EventType    `json:"event_type"`
	OwnerID       int64               `json:"owner_id"`
	EntryID       int64               `json:"entry_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

// NewLedgerMessage wraps the entry in an event and prepares it for the outbox
func NewLedgerMessage(eventType shared.EventType, entry *ledger.Entry, correlationID string) (*Message, error) {
	event := LedgerEvent{
		EventID:       uuid.New(),
		Type:          eventType,
		Entry:         *entry,
		CorrelationID: correlationID,
		OccurredAt:    time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		EventID:   event.EventID,
		EventType: eventType,
		OwnerID:   entry.OwnerID,
		EntryID:   entry.ID,
		Payload:   payload,
		Status:    shared.OutboxStatusPending,
		CreatedAt: event.OccurredAt,
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// Event decodes the payload
func (m *Message) Event() (*LedgerEvent, error) {
	var event LedgerEvent
	if err := json.Unmarshal(m.Payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
