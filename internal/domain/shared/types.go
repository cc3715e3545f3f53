package shared

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// EventType names the ledger events relayed through the outbox
type EventType string

const (
	EventLedgerEntryRecorded EventType = "ledger.entry.recorded"
	EventLedgerEntryDeleted  EventType = "ledger.entry.deleted"
)

// Remarks written by the sale and payment workflows
const (
	RemarkNewSales        = "New Sales"
	RemarkPaymentReceived = "Payment Received"
)
