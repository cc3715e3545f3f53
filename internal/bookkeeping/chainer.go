package bookkeeping

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/metrics"
	"github.com/jar-backoffice/internal/platform/persistence"
)

// BalanceChainer is the Postgres-backed Chainer
type BalanceChainer struct {
	txRunner     persistence.TxRunner
	customerRepo customer.Repository
	ledgerRepo   ledger.Repository
	outbox       OutboxManager
	metrics      *metrics.Registry
	location     *time.Location
	now          func() time.Time
	logger       *slog.Logger
}

func NewBalanceChainer(
	txRunner persistence.TxRunner,
	customerRepo customer.Repository,
	ledgerRepo ledger.Repository,
	outboxManager OutboxManager,
	m *metrics.Registry,
	location *time.Location,
	logger *slog.Logger,
) *BalanceChainer {
	if location == nil {
		location = time.UTC
	}
	return &BalanceChainer{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		ledgerRepo:   ledgerRepo,
		outbox:       outboxManager,
		metrics:      m,
		location:     location,
		now:          time.Now,
		logger:       logger,
	}
}

func (c *BalanceChainer) Record(ctx context.Context, req *EntryRequest) (*ledger.Entry, error) {
	var entry *ledger.Entry
	err := c.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		var err error
		entry, err = c.RecordTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.Committed(entry)
	return entry, nil
}

func (c *BalanceChainer) RecordTx(ctx context.Context, tx pgx.Tx, req *EntryRequest) (*ledger.Entry, error) {
	logger := c.logger.With("owner_id", req.OwnerID, "customer_id", req.CustomerID)
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}

	// 1. The customer row lock serializes every writer of this chain until commit
	if _, err := c.customerRepo.WithTx(tx).LockForUpdate(ctx, req.OwnerID, req.CustomerID); err != nil {
		if errors.Is(err, customer.ErrCustomerNotFound{}) {
			logger.Warn("Customer not found for ledger entry")
			return nil, err
		}
		logger.Error("Failed to lock customer", "error", err)
		return nil, ledger.ErrStorageFailure{Op: "lock_customer", Err: err}
	}

	// 2. Parse the amount. The sign comes from the kind, never from the amount.
	amount, err := ledger.ParseAmount(req.Amount)
	if err == nil && amount.IsNegative() {
		err = ledger.ErrInvalidAmount{Raw: req.Amount}
	}
	if err != nil {
		logger.Warn("Rejected ledger amount", "amount", req.Amount)
		return nil, err
	}

	// 3. A failed lookup must never be mistaken for an empty ledger
	ledgerTx := c.ledgerRepo.WithTx(tx)
	previous, err := ledgerTx.GetLatestActive(ctx, req.OwnerID, req.CustomerID)
	if err != nil {
		logger.Error("Failed to read previous balance", "error", err)
		return nil, ledger.ErrStorageFailure{Op: "latest_entry", Err: err}
	}

	// 4. Chain onto the previous balance
	draft := ledger.Draft{
		OwnerID:    req.OwnerID,
		CustomerID: req.CustomerID,
		Kind:       req.Kind,
		Amount:     amount,
		Remark:     req.Remark,
		AddedBy:    req.ActorID,
	}
	now := c.now()
	entry, err := draft.Chain(previous, shared.BusinessDate(now, c.location), now)
	if err != nil {
		return nil, err
	}
	if err := ledger.ValidateMoney(entry.BalanceAfter); err != nil {
		logger.Warn("Rejected ledger amount, balance would overflow",
			"amount", amount.String(),
			"balance_before", entry.BalanceBefore.String())
		return nil, err
	}

	// 5. Persist the entry and its event
	if err := ledgerTx.Create(ctx, entry); err != nil {
		logger.Error("Failed to insert ledger entry", "error", err)
		return nil, ledger.ErrStorageFailure{Op: "insert_entry", Err: err}
	}

	if err := c.outbox.CreateOutboxEntry(ctx, tx, shared.EventLedgerEntryRecorded, entry, req.CorrelationID); err != nil {
		return nil, ledger.ErrStorageFailure{Op: "outbox", Err: err}
	}

	logger.Info("Ledger entry recorded",
		"entry_id", entry.ID,
		"kind", req.Kind,
		"amount", amount.String(),
		"balance_before", entry.BalanceBefore.String(),
		"balance_after", entry.BalanceAfter.String(),
	)
	return entry, nil
}

// DeleteEntry locks the entry's customer before flagging it so a concurrent
// append never reads a chain that is about to lose its tail
func (c *BalanceChainer) DeleteEntry(ctx context.Context, ownerID, entryID int64, correlationID string) error {
	logger := c.logger.With("owner_id", ownerID, "entry_id", entryID)
	if correlationID != "" {
		logger = logger.With("correlation_id", correlationID)
	}

	return c.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		ledgerTx := c.ledgerRepo.WithTx(tx)

		entry, err := ledgerTx.GetByID(ctx, ownerID, entryID)
		if err != nil {
			if errors.Is(err, ledger.ErrEntryNotFound{}) {
				return err
			}
			return ledger.ErrStorageFailure{Op: "get_entry", Err: err}
		}

		if _, err := c.customerRepo.WithTx(tx).LockForUpdate(ctx, ownerID, entry.CustomerID); err != nil {
			if errors.Is(err, customer.ErrCustomerNotFound{}) {
				return err
			}
			return ledger.ErrStorageFailure{Op: "lock_customer", Err: err}
		}

		if err := ledgerTx.SoftDelete(ctx, ownerID, entryID); err != nil {
			if errors.Is(err, ledger.ErrEntryNotFound{}) {
				return err
			}
			return ledger.ErrStorageFailure{Op: "delete_entry", Err: err}
		}
		entry.IsDeleted = true

		if err := c.outbox.CreateOutboxEntry(ctx, tx, shared.EventLedgerEntryDeleted, entry, correlationID); err != nil {
			return ledger.ErrStorageFailure{Op: "outbox", Err: err}
		}

		logger.Info("Ledger entry deleted", "customer_id", entry.CustomerID)
		return nil
	})
}

func (c *BalanceChainer) Committed(entries ...*ledger.Entry) {
	for _, e := range entries {
		if e != nil {
			c.metrics.LedgerEntryRecorded(string(e.Kind()))
		}
	}
}
