package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jar-backoffice/internal/bookkeeping"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/ledger"
)

// LedgerServiceImpl implements LedgerService
type LedgerServiceImpl struct {
	chainer       bookkeeping.Chainer
	ledgerRepo    ledger.Repository
	customerRepo  customer.Repository
	statementRepo ledger.StatementRepository
	logger        *slog.Logger
}

func NewLedgerService(
	logger *slog.Logger,
	chainer bookkeeping.Chainer,
	ledgerRepo ledger.Repository,
	customerRepo customer.Repository,
	statementRepo ledger.StatementRepository,
) LedgerService {
	return &LedgerServiceImpl{
		chainer:       chainer,
		ledgerRepo:    ledgerRepo,
		customerRepo:  customerRepo,
		statementRepo: statementRepo,
		logger:        logger,
	}
}

// ListEntries returns the customer's live entries in insertion order
func (s *LedgerServiceImpl) ListEntries(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.Entry, int64, error) {
	if _, err := s.customerRepo.GetByID(ctx, ownerID, customerID); err != nil {
		return nil, 0, err
	}

	entries, err := s.ledgerRepo.ListByCustomer(ctx, ownerID, customerID, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.ledgerRepo.CountByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (s *LedgerServiceImpl) Balance(ctx context.Context, ownerID, customerID int64) (decimal.Decimal, error) {
	if _, err := s.customerRepo.GetByID(ctx, ownerID, customerID); err != nil {
		return decimal.Zero, err
	}

	latest, err := s.ledgerRepo.GetLatestActive(ctx, ownerID, customerID)
	if err != nil {
		return decimal.Zero, ledger.ErrStorageFailure{Op: "latest_entry", Err: err}
	}
	if latest == nil {
		return decimal.Zero, nil
	}
	return latest.BalanceAfter, nil
}

func (s *LedgerServiceImpl) RecordEntry(ctx context.Context, caller Caller, customerID int64, kind, amount, remark string) (*ledger.Entry, error) {
	k, err := ledger.ParseKind(kind)
	if err != nil {
		return nil, err
	}

	return s.chainer.Record(ctx, &bookkeeping.EntryRequest{
		OwnerID:       caller.OwnerID,
		CustomerID:    customerID,
		Kind:          k,
		Amount:        amount,
		Remark:        remark,
		ActorID:       caller.ActorID,
		CorrelationID: caller.CorrelationID,
	})
}

func (s *LedgerServiceImpl) DeleteEntry(ctx context.Context, caller Caller, entryID int64) error {
	return s.chainer.DeleteEntry(ctx, caller.OwnerID, entryID, caller.CorrelationID)
}

// Statement lags the ledger by the relay's polling interval
func (s *LedgerServiceImpl) Statement(ctx context.Context, ownerID, customerID int64, page, perPage int) ([]*ledger.StatementLine, int64, error) {
	if _, err := s.customerRepo.GetByID(ctx, ownerID, customerID); err != nil {
		return nil, 0, err
	}

	lines, err := s.statementRepo.ListByCustomer(ctx, ownerID, customerID, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.statementRepo.CountByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return nil, 0, err
	}

	return lines, total, nil
}
