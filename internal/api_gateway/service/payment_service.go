package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/jar-backoffice/internal/bookkeeping"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/persistence"
)

// PaymentServiceImpl implements PaymentService
type PaymentServiceImpl struct {
	txRunner    persistence.TxRunner
	chainer     bookkeeping.Chainer
	paymentRepo payment.Repository
	salesRepo   sales.Repository
	clock       Clock
	logger      *slog.Logger
}

func NewPaymentService(logger *slog.Logger, txRunner persistence.TxRunner, chainer bookkeeping.Chainer, paymentRepo payment.Repository, salesRepo sales.Repository, clock Clock) PaymentService {
	return &PaymentServiceImpl{
		txRunner:    txRunner,
		chainer:     chainer,
		paymentRepo: paymentRepo,
		salesRepo:   salesRepo,
		clock:       clock,
		logger:      logger,
	}
}

func (s *PaymentServiceImpl) RecordPayment(ctx context.Context, caller Caller, in PaymentInput) (*payment.Payment, *ledger.Entry, error) {
	amount, err := ledger.ParseAmount(in.Amount)
	if err != nil {
		return nil, nil, err
	}
	remark := in.Remark
	if remark == "" {
		remark = shared.RemarkPaymentReceived
	}

	p, err := payment.NewPayment(caller.OwnerID, in.CustomerID, in.SaleID, s.clock.DateOr(in.PaymentDate), amount, remark, caller.ActorID)
	if err != nil {
		return nil, nil, err
	}

	var entry *ledger.Entry
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := s.checkSale(ctx, tx, caller.OwnerID, in); err != nil {
			return err
		}

		// The debit locks the customer before the payment row is written
		var err error
		entry, err = s.chainer.RecordTx(ctx, tx, &bookkeeping.EntryRequest{
			OwnerID:       caller.OwnerID,
			CustomerID:    in.CustomerID,
			Kind:          ledger.KindDebit,
			Amount:        amount.String(),
			Remark:        shared.RemarkPaymentReceived,
			ActorID:       caller.ActorID,
			CorrelationID: caller.CorrelationID,
		})
		if err != nil {
			return err
		}
		return s.paymentRepo.WithTx(tx).Create(ctx, p)
	})
	if err != nil {
		if isClientError(err) {
			return nil, nil, err
		}
		s.logger.Error("Failed to record payment",
			"owner_id", caller.OwnerID,
			"customer_id", in.CustomerID,
			"correlation_id", caller.CorrelationID,
			"error", err)
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	s.chainer.Committed(entry)
	s.logger.Info("Payment recorded",
		"owner_id", caller.OwnerID,
		"customer_id", in.CustomerID,
		"payment_id", p.ID,
		"amount", amount.String(),
		"balance_after", entry.BalanceAfter.String(),
		"correlation_id", caller.CorrelationID)
	return p, entry, nil
}

// checkSale rejects a sale reference that is foreign, deleted or billed to another customer
func (s *PaymentServiceImpl) checkSale(ctx context.Context, tx pgx.Tx, ownerID int64, in PaymentInput) error {
	if in.SaleID == nil {
		return nil
	}
	sale, err := s.salesRepo.WithTx(tx).GetByID(ctx, ownerID, *in.SaleID)
	if err != nil {
		return err
	}
	if sale.CustomerID != in.CustomerID {
		return sales.ErrSaleNotFound{SaleID: *in.SaleID}
	}
	return nil
}

func (s *PaymentServiceImpl) ListPayments(ctx context.Context, ownerID int64, filter payment.ListFilter, page, perPage int) ([]*payment.Payment, int64, error) {
	list, err := s.paymentRepo.List(ctx, ownerID, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}
