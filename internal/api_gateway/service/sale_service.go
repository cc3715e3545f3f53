package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jar-backoffice/internal/bookkeeping"
	"github.com/jar-backoffice/internal/domain/jar"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/payment"
	"github.com/jar-backoffice/internal/domain/product"
	"github.com/jar-backoffice/internal/domain/sales"
	"github.com/jar-backoffice/internal/domain/sequence"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/jar-backoffice/internal/platform/persistence"
)

// SaleServiceImpl implements SaleService
type SaleServiceImpl struct {
	txRunner     persistence.TxRunner
	chainer      bookkeeping.Chainer
	salesRepo    sales.Repository
	productRepo  product.Repository
	jarRepo      jar.Repository
	paymentRepo  payment.Repository
	sequenceRepo sequence.Repository
	clock        Clock
	logger       *slog.Logger
}

func NewSaleService(
	logger *slog.Logger,
	txRunner persistence.TxRunner,
	chainer bookkeeping.Chainer,
	salesRepo sales.Repository,
	productRepo product.Repository,
	jarRepo jar.Repository,
	paymentRepo payment.Repository,
	sequenceRepo sequence.Repository,
	clock Clock,
) SaleService {
	return &SaleServiceImpl{
		txRunner:     txRunner,
		chainer:      chainer,
		salesRepo:    salesRepo,
		productRepo:  productRepo,
		jarRepo:      jarRepo,
		paymentRepo:  paymentRepo,
		sequenceRepo: sequenceRepo,
		clock:        clock,
		logger:       logger,
	}
}

// CreateSale runs the whole counter workflow in one transaction:
//  1. credit the sale total ("New Sales"), which also locks the customer
//  2. take the next invoice number and insert the sale and its items
//  3. record jars handed out or collected
//  4. when something was paid, insert the payment and debit it ("Payment Received")
//
// Nothing is visible until every step succeeded.
func (s *SaleServiceImpl) CreateSale(ctx context.Context, caller Caller, in SaleInput) (*SaleReceipt, error) {
	if in.AmountPaid.IsNegative() {
		return nil, sales.ErrNegativePaidValue
	}
	for _, money := range []decimal.Decimal{in.AdditionalCharge, in.AmountPaid} {
		if err := ledger.ValidateMoney(money); err != nil {
			return nil, err
		}
	}
	saleDate := s.clock.DateOr(in.SaleDate)
	logger := s.logger.With("owner_id", caller.OwnerID, "customer_id", in.CustomerID, "correlation_id", caller.CorrelationID)

	receipt := &SaleReceipt{}
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		items, err := s.priceItems(ctx, tx, caller.OwnerID, in.Items)
		if err != nil {
			return err
		}

		sale, err := sales.NewSale(caller.OwnerID, in.CustomerID, saleDate, in.AdditionalCharge, in.Remark, caller.ActorID, items)
		if err != nil {
			return err
		}

		credit, err := s.chainer.RecordTx(ctx, tx, &bookkeeping.EntryRequest{
			OwnerID:       caller.OwnerID,
			CustomerID:    in.CustomerID,
			Kind:          ledger.KindCredit,
			Amount:        sale.TotalAfterTax.String(),
			Remark:        shared.RemarkNewSales,
			ActorID:       caller.ActorID,
			CorrelationID: caller.CorrelationID,
		})
		if err != nil {
			return err
		}
		receipt.Entries = append(receipt.Entries, credit)

		serial, err := s.sequenceRepo.WithTx(tx).Next(ctx, caller.OwnerID, sequence.Sales)
		if err != nil {
			return err
		}
		if sale.InvoiceNumber, err = sales.FormatInvoiceNumber(serial); err != nil {
			return err
		}

		salesTx := s.salesRepo.WithTx(tx)
		if err := salesTx.Create(ctx, sale); err != nil {
			return err
		}
		for _, item := range sale.Items {
			item.SaleID = sale.ID
			if err := salesTx.CreateItem(ctx, item); err != nil {
				return err
			}
		}
		receipt.Sale = sale

		if in.JarsIn != 0 || in.JarsOut != 0 {
			counter, err := jar.NewCounter(caller.OwnerID, in.CustomerID, &sale.ID, in.JarsIn, in.JarsOut,
				saleDate, shared.RemarkNewSales, caller.ActorID)
			if err != nil {
				return err
			}
			if err := s.jarRepo.WithTx(tx).Create(ctx, counter); err != nil {
				return err
			}
			receipt.JarCounter = counter
		}

		if in.AmountPaid.IsPositive() {
			p, err := payment.NewPayment(caller.OwnerID, in.CustomerID, &sale.ID, saleDate, in.AmountPaid,
				shared.RemarkPaymentReceived, caller.ActorID)
			if err != nil {
				return err
			}
			if err := s.paymentRepo.WithTx(tx).Create(ctx, p); err != nil {
				return err
			}
			receipt.Payment = p

			debit, err := s.chainer.RecordTx(ctx, tx, &bookkeeping.EntryRequest{
				OwnerID:       caller.OwnerID,
				CustomerID:    in.CustomerID,
				Kind:          ledger.KindDebit,
				Amount:        in.AmountPaid.String(),
				Remark:        shared.RemarkPaymentReceived,
				ActorID:       caller.ActorID,
				CorrelationID: caller.CorrelationID,
			})
			if err != nil {
				return err
			}
			receipt.Entries = append(receipt.Entries, debit)
		}

		return nil
	})
	if err != nil {
		if isClientError(err) {
			logger.Warn("Sale rejected", "error", err)
			return nil, err
		}
		logger.Error("Failed to create sale", "error", err)
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	s.chainer.Committed(receipt.Entries...)
	logger.Info("Sale created",
		"sale_id", receipt.Sale.ID,
		"invoice_number", receipt.Sale.InvoiceNumber,
		"total_after_tax", receipt.Sale.TotalAfterTax.String(),
		"amount_paid", in.AmountPaid.String())
	return receipt, nil
}

// priceItems resolves each line against the catalog. Price and tax rate default
// to the product's selling price and tax rate when the request leaves them out.
func (s *SaleServiceImpl) priceItems(ctx context.Context, tx pgx.Tx, ownerID int64, lines []SaleItemInput) ([]*sales.Item, error) {
	if len(lines) == 0 {
		return nil, sales.ErrNoItems
	}

	productTx := s.productRepo.WithTx(tx)
	items := make([]*sales.Item, 0, len(lines))
	for _, line := range lines {
		p, err := productTx.GetByID(ctx, ownerID, line.ProductID)
		if err != nil {
			return nil, err
		}

		price := p.SellingPrice
		if line.UnitPrice != nil {
			price = *line.UnitPrice
		}
		if err := ledger.ValidateMoney(price); err != nil {
			return nil, err
		}
		taxRate := p.TaxRate
		if line.TaxRate != nil {
			taxRate = *line.TaxRate
		}

		item, err := sales.NewItem(p.ID, p.Name, p.Unit, line.Remark, line.Quantity, price, taxRate)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *SaleServiceImpl) GetSale(ctx context.Context, ownerID, id int64) (*sales.Sale, error) {
	return s.salesRepo.GetByID(ctx, ownerID, id)
}

func (s *SaleServiceImpl) ListSales(ctx context.Context, ownerID int64, filter sales.ListFilter, page, perPage int) ([]*sales.Sale, int64, error) {
	list, err := s.salesRepo.List(ctx, ownerID, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.salesRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// DeleteSale flags the sale and its items in one transaction
func (s *SaleServiceImpl) DeleteSale(ctx context.Context, ownerID, id int64) error {
	err := s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return s.salesRepo.WithTx(tx).SoftDelete(ctx, ownerID, id)
	})
	if err != nil {
		if !errors.Is(err, sales.ErrSaleNotFound{}) {
			s.logger.Error("Failed to delete sale", "owner_id", ownerID, "sale_id", id, "error", err)
		}
		return err
	}

	s.logger.Info("Sale deleted", "owner_id", ownerID, "sale_id", id)
	return nil
}
