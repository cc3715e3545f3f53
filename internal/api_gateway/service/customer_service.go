package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jar-backoffice/internal/data/cache"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/sequence"
	"github.com/jar-backoffice/internal/platform/persistence"
)

// activeListLimit caps the cached pick list
const activeListLimit = 1000

// CustomerCache is the slice of the list cache the customer service needs
type CustomerCache interface {
	GetCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, bool, error)
	SetCustomers(ctx context.Context, ownerID int64, customers []*customer.Customer) error
	Invalidate(ctx context.Context, kind cache.Kind, ownerID int64) error
}

// CustomerServiceImpl implements CustomerService
type CustomerServiceImpl struct {
	txRunner     persistence.TxRunner
	customerRepo customer.Repository
	sequenceRepo sequence.Repository
	locationRepo location.Repository
	cache        CustomerCache
	clock        Clock
	logger       *slog.Logger
}

func NewCustomerService(
	logger *slog.Logger,
	txRunner persistence.TxRunner,
	customerRepo customer.Repository,
	sequenceRepo sequence.Repository,
	locationRepo location.Repository,
	customerCache CustomerCache,
	clock Clock,
) CustomerService {
	return &CustomerServiceImpl{
		txRunner:     txRunner,
		customerRepo: customerRepo,
		sequenceRepo: sequenceRepo,
		locationRepo: locationRepo,
		cache:        customerCache,
		clock:        clock,
		logger:       logger,
	}
}

func (s *CustomerServiceImpl) CreateCustomer(ctx context.Context, caller Caller, in CustomerInput) (*customer.Customer, error) {
	c, err := customer.NewCustomer(caller.OwnerID, in.Name, in.Phone, in.Email, in.Address,
		in.LocationID, caller.ActorID, s.clock.DateOr(in.AddedDate))
	if err != nil {
		return nil, err
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	if err := checkLocation(ctx, s.locationRepo, caller.OwnerID, in.LocationID); err != nil {
		return nil, err
	}

	// The code comes from the same transaction so a failed insert does not burn a serial
	err = s.txRunner.ExecuteTx(ctx, func(tx pgx.Tx) error {
		serial, err := s.sequenceRepo.WithTx(tx).Next(ctx, caller.OwnerID, sequence.Customers)
		if err != nil {
			return err
		}
		if c.Code, err = customer.FormatCode(serial); err != nil {
			return err
		}
		return s.customerRepo.WithTx(tx).Create(ctx, c)
	})
	if err != nil {
		s.logger.Error("Failed to create customer",
			"owner_id", caller.OwnerID,
			"correlation_id", caller.CorrelationID,
			"error", err)
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	s.invalidate(ctx, caller.OwnerID)
	s.logger.Info("Customer created",
		"owner_id", c.OwnerID,
		"customer_id", c.ID,
		"code", c.Code,
		"correlation_id", caller.CorrelationID)
	return c, nil
}

func (s *CustomerServiceImpl) GetCustomer(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	return s.customerRepo.GetByID(ctx, ownerID, id)
}

func (s *CustomerServiceImpl) ListCustomers(ctx context.Context, ownerID int64, filter customer.ListFilter, page, perPage int) ([]*customer.Customer, int64, error) {
	customers, err := s.customerRepo.List(ctx, ownerID, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.customerRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}

	return customers, total, nil
}

func (s *CustomerServiceImpl) ActiveCustomers(ctx context.Context, ownerID int64) ([]*customer.Customer, error) {
	if cached, ok, err := s.cache.GetCustomers(ctx, ownerID); err != nil {
		s.logger.Warn("Customer cache read failed, falling back to database", "owner_id", ownerID, "error", err)
	} else if ok {
		return cached, nil
	}

	customers, err := s.customerRepo.List(ctx, ownerID, customer.ListFilter{ActiveOnly: true}, activeListLimit, 0)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetCustomers(ctx, ownerID, customers); err != nil {
		s.logger.Warn("Failed to cache customers", "owner_id", ownerID, "error", err)
	}
	return customers, nil
}

func (s *CustomerServiceImpl) UpdateCustomer(ctx context.Context, ownerID, id int64, in CustomerInput) (*customer.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	updated, err := customer.NewCustomer(ownerID, in.Name, in.Phone, in.Email, in.Address, in.LocationID, c.AddedBy, c.AddedDate)
	if err != nil {
		return nil, err
	}
	if err := checkLocation(ctx, s.locationRepo, ownerID, in.LocationID); err != nil {
		return nil, err
	}
	c.Name = updated.Name
	c.Phone = updated.Phone
	c.Email = updated.Email
	c.Address = updated.Address
	c.LocationID = updated.LocationID
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	c.UpdatedAt = time.Now()

	if err := s.customerRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return c, nil
}

func (s *CustomerServiceImpl) DeleteCustomer(ctx context.Context, ownerID, id int64) error {
	if err := s.customerRepo.SoftDelete(ctx, ownerID, id); err != nil {
		if !errors.Is(err, customer.ErrCustomerNotFound{}) {
			s.logger.Error("Failed to delete customer", "owner_id", ownerID, "customer_id", id, "error", err)
		}
		return err
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("Customer deleted", "owner_id", ownerID, "customer_id", id)
	return nil
}

// invalidate drops the cached list. A stale cache only delays visibility until the TTL.
func (s *CustomerServiceImpl) invalidate(ctx context.Context, ownerID int64) {
	if err := s.cache.Invalidate(ctx, cache.KindCustomers, ownerID); err != nil {
		s.logger.Warn("Failed to invalidate customer cache", "owner_id", ownerID, "error", err)
	}
}
