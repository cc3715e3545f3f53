package service

import (
	"context"
	"log/slog"

	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/jar"
)

// JarServiceImpl implements JarService
type JarServiceImpl struct {
	jarRepo      jar.Repository
	customerRepo customer.Repository
	clock        Clock
	logger       *slog.Logger
}

func NewJarService(logger *slog.Logger, jarRepo jar.Repository, customerRepo customer.Repository, clock Clock) JarService {
	return &JarServiceImpl{
		jarRepo:      jarRepo,
		customerRepo: customerRepo,
		clock:        clock,
		logger:       logger,
	}
}

func (s *JarServiceImpl) RecordMovement(ctx context.Context, caller Caller, in JarInput) (*jar.Counter, error) {
	counter, err := jar.NewCounter(caller.OwnerID, in.CustomerID, nil, in.InJar, in.OutJar,
		s.clock.DateOr(in.CounterDate), in.Remark, caller.ActorID)
	if err != nil {
		return nil, err
	}

	if _, err := s.customerRepo.GetByID(ctx, caller.OwnerID, in.CustomerID); err != nil {
		return nil, err
	}

	if err := s.jarRepo.Create(ctx, counter); err != nil {
		return nil, err
	}

	s.logger.Info("Jar movement recorded",
		"owner_id", caller.OwnerID,
		"customer_id", in.CustomerID,
		"in_jar", in.InJar,
		"out_jar", in.OutJar,
		"correlation_id", caller.CorrelationID)
	return counter, nil
}

func (s *JarServiceImpl) ListMovements(ctx context.Context, ownerID int64, filter jar.ListFilter, page, perPage int) ([]*jar.Counter, int64, error) {
	list, err := s.jarRepo.List(ctx, ownerID, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.jarRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (s *JarServiceImpl) JarsHeld(ctx context.Context, ownerID, customerID int64) (int64, error) {
	if _, err := s.customerRepo.GetByID(ctx, ownerID, customerID); err != nil {
		return 0, err
	}
	return s.jarRepo.JarsHeld(ctx, ownerID, customerID)
}
