package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/domain/expense"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/location"
)

// ExpenseServiceImpl implements ExpenseService
type ExpenseServiceImpl struct {
	groupRepo    expense.GroupRepository
	expenseRepo  expense.Repository
	locationRepo location.Repository
	clock        Clock
	logger       *slog.Logger
}

func NewExpenseService(
	logger *slog.Logger,
	groupRepo expense.GroupRepository,
	expenseRepo expense.Repository,
	locationRepo location.Repository,
	clock Clock,
) ExpenseService {
	return &ExpenseServiceImpl{
		groupRepo:    groupRepo,
		expenseRepo:  expenseRepo,
		locationRepo: locationRepo,
		clock:        clock,
		logger:       logger,
	}
}

func (s *ExpenseServiceImpl) CreateGroup(ctx context.Context, ownerID int64, name string) (*expense.Group, error) {
	g, err := expense.NewGroup(ownerID, name)
	if err != nil {
		return nil, err
	}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.logger.Info("Expense group created", "owner_id", ownerID, "group_id", g.ID)
	return g, nil
}

func (s *ExpenseServiceImpl) ListGroups(ctx context.Context, ownerID int64) ([]*expense.Group, error) {
	return s.groupRepo.ListAll(ctx, ownerID)
}

func (s *ExpenseServiceImpl) RenameGroup(ctx context.Context, ownerID, id int64, name string) (*expense.Group, error) {
	g, err := s.groupRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := g.Rename(name); err != nil {
		return nil, err
	}
	if err := s.groupRepo.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *ExpenseServiceImpl) DeleteGroup(ctx context.Context, ownerID, id int64) error {
	if err := s.groupRepo.SoftDelete(ctx, ownerID, id); err != nil {
		if !errors.Is(err, expense.ErrGroupNotFound{}) {
			s.logger.Error("Failed to delete expense group", "owner_id", ownerID, "group_id", id, "error", err)
		}
		return err
	}
	return nil
}

// build parses and checks an expense write. The group and location must be live and the owner's.
func (s *ExpenseServiceImpl) build(ctx context.Context, caller Caller, in ExpenseInput, expenseDate time.Time) (*expense.Expense, error) {
	amount, err := ledger.ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	e, err := expense.NewExpense(caller.OwnerID, in.GroupID, in.LocationID, expenseDate, amount, in.Description, caller.ActorID)
	if err != nil {
		return nil, err
	}

	g, err := s.groupRepo.GetByID(ctx, caller.OwnerID, in.GroupID)
	if err != nil {
		return nil, err
	}
	e.GroupName = g.Name

	if err := checkLocation(ctx, s.locationRepo, caller.OwnerID, in.LocationID); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseServiceImpl) RecordExpense(ctx context.Context, caller Caller, in ExpenseInput) (*expense.Expense, error) {
	e, err := s.build(ctx, caller, in, s.clock.DateOr(in.ExpenseDate))
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Create(ctx, e); err != nil {
		s.logger.Error("Failed to record expense",
			"owner_id", caller.OwnerID,
			"group_id", in.GroupID,
			"correlation_id", caller.CorrelationID,
			"error", err)
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}

	s.logger.Info("Expense recorded",
		"owner_id", caller.OwnerID,
		"expense_id", e.ID,
		"amount", e.Amount.String(),
		"correlation_id", caller.CorrelationID)
	return e, nil
}

func (s *ExpenseServiceImpl) GetExpense(ctx context.Context, ownerID, id int64) (*expense.Expense, error) {
	return s.expenseRepo.GetByID(ctx, ownerID, id)
}

func (s *ExpenseServiceImpl) ListExpenses(ctx context.Context, ownerID int64, filter expense.ListFilter, page, perPage int) ([]*expense.Expense, int64, error) {
	if err := checkLocation(ctx, s.locationRepo, ownerID, filter.LocationID); err != nil {
		return nil, 0, err
	}

	list, err := s.expenseRepo.List(ctx, ownerID, filter, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.expenseRepo.Count(ctx, ownerID, filter)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// UpdateExpense keeps the original date unless a new one is given
func (s *ExpenseServiceImpl) UpdateExpense(ctx context.Context, caller Caller, id int64, in ExpenseInput) (*expense.Expense, error) {
	existing, err := s.expenseRepo.GetByID(ctx, caller.OwnerID, id)
	if err != nil {
		return nil, err
	}

	expenseDate := existing.ExpenseDate
	if !in.ExpenseDate.IsZero() {
		expenseDate = in.ExpenseDate
	}
	e, err := s.build(ctx, caller, in, expenseDate)
	if err != nil {
		return nil, err
	}
	e.ID = existing.ID
	e.AddedBy = existing.AddedBy
	e.CreatedAt = existing.CreatedAt

	if err := s.expenseRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *ExpenseServiceImpl) DeleteExpense(ctx context.Context, ownerID, id int64) error {
	if err := s.expenseRepo.SoftDelete(ctx, ownerID, id); err != nil {
		if !errors.Is(err, expense.ErrExpenseNotFound{}) {
			s.logger.Error("Failed to delete expense", "owner_id", ownerID, "expense_id", id, "error", err)
		}
		return err
	}
	return nil
}
