package service

import (
	"context"
	"log/slog"

	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/report"
	"github.com/jar-backoffice/internal/domain/shared"
)

// ReportServiceImpl implements ReportService
type ReportServiceImpl struct {
	reportRepo   report.Repository
	locationRepo location.Repository
	logger       *slog.Logger
}

func NewReportService(logger *slog.Logger, reportRepo report.Repository, locationRepo location.Repository) ReportService {
	return &ReportServiceImpl{
		reportRepo:   reportRepo,
		locationRepo: locationRepo,
		logger:       logger,
	}
}

// Summary answers ErrLocationNotFound for a location the owner does not have
func (s *ReportServiceImpl) Summary(ctx context.Context, ownerID int64, filter report.Filter) (*Summary, error) {
	if err := checkLocation(ctx, s.locationRepo, ownerID, filter.LocationID); err != nil {
		return nil, err
	}

	salesSummary, err := s.reportRepo.Sales(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	collections, err := s.reportRepo.Collections(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	jars, err := s.reportRepo.Jars(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	expenses, err := s.reportRepo.Expenses(ctx, ownerID, filter)
	if err != nil {
		return nil, err
	}

	return &Summary{
		From:        filter.Range.From.Format(shared.DateLayout),
		To:          filter.Range.To.Format(shared.DateLayout),
		Sales:       salesSummary,
		Collections: collections,
		Jars:        jars,
		NetJars:     jars.Net(),
		Expenses:    expenses,
		NetCash:     collections.Total.Sub(expenses.Total),
	}, nil
}

func (s *ReportServiceImpl) OutstandingBalances(ctx context.Context, ownerID int64, locationID *int64, page, perPage int) ([]*report.CustomerBalance, error) {
	if err := checkLocation(ctx, s.locationRepo, ownerID, locationID); err != nil {
		return nil, err
	}
	return s.reportRepo.OutstandingBalances(ctx, ownerID, locationID, perPage, offset(page, perPage))
}
