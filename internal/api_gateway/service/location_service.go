package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jar-backoffice/internal/domain/location"
)

// LocationServiceImpl implements LocationService
type LocationServiceImpl struct {
	locationRepo location.Repository
	logger       *slog.Logger
}

func NewLocationService(logger *slog.Logger, locationRepo location.Repository) LocationService {
	return &LocationServiceImpl{
		locationRepo: locationRepo,
		logger:       logger,
	}
}

func (s *LocationServiceImpl) CreateLocation(ctx context.Context, ownerID int64, name string) (*location.Location, error) {
	l, err := location.NewLocation(ownerID, name)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Location created", "owner_id", ownerID, "location_id", l.ID)
	return l, nil
}

func (s *LocationServiceImpl) GetLocation(ctx context.Context, ownerID, id int64) (*location.Location, error) {
	return s.locationRepo.GetByID(ctx, ownerID, id)
}

func (s *LocationServiceImpl) ListLocations(ctx context.Context, ownerID int64, search string, page, perPage int) ([]*location.Location, int64, error) {
	list, err := s.locationRepo.List(ctx, ownerID, search, perPage, offset(page, perPage))
	if err != nil {
		return nil, 0, err
	}

	total, err := s.locationRepo.Count(ctx, ownerID, search)
	if err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (s *LocationServiceImpl) RenameLocation(ctx context.Context, ownerID, id int64, name string) (*location.Location, error) {
	l, err := s.locationRepo.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := l.Rename(name); err != nil {
		return nil, err
	}
	if err := s.locationRepo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// DeleteLocation leaves customers and expenses pointing at the location untouched
func (s *LocationServiceImpl) DeleteLocation(ctx context.Context, ownerID, id int64) error {
	if err := s.locationRepo.SoftDelete(ctx, ownerID, id); err != nil {
		if !errors.Is(err, location.ErrLocationNotFound{}) {
			s.logger.Error("Failed to delete location", "owner_id", ownerID, "location_id", id, "error", err)
		}
		return err
	}

	s.logger.Info("Location deleted", "owner_id", ownerID, "location_id", id)
	return nil
}

// checkLocation confirms an optional location reference is a live location of the owner
func checkLocation(ctx context.Context, repo location.Repository, ownerID int64, id *int64) error {
	if id == nil {
		return nil
	}
	_, err := repo.GetByID(ctx, ownerID, *id)
	return err
}
