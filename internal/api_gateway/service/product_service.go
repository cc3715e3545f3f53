package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jar-backoffice/internal/data/cache"
	"github.com/jar-backoffice/internal/domain/product"
)

type ProductCache interface {
	GetProducts(ctx context.Context, ownerID int64) ([]*product.Product, bool, error)
	SetProducts(ctx context.Context, ownerID int64, products []*product.Product) error
	Invalidate(ctx context.Context, kind cache.Kind, ownerID int64) error
}

// ProductServiceImpl implements ProductService
type ProductServiceImpl struct {
	productRepo product.Repository
	cache       ProductCache
	logger      *slog.Logger
}

func NewProductService(logger *slog.Logger, productRepo product.Repository, productCache ProductCache) ProductService {
	return &ProductServiceImpl{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger,
	}
}

func (s *ProductServiceImpl) CreateProduct(ctx context.Context, ownerID int64, p *product.Product) (*product.Product, error) {
	p.OwnerID = ownerID
	if err := p.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.logger.Info("Product created", "owner_id", ownerID, "product_id", p.ID)
	return p, nil
}

func (s *ProductServiceImpl) GetProduct(ctx context.Context, ownerID, id int64) (*product.Product, error) {
	return s.productRepo.GetByID(ctx, ownerID, id)
}

func (s *ProductServiceImpl) ListProducts(ctx context.Context, ownerID int64) ([]*product.Product, error) {
	if cached, ok, err := s.cache.GetProducts(ctx, ownerID); err != nil {
		s.logger.Warn("Product cache read failed, falling back to database", "owner_id", ownerID, "error", err)
	} else if ok {
		return cached, nil
	}

	products, err := s.productRepo.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProducts(ctx, ownerID, products); err != nil {
		s.logger.Warn("Failed to cache products", "owner_id", ownerID, "error", err)
	}
	return products, nil
}

func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, ownerID int64, p *product.Product) (*product.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, ownerID, p.ID)
	if err != nil {
		return nil, err
	}

	p.OwnerID = ownerID
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	return p, nil
}

func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, ownerID, id int64) error {
	if err := s.productRepo.SoftDelete(ctx, ownerID, id); err != nil {
		if !errors.Is(err, product.ErrProductNotFound{}) {
			s.logger.Error("Failed to delete product", "owner_id", ownerID, "product_id", id, "error", err)
		}
		return err
	}

	s.invalidate(ctx, ownerID)
	return nil
}

func (s *ProductServiceImpl) invalidate(ctx context.Context, ownerID int64) {
	if err := s.cache.Invalidate(ctx, cache.KindProducts, ownerID); err != nil {
		s.logger.Warn("Failed to invalidate product cache", "owner_id", ownerID, "error", err)
	}
}
