package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/money"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

// CreateInput captures a new vendor listing.
type CreateInput struct {
	VendorID    uuid.UUID
	VendorRole  enums.Role
	Title       string
	Description *string
	Price       decimal.Decimal
	Stock       int
}

// UpdateInput captures a partial update to an existing listing.
// Nil fields are left untouched.
type UpdateInput struct {
	ProductID   uuid.UUID
	VendorID    uuid.UUID
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Update(ctx context.Context, input UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, vendorID, productID uuid.UUID) error
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	ListPublic(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	ListMine(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*ProductList, error)
}

type service struct {
	repo Repository
}

// NewService builds the products service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	product := &models.Product{
		VendorID:    input.VendorID,
		Title:       title,
		Description: input.Description,
		Price:       money.RoundHalfUp(input.Price),
		Stock:       input.Stock,
		IsActive:    true,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Product, error) {
	product, err := s.loadOwned(ctx, input.VendorID, input.ProductID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		updates["title"] = title
		product.Title = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
		product.Description = input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must not be negative")
		}
		rounded := money.RoundHalfUp(*input.Price)
		updates["price"] = rounded
		product.Price = rounded
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
		}
		updates["stock"] = *input.Stock
		product.Stock = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
		product.IsActive = *input.IsActive
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return product, nil
}

func (s *service) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	product, err := s.loadOwned(ctx, vendorID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) ListPublic(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error) {
	list, err := s.repo.ListActive(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) ListMine(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*ProductList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	return list, nil
}

func (s *service) loadOwned(ctx context.Context, vendorID, productID uuid.UUID) (*models.Product, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to vendor")
	}
	return product, nil
}
