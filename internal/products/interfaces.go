package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

// ListFilters narrows the public catalog listing.
type ListFilters struct {
	VendorID *uuid.UUID
	Search   string
}

// ProductList is one page of products plus the cursor for the next page.
type ProductList struct {
	Products   []models.Product
	NextCursor string
}

// Repository defines persistence operations for the products table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListActive(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductList, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*ProductList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
}
