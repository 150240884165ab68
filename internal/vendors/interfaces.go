package vendors

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
)

// Repository defines persistence operations for vendor applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.VendorProfile) (*models.VendorProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.VendorProfile, error)
	ListByStatus(ctx context.Context, status enums.VendorStatus) ([]models.VendorProfile, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}
