package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
)

// Repository defines persistence operations for carts and cart items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ClearByUserID(ctx context.Context, userID uuid.UUID) error
}
