package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
)

// Repository defines the persistence operations the checkout transaction needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	LockProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}
