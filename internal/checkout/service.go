package checkout

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/money"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Input carries the checkout request. PaymentIntentID links the order to a
// provider intent minted before checkout, when the client used the intent flow.
type Input struct {
	UserID          uuid.UUID
	PaymentIntentID *string
}

// Service converts a cart into a pending order.
type Service interface {
	Checkout(ctx context.Context, input Input) (*models.Order, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds the checkout service with the required dependencies.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("checkout repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Checkout snapshots the user's cart into a pending order inside a single
// transaction. Stock is re-validated under row locks and decremented with a
// guarded update; any shortfall aborts the whole order.
func (s *service) Checkout(ctx context.Context, input Input) (*models.Order, error) {
	userID := input.UserID
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindCartWithItems(ctx, userID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		for _, item := range cart.Items {
			if item.Quantity < 1 {
				return pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be at least 1")
			}
		}

		productIDs := make([]uuid.UUID, 0, len(cart.Items))
		for _, item := range cart.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		sort.Slice(productIDs, func(i, j int) bool {
			return productIDs[i].String() < productIDs[j].String()
		})

		locked, err := repo.LockProducts(ctx, productIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock products")
		}
		byID := make(map[uuid.UUID]*models.Product, len(locked))
		for i := range locked {
			byID[locked[i].ID] = &locked[i]
		}

		// validate everything before any write so the order is all-or-nothing
		for _, item := range cart.Items {
			product, ok := byID[item.ProductID]
			if !ok || !product.IsActive {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "product no longer available").
					WithDetails(map[string]any{"product_id": item.ProductID})
			}
			if product.Stock < item.Quantity {
				return insufficientStock(product)
			}
		}

		total := decimal.Zero
		orderItems := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			product := byID[item.ProductID]
			unit := money.RoundHalfUp(product.Price)
			total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))

			productID := product.ID
			vendorID := product.VendorID
			orderItems = append(orderItems, models.OrderItem{
				ProductID:     &productID,
				VendorID:      &vendorID,
				TitleSnapshot: product.Title,
				UnitPrice:     unit,
				Quantity:      item.Quantity,
			})
		}
		total = money.RoundHalfUp(total)

		created, err := repo.CreateOrder(ctx, &models.Order{
			UserID:                userID,
			Status:                enums.OrderStatusPending,
			TotalAmount:           total,
			Currency:              enums.CurrencyUSD,
			StripePaymentIntentID: input.PaymentIntentID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for _, item := range cart.Items {
			ok, err := repo.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				// guard refused the write even under lock; abort everything
				return insufficientStock(byID[item.ProductID])
			}
		}

		for i := range orderItems {
			orderItems[i].OrderID = created.ID
		}
		if err := repo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		if err := repo.ClearCart(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		created.Items = orderItems
		order = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func insufficientStock(product *models.Product) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %q", product.Title)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"available":  product.Stock,
		})
}
