package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/cart"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/money"
	"github.com/storefronthq/storefront-backend/pkg/stripe"
)

type intentCreator interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*stripe.Intent, error)
}

// Quote is the client-facing result of intent creation.
type Quote struct {
	IntentID     string
	ClientSecret string
	AmountCents  int64
	Amount       decimal.Decimal
	Currency     enums.Currency
}

// Service mints provider payment intents priced from the caller's cart.
type Service interface {
	CreateIntent(ctx context.Context, userID uuid.UUID) (*Quote, error)
}

type service struct {
	carts    cart.Repository
	provider intentCreator
}

// NewService builds the payments service.
func NewService(carts cart.Repository, provider intentCreator) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if provider == nil {
		return nil, fmt.Errorf("payment provider required")
	}
	return &service{carts: carts, provider: provider}, nil
}

// CreateIntent computes the same rounded cart total checkout would, validates
// stock best-effort, and asks the provider for an intent in minor units. No
// order is created and no stock is touched; the authoritative stock check
// happens again inside the checkout transaction.
func (s *service) CreateIntent(ctx context.Context, userID uuid.UUID) (*Quote, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	userCart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(userCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	total := decimal.Zero
	for _, item := range userCart.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item quantity must be at least 1")
		}
		if item.Product == nil || !item.Product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product no longer available").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
		if item.Product.Stock < item.Quantity {
			return nil, insufficientStock(item.Product)
		}
		unit := money.RoundHalfUp(item.Product.Price)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	total = money.RoundHalfUp(total)

	currency := enums.CurrencyUSD
	amountCents := money.ToCents(total)
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart total must be positive")
	}

	intent, err := s.provider.CreatePaymentIntent(ctx, amountCents, currency.String(), map[string]string{
		"user_id": userID.String(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent")
	}

	return &Quote{
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  amountCents,
		Amount:       total,
		Currency:     currency,
	}, nil
}

func insufficientStock(product *models.Product) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %q", product.Title)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"available":  product.Stock,
		})
}
