package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRepo struct {
	cart    *models.Cart
	cartErr error

	products map[uuid.UUID]*models.Product

	createdOrder *models.Order
	createdItems []models.OrderItem
	clearedCart  *uuid.UUID

	decrements map[uuid.UUID]int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:   map[uuid.UUID]*models.Product{},
		decrements: map[uuid.UUID]int{},
	}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) FindCartWithItems(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if r.cartErr != nil {
		return nil, r.cartErr
	}
	return r.cart, nil
}

func (r *stubRepo) LockProducts(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *stubRepo) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	product, ok := r.products[productID]
	if !ok || product.Stock < qty {
		return false, nil
	}
	product.Stock -= qty
	r.decrements[productID] += qty
	return true, nil
}

func (r *stubRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = uuid.New()
	r.createdOrder = order
	return order, nil
}

func (r *stubRepo) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	r.createdItems = items
	return nil
}

func (r *stubRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	r.clearedCart = &cartID
	return nil
}

func priced(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	price, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return price
}

func seedProduct(repo *stubRepo, price decimal.Decimal, stock int) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Title:    "widget",
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	repo.products[product.ID] = product
	return product
}

func cartWith(userID uuid.UUID, items ...models.CartItem) *models.Cart {
	return &models.Cart{ID: uuid.New(), UserID: userID, Items: items}
}

func TestCheckoutCreatesPendingOrderWithSnapshotTotals(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	product := seedProduct(repo, priced(t, "29.99"), 10)
	repo.cart = cartWith(userID, models.CartItem{ProductID: product.ID, Quantity: 2})

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	intentID := "pi_test_123"
	order, err := svc.Checkout(context.Background(), Input{UserID: userID, PaymentIntentID: &intentID})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.Equal(t, enums.CurrencyUSD, order.Currency)
	assert.True(t, order.TotalAmount.Equal(priced(t, "59.98")), "total %s", order.TotalAmount)
	require.NotNil(t, order.StripePaymentIntentID)
	assert.Equal(t, intentID, *order.StripePaymentIntentID)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "widget", item.TitleSnapshot)
	assert.True(t, item.UnitPrice.Equal(priced(t, "29.99")))
	assert.Equal(t, 2, item.Quantity)
	require.NotNil(t, item.VendorID)
	assert.Equal(t, product.VendorID, *item.VendorID)

	assert.Equal(t, 8, repo.products[product.ID].Stock)
	require.NotNil(t, repo.clearedCart)
	assert.Equal(t, repo.cart.ID, *repo.clearedCart)
}

func TestCheckoutInsufficientStockAbortsWholeOrder(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	plenty := seedProduct(repo, priced(t, "5.00"), 100)
	scarce := seedProduct(repo, priced(t, "9.50"), 10)
	repo.cart = cartWith(userID,
		models.CartItem{ProductID: plenty.ID, Quantity: 1},
		models.CartItem{ProductID: scarce.ID, Quantity: 15},
	)

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	order, err := svc.Checkout(context.Background(), Input{UserID: userID})
	require.Error(t, err)
	assert.Nil(t, order)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	assert.Contains(t, appErr.Message(), "insufficient stock")

	// nothing written: stock untouched, no order, cart intact
	assert.Equal(t, 100, repo.products[plenty.ID].Stock)
	assert.Equal(t, 10, repo.products[scarce.ID].Stock)
	assert.Nil(t, repo.createdOrder)
	assert.Nil(t, repo.clearedCart)
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	repo.cart = cartWith(userID)

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), Input{UserID: userID})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "cart is empty", appErr.Message())
}

func TestCheckoutMissingCartTreatedAsEmpty(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	repo.cartErr = gorm.ErrRecordNotFound

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), Input{UserID: uuid.New()})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
	assert.Equal(t, "cart is empty", appErr.Message())
}

func TestCheckoutInvalidQuantityRejected(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	product := seedProduct(repo, priced(t, "5.00"), 10)
	repo.cart = cartWith(userID, models.CartItem{ProductID: product.ID, Quantity: 0})

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), Input{UserID: userID})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
}

func TestCheckoutInactiveProductRejected(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	product := seedProduct(repo, priced(t, "5.00"), 10)
	product.IsActive = false
	repo.cart = cartWith(userID, models.CartItem{ProductID: product.ID, Quantity: 1})

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), Input{UserID: userID})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
	assert.Equal(t, "product no longer available", appErr.Message())
}

func TestCheckoutRoundsUnitPricesBeforeTotaling(t *testing.T) {
	t.Parallel()

	repo := newStubRepo()
	userID := uuid.New()
	product := seedProduct(repo, priced(t, "10.005"), 10)
	repo.cart = cartWith(userID, models.CartItem{ProductID: product.ID, Quantity: 3})

	svc, err := NewService(repo, stubTxRunner{})
	require.NoError(t, err)

	order, err := svc.Checkout(context.Background(), Input{UserID: userID})
	require.NoError(t, err)

	// 10.005 rounds half-up to 10.01 per unit before the quantity multiply
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(priced(t, "10.01")))
	assert.True(t, order.TotalAmount.Equal(priced(t, "30.03")), "total %s", order.TotalAmount)
}

func TestCheckoutRequiresUserIdentity(t *testing.T) {
	t.Parallel()

	svc, err := NewService(newStubRepo(), stubTxRunner{})
	require.NoError(t, err)

	_, err = svc.Checkout(context.Background(), Input{})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeUnauthorized, appErr.Code())
}
