package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/products"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

type stubProductsRepo struct {
	byID map[uuid.UUID]*models.Product
}

func (r *stubProductsRepo) WithTx(tx *gorm.DB) products.Repository { return r }

func (r *stubProductsRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	return product, nil
}

func (r *stubProductsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (r *stubProductsRepo) ListActive(ctx context.Context, params pagination.Params, filters products.ListFilters) (*products.ProductList, error) {
	return &products.ProductList{}, nil
}

func (r *stubProductsRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*products.ProductList, error) {
	return &products.ProductList{}, nil
}

func (r *stubProductsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (r *stubProductsRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type stubCartRepo struct {
	products *stubProductsRepo
	carts    map[uuid.UUID]*models.Cart
	items    map[uuid.UUID]*models.CartItem
}

func newStubCartRepo(productsRepo *stubProductsRepo) *stubCartRepo {
	return &stubCartRepo{
		products: productsRepo,
		carts:    map[uuid.UUID]*models.Cart{},
		items:    map[uuid.UUID]*models.CartItem{},
	}
}

func (r *stubCartRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubCartRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if _, ok := r.carts[userID]; !ok {
		r.carts[userID] = &models.Cart{ID: uuid.New(), UserID: userID}
	}
	return r.FindByUserID(ctx, userID)
}

func (r *stubCartRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, ok := r.carts[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	loaded := *cart
	loaded.Items = nil
	for _, item := range r.items {
		if item.CartID != cart.ID {
			continue
		}
		withProduct := *item
		if product, ok := r.products.byID[item.ProductID]; ok {
			withProduct.Product = product
		}
		loaded.Items = append(loaded.Items, withProduct)
	}
	return &loaded, nil
}

func (r *stubCartRepo) FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error) {
	for _, item := range r.items {
		if item.CartID == cartID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	item.ID = uuid.New()
	r.items[item.ID] = item
	return item, nil
}

func (r *stubCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	item, ok := r.items[itemID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *stubCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	delete(r.items, itemID)
	return nil
}

func (r *stubCartRepo) ClearByUserID(ctx context.Context, userID uuid.UUID) error {
	cart, ok := r.carts[userID]
	if !ok {
		return nil
	}
	for id, item := range r.items {
		if item.CartID == cart.ID {
			delete(r.items, id)
		}
	}
	return nil
}

func seedSellable(productsRepo *stubProductsRepo, price string, stock int) *models.Product {
	product := &models.Product{
		ID:       uuid.New(),
		VendorID: uuid.New(),
		Title:    "widget",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	productsRepo.byID[product.ID] = product
	return product
}

func newTestService(t *testing.T) (Service, *stubCartRepo, *stubProductsRepo) {
	t.Helper()
	productsRepo := &stubProductsRepo{byID: map[uuid.UUID]*models.Product{}}
	cartRepo := newStubCartRepo(productsRepo)
	svc, err := NewService(cartRepo, productsRepo)
	require.NoError(t, err)
	return svc, cartRepo, productsRepo
}

func TestAddItemAccumulatesQuantity(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	userID := uuid.New()
	product := seedSellable(productsRepo, "4.50", 10)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	summary, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 5, summary.Lines[0].Item.Quantity)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("22.50")), "total %s", summary.Total)
}

func TestAddItemBoundedByStock(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	userID := uuid.New()
	product := seedSellable(productsRepo, "4.50", 4)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)

	_, err = svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 2})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	product := seedSellable(productsRepo, "4.50", 10)
	product.IsActive = false

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: uuid.New(), ProductID: product.ID, Quantity: 1})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	userID := uuid.New()
	product := seedSellable(productsRepo, "2.00", 10)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)

	summary, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: userID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	require.Len(t, summary.Lines, 1)
	assert.Equal(t, 2, summary.Lines[0].Item.Quantity)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("4.00")))
}

func TestUpdateItemMissingLineNotFound(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	product := seedSellable(productsRepo, "2.00", 10)

	_, err := svc.UpdateItem(context.Background(), UpdateItemInput{UserID: uuid.New(), ProductID: product.ID, Quantity: 1})
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRemoveItemDropsLine(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	userID := uuid.New()
	product := seedSellable(productsRepo, "2.00", 10)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)

	summary, err := svc.RemoveItem(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Lines)
	assert.True(t, summary.Total.IsZero())
}

func TestGetLivePricesLines(t *testing.T) {
	t.Parallel()

	svc, _, productsRepo := newTestService(t)
	userID := uuid.New()
	product := seedSellable(productsRepo, "29.99", 10)

	_, err := svc.AddItem(context.Background(), AddItemInput{UserID: userID, ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)

	// vendor reprices; the cart reflects the live price on the next read
	product.Price = decimal.RequireFromString("24.99")

	summary, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, summary.Lines, 1)
	assert.True(t, summary.Lines[0].Subtotal.Equal(decimal.RequireFromString("49.98")))
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("49.98")))
}
