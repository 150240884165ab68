package wishlist

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/products"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

type pairKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

type stubRepo struct {
	items map[pairKey]*models.WishlistItem
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: map[pairKey]*models.WishlistItem{}}
}

func (r *stubRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.WishlistItem, error) {
	out := []models.WishlistItem{}
	for key, item := range r.items {
		if key.userID == userID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *stubRepo) Create(ctx context.Context, item *models.WishlistItem) (*models.WishlistItem, error) {
	key := pairKey{userID: item.UserID, productID: item.ProductID}
	if _, exists := r.items[key]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "idx_wishlist_user_product"`)
	}
	item.ID = uuid.New()
	r.items[key] = item
	return item, nil
}

func (r *stubRepo) Delete(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	key := pairKey{userID: userID, productID: productID}
	if _, exists := r.items[key]; !exists {
		return false, nil
	}
	delete(r.items, key)
	return true, nil
}

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

func newTestService(t *testing.T) (Service, *stubProductsRepo) {
	t.Helper()
	productsRepo := &stubProductsRepo{byID: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(newStubRepo(), productsRepo)
	require.NoError(t, err)
	return svc, productsRepo
}

func activeProduct(productsRepo *stubProductsRepo) *models.Product {
	product := &models.Product{ID: uuid.New(), Title: "widget", IsActive: true}
	productsRepo.byID[product.ID] = product
	return product
}

func TestAddAndListWishlist(t *testing.T) {
	t.Parallel()

	svc, productsRepo := newTestService(t)
	userID := uuid.New()
	product := activeProduct(productsRepo)

	item, err := svc.Add(context.Background(), userID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, item.ProductID)

	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestAddDuplicateConflicts(t *testing.T) {
	t.Parallel()

	svc, productsRepo := newTestService(t)
	userID := uuid.New()
	product := activeProduct(productsRepo)

	_, err := svc.Add(context.Background(), userID, product.ID)
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), userID, product.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeConflict, appErr.Code())
	assert.Equal(t, "product already in wishlist", appErr.Message())
}

func TestAddInactiveProductNotFound(t *testing.T) {
	t.Parallel()

	svc, productsRepo := newTestService(t)
	product := activeProduct(productsRepo)
	product.IsActive = false

	_, err := svc.Add(context.Background(), uuid.New(), product.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRemoveMissingItemNotFound(t *testing.T) {
	t.Parallel()

	svc, productsRepo := newTestService(t)
	product := activeProduct(productsRepo)

	err := svc.Remove(context.Background(), uuid.New(), product.ID)
	require.Error(t, err)

	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestRemoveDeletesItem(t *testing.T) {
	t.Parallel()

	svc, productsRepo := newTestService(t)
	userID := uuid.New()
	product := activeProduct(productsRepo)

	_, err := svc.Add(context.Background(), userID, product.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(context.Background(), userID, product.ID))

	items, err := svc.List(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
