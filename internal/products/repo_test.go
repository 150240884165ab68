package products

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/pkg/db/models"
	"github.com/storefronthq/storefront-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func insertListing(t *testing.T, db *gorm.DB, vendorID uuid.UUID, title string, active bool, createdAt time.Time) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:        uuid.New(),
		VendorID:  vendorID,
		Title:     title,
		Price:     decimal.RequireFromString("9.99"),
		Stock:     5,
		IsActive:  active,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestListActiveFiltersAndSearch(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	vendorID := uuid.New()
	otherVendor := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)

	insertListing(t, db, vendorID, "Blue Mug", true, base)
	insertListing(t, db, vendorID, "Red Mug", false, base.Add(time.Second))
	insertListing(t, db, otherVendor, "Blue Plate", true, base.Add(2*time.Second))

	list, err := repo.ListActive(context.Background(), pagination.Params{}, ListFilters{Search: "mug"})
	require.NoError(t, err)
	require.Len(t, list.Products, 1)
	assert.Equal(t, "Blue Mug", list.Products[0].Title)

	list, err = repo.ListActive(context.Background(), pagination.Params{}, ListFilters{VendorID: &vendorID})
	require.NoError(t, err)
	require.Len(t, list.Products, 1, "inactive listings stay hidden")

	list, err = repo.ListByVendor(context.Background(), vendorID, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list.Products, 2, "vendor listing includes inactive rows")
}

func TestListActiveCursorPagination(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	vendorID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 5; i++ {
		insertListing(t, db, vendorID, fmt.Sprintf("Item %d", i), true, base.Add(time.Duration(i)*time.Second))
	}

	first, err := repo.ListActive(context.Background(), pagination.Params{Limit: 2}, ListFilters{VendorID: &vendorID})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, "Item 4", first.Products[0].Title)
	assert.Equal(t, "Item 3", first.Products[1].Title)

	second, err := repo.ListActive(context.Background(), pagination.Params{Limit: 2, Cursor: first.NextCursor}, ListFilters{VendorID: &vendorID})
	require.NoError(t, err)
	require.Len(t, second.Products, 2)
	require.NotEmpty(t, second.NextCursor)
	assert.Equal(t, "Item 2", second.Products[0].Title)
	assert.Equal(t, "Item 1", second.Products[1].Title)

	last, err := repo.ListActive(context.Background(), pagination.Params{Limit: 2, Cursor: second.NextCursor}, ListFilters{VendorID: &vendorID})
	require.NoError(t, err)
	require.Len(t, last.Products, 1)
	assert.Empty(t, last.NextCursor)
	assert.Equal(t, "Item 0", last.Products[0].Title)
}

func TestListActiveRejectsBadCursor(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ListActive(context.Background(), pagination.Params{Cursor: "not-a-cursor"}, ListFilters{})
	assert.Error(t, err)
}

func TestUpdateAndDeleteListing(t *testing.T) {
	db := setupProductsTestDB(t)
	repo := NewRepository(db)

	product := insertListing(t, db, uuid.New(), "Old Title", true, time.Now().UTC())

	require.NoError(t, repo.Update(context.Background(), product.ID, map[string]any{
		"title": "New Title",
		"stock": 42,
	}))

	reloaded, err := repo.FindByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Title", reloaded.Title)
	assert.Equal(t, 42, reloaded.Stock)

	require.NoError(t, repo.Delete(context.Background(), product.ID))
	_, err = repo.FindByID(context.Background(), product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
