package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefronthq/storefront-backend/internal/products"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefronthq/storefront-backend/pkg/errors"
	"github.com/storefronthq/storefront-backend/pkg/money"
)

// Summary is a cart with live-priced line subtotals and total.
type Summary struct {
	Cart  *models.Cart
	Lines []Line
	Total decimal.Decimal
}

// Line pairs a cart item with its live-priced subtotal.
type Line struct {
	Item     models.CartItem
	Subtotal decimal.Decimal
}

// AddItemInput captures a cart mutation request.
type AddItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// UpdateItemInput sets an absolute quantity for a cart line.
type UpdateItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int
}

// Service defines cart operations.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Summary, error)
	AddItem(ctx context.Context, input AddItemInput) (*Summary, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*Summary, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Summary, error)
}

type service struct {
	repo     Repository
	products products.Repository
}

// NewService builds the cart service.
func NewService(repo Repository, productsRepo products.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &service{repo: repo, products: productsRepo}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return summarize(cart), nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput) (*Summary, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadSellable(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	cart, err := s.repo.GetOrCreate(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	existing, err := s.repo.FindItem(ctx, cart.ID, product.ID)
	switch {
	case err == nil:
		quantity := existing.Quantity + input.Quantity
		if quantity > product.Stock {
			return nil, insufficientStock(product)
		}
		if err := s.repo.UpdateItemQuantity(ctx, existing.ID, quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
	case err == gorm.ErrRecordNotFound:
		if input.Quantity > product.Stock {
			return nil, insufficientStock(product)
		}
		item := &models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.reload(ctx, input.UserID)
}

func (s *service) UpdateItem(ctx context.Context, input UpdateItemInput) (*Summary, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.loadSellable(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Quantity > product.Stock {
		return nil, insufficientStock(product)
	}

	cart, err := s.repo.GetOrCreate(ctx, input.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, product.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.UpdateItemQuantity(ctx, item.ID, input.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}

	return s.reload(ctx, input.UserID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*Summary, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}

	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}
	if err := s.repo.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}

	return s.reload(ctx, userID)
}

func (s *service) reload(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload cart")
	}
	return summarize(cart), nil
}

func (s *service) loadSellable(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func insufficientStock(product *models.Product) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("insufficient stock for %q", product.Title)).
		WithDetails(map[string]any{
			"product_id": product.ID,
			"available":  product.Stock,
		})
}

func summarize(cart *models.Cart) *Summary {
	summary := &Summary{
		Cart:  cart,
		Lines: make([]Line, 0, len(cart.Items)),
		Total: decimal.Zero,
	}
	for _, item := range cart.Items {
		line := Line{Item: item}
		if item.Product != nil {
			unit := money.RoundHalfUp(item.Product.Price)
			line.Subtotal = unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		summary.Total = summary.Total.Add(line.Subtotal)
		summary.Lines = append(summary.Lines, line)
	}
	summary.Total = money.RoundHalfUp(summary.Total)
	return summary
}
