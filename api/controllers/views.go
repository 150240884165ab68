package controllers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefronthq/storefront-backend/internal/cart"
	"github.com/storefronthq/storefront-backend/pkg/db/models"
)

// View types shape the JSON surface; persistence models never marshal directly.

type userView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserView(user *models.User) userView {
	return userView{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt,
	}
}

type productView struct {
	ID          uuid.UUID       `json:"id"`
	VendorID    uuid.UUID       `json:"vendor_id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newProductView(product *models.Product) productView {
	return productView{
		ID:          product.ID,
		VendorID:    product.VendorID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Stock:       product.Stock,
		IsActive:    product.IsActive,
		CreatedAt:   product.CreatedAt,
	}
}

type productListView struct {
	Products   []productView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

type cartLineView struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type cartView struct {
	ID    uuid.UUID       `json:"id"`
	Items []cartLineView  `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newCartView(summary *cart.Summary) cartView {
	view := cartView{
		ID:    summary.Cart.ID,
		Items: make([]cartLineView, 0, len(summary.Lines)),
		Total: summary.Total,
	}
	for _, line := range summary.Lines {
		lv := cartLineView{
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			Subtotal:  line.Subtotal,
		}
		if line.Item.Product != nil {
			lv.Title = line.Item.Product.Title
			lv.UnitPrice = line.Item.Product.Price
		}
		view.Items = append(view.Items, lv)
	}
	return view
}

type orderItemView struct {
	ProductID *uuid.UUID      `json:"product_id,omitempty"`
	VendorID  *uuid.UUID      `json:"vendor_id,omitempty"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderView struct {
	ID              uuid.UUID       `json:"id"`
	Status          string          `json:"status"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	PaymentIntentID *string         `json:"payment_intent_id,omitempty"`
	Items           []orderItemView `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

func newOrderView(order *models.Order) orderView {
	view := orderView{
		ID:              order.ID,
		Status:          order.Status.String(),
		TotalAmount:     order.TotalAmount,
		Currency:        order.Currency.String(),
		PaymentIntentID: order.StripePaymentIntentID,
		Items:           make([]orderItemView, 0, len(order.Items)),
		CreatedAt:       order.CreatedAt,
	}
	for i := range order.Items {
		item := order.Items[i]
		view.Items = append(view.Items, orderItemView{
			ProductID: item.ProductID,
			VendorID:  item.VendorID,
			Title:     item.TitleSnapshot,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		})
	}
	return view
}

type orderListView struct {
	Orders     []orderView `json:"orders"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func newOrderListView(orders []models.Order, nextCursor string) orderListView {
	view := orderListView{
		Orders:     make([]orderView, 0, len(orders)),
		NextCursor: nextCursor,
	}
	for i := range orders {
		view.Orders = append(view.Orders, newOrderView(&orders[i]))
	}
	return view
}

type vendorProfileView struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ShopName  string     `json:"shop_name"`
	About     *string    `json:"about,omitempty"`
	Status    string     `json:"status"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func newVendorProfileView(profile *models.VendorProfile) vendorProfileView {
	return vendorProfileView{
		ID:        profile.ID,
		UserID:    profile.UserID,
		ShopName:  profile.ShopName,
		About:     profile.About,
		Status:    profile.Status.String(),
		DecidedAt: profile.DecidedAt,
		CreatedAt: profile.CreatedAt,
	}
}

type wishlistItemView struct {
	ProductID uuid.UUID    `json:"product_id"`
	Product   *productView `json:"product,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

func newWishlistItemView(item *models.WishlistItem) wishlistItemView {
	view := wishlistItemView{
		ProductID: item.ProductID,
		CreatedAt: item.CreatedAt,
	}
	if item.Product != nil {
		pv := newProductView(item.Product)
		view.Product = &pv
	}
	return view
}
