package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefronthq/storefront-backend/pkg/enums"
)

// Order is an immutable record of a checkout, except for status and the
// payment linkage fields. TotalAmount is fixed at creation and never
// recomputed from live prices.
type Order struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID                uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status                enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	TotalAmount           decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	Currency              enums.Currency    `gorm:"column:currency;not null;default:'USD'"`
	StripePaymentIntentID *string           `gorm:"column:stripe_payment_intent_id;index"`
	StripePaymentID       *string           `gorm:"column:stripe_payment_id"`
	Items                 []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
