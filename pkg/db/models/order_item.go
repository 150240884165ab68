package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is an immutable snapshot taken at checkout time. Title and unit
// price are copied so later product edits never alter historical orders.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID     *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	VendorID      *uuid.UUID      `gorm:"column:vendor_id;type:uuid;index"`
	TitleSnapshot string          `gorm:"column:title_snapshot;not null"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Quantity      int             `gorm:"column:quantity;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// Subtotal returns unit price times quantity for the snapshot.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
