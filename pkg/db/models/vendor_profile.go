package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefronthq/storefront-backend/pkg/enums"
)

// VendorProfile tracks a user's vendor application through approval.
type VendorProfile struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID          `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	ShopName  string             `gorm:"column:shop_name;not null"`
	About     *string            `gorm:"column:about"`
	Status    enums.VendorStatus `gorm:"column:status;not null;default:'pending'"`
	DecidedBy *uuid.UUID         `gorm:"column:decided_by;type:uuid"`
	DecidedAt *time.Time         `gorm:"column:decided_at"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
