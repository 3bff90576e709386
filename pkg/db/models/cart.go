package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
)

// Cart is the per-user staging area for intended purchases. One active cart
// per user, created lazily on first access.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_carts_user"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// CartItem is one line in a cart. At most one line per (kind, referenced id)
// pair; duplicate adds merge into the existing line's quantity.
type CartItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID      uuid.UUID       `gorm:"column:cart_id;type:uuid;not null"`
	Kind        enums.ItemKind  `gorm:"column:kind;not null"`
	VehicleID   *uuid.UUID      `gorm:"column:vehicle_id;type:uuid"`
	AccessoryID *uuid.UUID      `gorm:"column:accessory_id;type:uuid"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ReferencedID returns the catalog id the line points at, by kind.
func (i CartItem) ReferencedID() uuid.UUID {
	switch i.Kind {
	case enums.ItemKindVehicle:
		if i.VehicleID != nil {
			return *i.VehicleID
		}
	case enums.ItemKindAccessory:
		if i.AccessoryID != nil {
			return *i.AccessoryID
		}
	}
	return uuid.Nil
}
