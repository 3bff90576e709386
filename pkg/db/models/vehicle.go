package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
)

// Vehicle is a unique sellable unit; there is exactly one of each.
type Vehicle struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Make      string              `gorm:"column:make;not null"`
	Model     string              `gorm:"column:model;not null"`
	Year      int                 `gorm:"column:year;not null"`
	Price     decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	Status    enums.VehicleStatus `gorm:"column:status;not null;default:'AVAILABLE'"`
	Features  pq.StringArray      `gorm:"column:features;type:text[]"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
