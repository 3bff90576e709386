package catalog

import (
	"context"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleRepository exposes persistence operations for the vehicle catalog.
type VehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository constructs a vehicle repository bound to the provided DB.
func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *VehicleRepository) WithTx(tx *gorm.DB) VehicleStore {
	if tx == nil {
		return r
	}
	return &VehicleRepository{db: tx}
}

// Create inserts a new Vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if vehicle.Status == "" {
		vehicle.Status = enums.VehicleStatusAvailable
	}
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

// FindByID loads a vehicle by id.
func (r *VehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// List returns vehicles ordered by creation time, newest first, using cursor
// pagination.
func (r *VehicleRepository) List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}
	var rows []models.Vehicle
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus flips the availability status of a vehicle.
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
