package catalog

import (
	"context"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AccessoryRepository exposes persistence operations for the accessory catalog.
type AccessoryRepository struct {
	db *gorm.DB
}

// NewAccessoryRepository constructs an accessory repository bound to the provided DB.
func NewAccessoryRepository(db *gorm.DB) *AccessoryRepository {
	return &AccessoryRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *AccessoryRepository) WithTx(tx *gorm.DB) AccessoryStore {
	if tx == nil {
		return r
	}
	return &AccessoryRepository{db: tx}
}

// Create inserts a new Accessory.
func (r *AccessoryRepository) Create(ctx context.Context, accessory *models.Accessory) (*models.Accessory, error) {
	if err := r.db.WithContext(ctx).Create(accessory).Error; err != nil {
		return nil, err
	}
	return accessory, nil
}

// FindByID loads an accessory by id.
func (r *AccessoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Accessory, error) {
	var accessory models.Accessory
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&accessory).Error; err != nil {
		return nil, err
	}
	return &accessory, nil
}

// List returns all accessories ordered by name.
func (r *AccessoryRepository) List(ctx context.Context) ([]models.Accessory, error) {
	var rows []models.Accessory
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
