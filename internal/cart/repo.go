package cart

import (
	"context"
	"errors"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists carts and their lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) Store {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetOrCreateByUser loads the user's cart with its lines, creating an empty
// cart on first access.
func (r *Repository) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	return &cart, nil
}

// FindByID loads a cart and its lines by cart id.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindLine returns the cart line referencing the given catalog id, if any.
func (r *Repository) FindLine(ctx context.Context, cartID uuid.UUID, kind enums.ItemKind, refID uuid.UUID) (*models.CartItem, error) {
	column := "accessory_id"
	if kind == enums.ItemKindVehicle {
		column = "vehicle_id"
	}

	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND kind = ? AND "+column+" = ?", cartID, kind, refID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateLine inserts a new cart line.
func (r *Repository) CreateLine(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateLineQuantity sets the quantity on an existing line.
func (r *Repository) UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	result := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLine removes one line from a cart. Deleting an absent line is not an
// error; removal is idempotent.
func (r *Repository) DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, itemID).
		Delete(&models.CartItem{}).Error
}

// Clear removes every line from a cart, leaving the cart row in place.
func (r *Repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
