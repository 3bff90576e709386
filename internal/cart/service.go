package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxLineQuantity caps how many units a single accessory line may hold.
const MaxLineQuantity = 99

// Store is the persistence surface the cart service needs.
type Store interface {
	WithTx(tx *gorm.DB) Store
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindLine(ctx context.Context, cartID uuid.UUID, kind enums.ItemKind, refID uuid.UUID) (*models.CartItem, error)
	CreateLine(ctx context.Context, item *models.CartItem) error
	UpdateLineQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteLine(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

// Catalog is the slice of the catalog the cart service reads for pricing and
// availability.
type Catalog interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error)
}

// View is a cart plus the checksum of its current contents. The checksum is
// derived on every read, never stored.
type View struct {
	Cart     *models.Cart
	Checksum string
}

// AddItemInput is the payload to add one catalog item to a cart.
type AddItemInput struct {
	Kind     enums.ItemKind
	ItemID   uuid.UUID
	Quantity int
}

// Service mutates carts and keeps line prices synced with the catalog.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*View, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	store   Store
	catalog Catalog
}

// NewService builds the cart service.
func NewService(store Store, catalog Catalog) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	return &service{store: store, catalog: catalog}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cart, err := s.store.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return &View{Cart: cart, Checksum: Checksum(cart.Items)}, nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	cart, err := s.store.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	line, err := s.buildLine(ctx, cart.ID, input)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.FindLine(ctx, cart.ID, input.Kind, input.ItemID)
	switch {
	case err == nil:
		if err := s.mergeLine(ctx, existing, line.Quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.store.CreateLine(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart line")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup cart line")
	}

	return s.Get(ctx, userID)
}

// buildLine prices the requested item from the catalog and shapes the line.
// Vehicles are unique units, so their quantity is always one.
func (s *service) buildLine(ctx context.Context, cartID uuid.UUID, input AddItemInput) (*models.CartItem, error) {
	line := &models.CartItem{
		CartID:   cartID,
		Kind:     input.Kind,
		Quantity: input.Quantity,
	}

	switch input.Kind {
	case enums.ItemKindVehicle:
		vehicle, err := s.catalog.GetVehicle(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		if vehicle.Status != enums.VehicleStatusAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is no longer available")
		}
		id := vehicle.ID
		line.VehicleID = &id
		line.UnitPrice = vehicle.Price
		line.Quantity = 1
	case enums.ItemKindAccessory:
		accessory, err := s.catalog.GetAccessory(ctx, input.ItemID)
		if err != nil {
			return nil, err
		}
		id := accessory.ID
		line.AccessoryID = &id
		line.UnitPrice = accessory.Price
	}

	if line.Quantity > MaxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line maximum")
	}
	return line, nil
}

// mergeLine folds a duplicate add into the existing line. A second add of the
// same vehicle is absorbed without changing anything.
func (s *service) mergeLine(ctx context.Context, existing *models.CartItem, addQty int) error {
	if existing.Kind == enums.ItemKindVehicle {
		return nil
	}

	next := existing.Quantity + addQty
	if next > MaxLineQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity exceeds the per-line maximum")
	}
	if err := s.store.UpdateLineQuantity(ctx, existing.ID, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "merge cart line")
	}
	return nil
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	cart, err := s.store.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.store.DeleteLine(ctx, cart.ID, itemID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	cart, err := s.store.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.store.Clear(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
