package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the persistence surface the order service needs.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) error
}

// Catalog is the slice of the catalog the order service reads when pricing
// direct orders.
type Catalog interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error)
}

// Carts is the slice of the cart store the order service reads when sourcing
// an order from a user's current cart.
type Carts interface {
	GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

// LineInput is one requested line on a direct order.
type LineInput struct {
	Kind     enums.ItemKind
	ItemID   uuid.UUID
	Quantity int
}

// List is one page of orders plus the cursor for the next page.
type List struct {
	Orders     []models.Order
	NextCursor string
}

// Service creates and reads order snapshots. Status transitions beyond
// creation belong to payment settlement.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, lines []LineInput) (*models.Order, error)
	CreateFromCart(ctx context.Context, userID uuid.UUID) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	store   Store
	catalog Catalog
	carts   Carts
}

// NewService builds the order service.
func NewService(store Store, catalog Catalog, carts Carts) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("order store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	return &service{store: store, catalog: catalog, carts: carts}, nil
}

// SnapshotFromCart freezes lines into an unsaved order. Prices come from the
// lines as given, so callers price them against the live catalog first; later
// catalog changes never reach the order.
func SnapshotFromCart(userID uuid.UUID, items []models.CartItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot create an order from an empty cart")
	}

	order := &models.Order{
		UserID: userID,
		Status: enums.OrderStatusPlaced,
	}
	total := decimal.Zero
	for _, item := range items {
		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		order.Items = append(order.Items, models.OrderItem{
			Kind:        item.Kind,
			VehicleID:   item.VehicleID,
			AccessoryID: item.AccessoryID,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.TotalPrice = total
	return order, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, lines []LineInput) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		item, err := s.priceLine(ctx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	order, err := SnapshotFromCart(userID, items)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}
	return order, nil
}

// CreateFromCart prices and snapshots the user's current cart into a new
// order. The cart is left untouched; clearing it is the settlement's job.
func (s *service) CreateFromCart(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	lines := make([]LineInput, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, LineInput{
			Kind:     item.Kind,
			ItemID:   item.ReferencedID(),
			Quantity: item.Quantity,
		})
	}
	return s.Create(ctx, userID, lines)
}

func (s *service) priceLine(ctx context.Context, line LineInput) (*models.CartItem, error) {
	if line.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id is required")
	}
	if line.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be positive")
	}

	item := &models.CartItem{Kind: line.Kind, Quantity: line.Quantity}
	switch line.Kind {
	case enums.ItemKindVehicle:
		vehicle, err := s.catalog.GetVehicle(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		if vehicle.Status != enums.VehicleStatusAvailable {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is no longer available")
		}
		id := vehicle.ID
		item.VehicleID = &id
		item.UnitPrice = vehicle.Price
		item.Quantity = 1
	case enums.ItemKindAccessory:
		accessory, err := s.catalog.GetAccessory(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		id := accessory.ID
		item.AccessoryID = &id
		item.UnitPrice = accessory.Price
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
	}
	return item, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.store.ListByUser(ctx, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	list := &List{Orders: rows}
	if len(rows) > limit {
		list.Orders = rows[:limit]
		last := list.Orders[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
