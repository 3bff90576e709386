package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubStore struct {
	orders map[uuid.UUID]*models.Order
}

func newStubStore() *stubStore {
	return &stubStore{orders: map[uuid.UUID]*models.Order{}}
}

func (s *stubStore) WithTx(tx *gorm.DB) Store { return s }

func (s *stubStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	return nil
}

func (s *stubStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range s.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	if limit < len(rows) {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *stubStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.OrderStatus) error {
	order, ok := s.orders[id]
	if !ok || order.Status != from {
		return gorm.ErrRecordNotFound
	}
	order.Status = to
	return nil
}

type stubCatalog struct {
	vehicles    map[uuid.UUID]*models.Vehicle
	accessories map[uuid.UUID]*models.Accessory
}

func (s *stubCatalog) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, ok := s.vehicles[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
	}
	return vehicle, nil
}

func (s *stubCatalog) GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error) {
	accessory, ok := s.accessories[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "accessory not found")
	}
	return accessory, nil
}

type stubCarts struct {
	carts map[uuid.UUID]*models.Cart
}

func (s *stubCarts) GetOrCreateByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.carts == nil {
		s.carts = map[uuid.UUID]*models.Cart{}
	}
	record, ok := s.carts[userID]
	if !ok {
		record = &models.Cart{ID: uuid.New(), UserID: userID}
		s.carts[userID] = record
	}
	return record, nil
}

func newOrderService(t *testing.T, store Store, catalog Catalog) Service {
	t.Helper()
	return newOrderServiceWithCarts(t, store, catalog, &stubCarts{})
}

func newOrderServiceWithCarts(t *testing.T, store Store, catalog Catalog, carts Carts) Service {
	t.Helper()
	svc, err := NewService(store, catalog, carts)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestSnapshotFromCartEmpty(t *testing.T) {
	_, err := SnapshotFromCart(uuid.New(), nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestSnapshotFromCartTotals(t *testing.T) {
	vehicleID := uuid.New()
	accessoryID := uuid.New()
	items := []models.CartItem{
		{
			ID:        uuid.New(),
			Kind:      enums.ItemKindVehicle,
			VehicleID: &vehicleID,
			UnitPrice: decimal.NewFromInt(30000),
			Quantity:  1,
		},
		{
			ID:          uuid.New(),
			Kind:        enums.ItemKindAccessory,
			AccessoryID: &accessoryID,
			UnitPrice:   decimal.NewFromInt(150),
			Quantity:    3,
		},
	}

	order, err := SnapshotFromCart(uuid.New(), items)
	if err != nil {
		t.Fatalf("SnapshotFromCart: %v", err)
	}
	if order.Status != enums.OrderStatusPlaced {
		t.Fatalf("new orders start PLACED, got %s", order.Status)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(30450)) {
		t.Fatalf("expected total 30450, got %s", order.TotalPrice)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(order.Items))
	}
	if !order.Items[1].LineTotal.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("expected line total 450, got %s", order.Items[1].LineTotal)
	}
}

func TestCreateRequiresLines(t *testing.T) {
	svc := newOrderService(t, newStubStore(), &stubCatalog{})

	_, err := svc.Create(context.Background(), uuid.New(), nil)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreatePricesFromCatalog(t *testing.T) {
	vehicleID := uuid.New()
	accessoryID := uuid.New()
	catalog := &stubCatalog{
		vehicles: map[uuid.UUID]*models.Vehicle{
			vehicleID: {ID: vehicleID, Status: enums.VehicleStatusAvailable, Price: decimal.NewFromInt(28000)},
		},
		accessories: map[uuid.UUID]*models.Accessory{
			accessoryID: {ID: accessoryID, Price: decimal.NewFromInt(200)},
		},
	}
	store := newStubStore()
	svc := newOrderService(t, store, catalog)

	order, err := svc.Create(context.Background(), uuid.New(), []LineInput{
		{Kind: enums.ItemKindVehicle, ItemID: vehicleID, Quantity: 3},
		{Kind: enums.ItemKindAccessory, ItemID: accessoryID, Quantity: 2},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Vehicle quantity collapses to one regardless of the request.
	if order.Items[0].Quantity != 1 {
		t.Fatalf("expected vehicle quantity 1, got %d", order.Items[0].Quantity)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(28400)) {
		t.Fatalf("expected total 28400, got %s", order.TotalPrice)
	}
	if len(store.orders) != 1 {
		t.Fatalf("expected persisted order")
	}
}

func TestCreateFromCartSnapshotsWithoutClearing(t *testing.T) {
	vehicleID := uuid.New()
	accessoryID := uuid.New()
	catalog := &stubCatalog{
		vehicles: map[uuid.UUID]*models.Vehicle{
			vehicleID: {ID: vehicleID, Status: enums.VehicleStatusAvailable, Price: decimal.NewFromInt(31000)},
		},
		accessories: map[uuid.UUID]*models.Accessory{
			accessoryID: {ID: accessoryID, Price: decimal.NewFromInt(120)},
		},
	}
	userID := uuid.New()
	carts := &stubCarts{carts: map[uuid.UUID]*models.Cart{
		userID: {
			ID:     uuid.New(),
			UserID: userID,
			Items: []models.CartItem{
				{ID: uuid.New(), Kind: enums.ItemKindVehicle, VehicleID: &vehicleID, Quantity: 1},
				{ID: uuid.New(), Kind: enums.ItemKindAccessory, AccessoryID: &accessoryID, Quantity: 2},
			},
		},
	}}
	store := newStubStore()
	svc := newOrderServiceWithCarts(t, store, catalog, carts)

	order, err := svc.CreateFromCart(context.Background(), userID)
	if err != nil {
		t.Fatalf("CreateFromCart: %v", err)
	}
	if !order.TotalPrice.Equal(decimal.NewFromInt(31240)) {
		t.Fatalf("expected total 31240, got %s", order.TotalPrice)
	}
	if len(carts.carts[userID].Items) != 2 {
		t.Fatalf("cart must keep its lines after order creation")
	}
}

func TestCreateFromCartEmptyCart(t *testing.T) {
	svc := newOrderService(t, newStubStore(), &stubCatalog{})

	_, err := svc.CreateFromCart(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateSoldVehicleRejected(t *testing.T) {
	vehicleID := uuid.New()
	catalog := &stubCatalog{vehicles: map[uuid.UUID]*models.Vehicle{
		vehicleID: {ID: vehicleID, Status: enums.VehicleStatusSold, Price: decimal.NewFromInt(28000)},
	}}
	svc := newOrderService(t, newStubStore(), catalog)

	_, err := svc.Create(context.Background(), uuid.New(), []LineInput{
		{Kind: enums.ItemKindVehicle, ItemID: vehicleID, Quantity: 1},
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetByIDNotFound(t *testing.T) {
	svc := newOrderService(t, newStubStore(), &stubCatalog{})

	_, err := svc.GetByID(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestListByUserFiltersOwner(t *testing.T) {
	store := newStubStore()
	svc := newOrderService(t, store, &stubCatalog{})
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		order := &models.Order{ID: uuid.New(), UserID: userID, Status: enums.OrderStatusPlaced}
		store.orders[order.ID] = order
	}
	other := &models.Order{ID: uuid.New(), UserID: uuid.New(), Status: enums.OrderStatusPlaced}
	store.orders[other.ID] = other

	list, err := svc.ListByUser(context.Background(), userID, pagination.Params{})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list.Orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(list.Orders))
	}
	for _, order := range list.Orders {
		if order.UserID != userID {
			t.Fatalf("listed order belongs to another user")
		}
	}
}
