package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  total_price TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  vehicle_id TEXT,
  accessory_id TEXT,
  unit_price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  line_total TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func createTestOrder(t *testing.T, db *gorm.DB, userID uuid.UUID, created time.Time) *models.Order {
	t.Helper()

	accessoryID := uuid.New()
	order := &models.Order{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     enums.OrderStatusPlaced,
		TotalPrice: decimal.NewFromInt(500),
		Items: []models.OrderItem{
			{
				ID:          uuid.New(),
				Kind:        enums.ItemKindAccessory,
				AccessoryID: &accessoryID,
				UnitPrice:   decimal.NewFromInt(250),
				Quantity:    2,
				LineTotal:   decimal.NewFromInt(500),
			},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), time.Now().UTC())

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.True(t, found.Items[0].LineTotal.Equal(decimal.NewFromInt(500)))
}

func TestRepositoryListByUserPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		createTestOrder(t, db, userID, base.Add(time.Duration(i)*time.Minute))
	}
	createTestOrder(t, db, uuid.New(), base)

	page, err := repo.ListByUser(ctx, userID, 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.True(t, page[0].CreatedAt.After(page[1].CreatedAt))

	last := page[len(page)-1]
	rest, err := repo.ListByUser(ctx, userID, 2, &pagination.Cursor{
		CreatedAt: last.CreatedAt,
		ID:        last.ID,
	})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, userID, rest[0].UserID)
}

func TestRepositoryUpdateStatusGuarded(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, db, uuid.New(), time.Now().UTC())

	require.NoError(t, repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusPaid))

	// The guard refuses when the current status no longer matches.
	err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusCanceled)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)
}
