package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_id TEXT NOT NULL UNIQUE,
  amount TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  method TEXT NOT NULL,
  transaction_id TEXT,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(payments).Error)
	return db
}

func createTestPayment(t *testing.T, repo *Repository, userID uuid.UUID, status enums.PaymentStatus) *models.Payment {
	t.Helper()

	payment := &models.Payment{
		ID:            uuid.New(),
		UserID:        userID,
		OrderID:       uuid.New(),
		Amount:        decimal.NewFromInt(30000),
		Status:        status,
		Method:        enums.PaymentMethodCreditCard,
		TransactionID: newTransactionID(),
	}
	require.NoError(t, repo.Create(context.Background(), payment))
	return payment
}

func TestRepositoryFindByOrder(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := createTestPayment(t, repo, uuid.New(), enums.PaymentStatusApproved)

	found, err := repo.FindByOrder(ctx, payment.OrderID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)
	assert.True(t, found.Amount.Equal(decimal.NewFromInt(30000)))

	_, err = repo.FindByOrder(ctx, uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepositoryOneSettlementPerOrder(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := createTestPayment(t, repo, uuid.New(), enums.PaymentStatusApproved)

	duplicate := &models.Payment{
		ID:      uuid.New(),
		UserID:  payment.UserID,
		OrderID: payment.OrderID,
		Amount:  payment.Amount,
		Status:  enums.PaymentStatusApproved,
		Method:  enums.PaymentMethodCreditCard,
	}
	assert.Error(t, repo.Create(ctx, duplicate))
}

func TestRepositoryCountGrows(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	before, err := repo.Count(ctx)
	require.NoError(t, err)

	createTestPayment(t, repo, uuid.New(), enums.PaymentStatusApproved)
	createTestPayment(t, repo, uuid.New(), enums.PaymentStatusDenied)

	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+2, after)
}

func TestRepositoryUpdateStatusGuarded(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	payment := createTestPayment(t, repo, uuid.New(), enums.PaymentStatusApproved)

	require.NoError(t, repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusApproved, enums.PaymentStatusRefunded, nil))

	err := repo.UpdateStatus(ctx, payment.ID, enums.PaymentStatusApproved, enums.PaymentStatusRefunded, nil)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	found, err := repo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefunded, found.Status)
}

func TestRepositoryListByUser(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	createTestPayment(t, repo, userID, enums.PaymentStatusApproved)
	createTestPayment(t, repo, userID, enums.PaymentStatusDenied)
	createTestPayment(t, repo, uuid.New(), enums.PaymentStatusApproved)

	rows, err := repo.ListByUser(ctx, userID, 10, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, userID, row.UserID)
	}
}
