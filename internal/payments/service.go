package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Weilei424/leafwheels-sub000/internal/cart"
	"github.com/Weilei424/leafwheels-sub000/internal/catalog"
	"github.com/Weilei424/leafwheels-sub000/internal/orders"
	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/metrics"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Store is the persistence surface the payment service needs.
type Store interface {
	WithTx(tx *gorm.DB) Store
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.Payment, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to enums.PaymentStatus, failureReason *string) error
}

// SessionView is what callers see after beginning a checkout.
type SessionView struct {
	CartID    uuid.UUID
	Checksum  string
	ExpiresAt time.Time
}

// CommitInput captures the payment details for a commit.
type CommitInput struct {
	Method enums.PaymentMethod
}

// Receipt is the outcome of a commit: the order snapshot and the payment
// that settled (or failed to settle) it.
type Receipt struct {
	Order   *models.Order
	Payment *models.Payment
}

// List is one page of payments plus the cursor for the next page.
type List struct {
	Payments   []models.Payment
	NextCursor string
}

// Service runs the checkout settlement pipeline.
type Service interface {
	BeginSession(ctx context.Context, userID uuid.UUID) (*SessionView, error)
	Commit(ctx context.Context, userID uuid.UUID, input CommitInput) (*Receipt, error)
	CancelSession(ctx context.Context, userID uuid.UUID) error
	Refund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*List, error)
}

type service struct {
	tx          txRunner
	sessions    SessionStore
	carts       cart.Store
	ordersRepo  orders.Store
	vehicles    catalog.VehicleStore
	accessories catalog.AccessoryStore
	payments    Store
	policy      ApprovalPolicy
	metrics     *metrics.CheckoutMetrics
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewService builds the payment service.
func NewService(
	tx txRunner,
	sessions SessionStore,
	carts cart.Store,
	ordersRepo orders.Store,
	vehicles catalog.VehicleStore,
	accessories catalog.AccessoryStore,
	payments Store,
	policy ApprovalPolicy,
	checkoutMetrics *metrics.CheckoutMetrics,
	sessionTTL time.Duration,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order store required")
	}
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle store required")
	}
	if accessories == nil {
		return nil, fmt.Errorf("accessory store required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment store required")
	}
	if policy == nil {
		policy = DefaultApprovalPolicy
	}
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &service{
		tx:          tx,
		sessions:    sessions,
		carts:       carts,
		ordersRepo:  ordersRepo,
		vehicles:    vehicles,
		accessories: accessories,
		payments:    payments,
		policy:      policy,
		metrics:     checkoutMetrics,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}, nil
}

func (s *service) BeginSession(ctx context.Context, userID uuid.UUID) (*SessionView, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.carts.GetOrCreateByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot begin checkout with an empty cart")
	}

	session := Session{
		CartID:   record.ID,
		Checksum: cart.Checksum(record.Items),
	}
	if err := s.sessions.Put(ctx, userID, session); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store checkout session")
	}
	return &SessionView{
		CartID:    session.CartID,
		Checksum:  session.Checksum,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}, nil
}

func (s *service) Commit(ctx context.Context, userID uuid.UUID, input CommitInput) (*Receipt, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	// Sessions are single use. The token is popped atomically before
	// settlement, so concurrent submits of the same checkout race for it
	// and only one can proceed.
	session, err := s.sessions.Consume(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			s.metrics.IncRejection("no_session")
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "no active checkout session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume checkout session")
	}

	start := s.now()
	var receipt *Receipt
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		vehicles := s.vehicles.WithTx(tx)
		accessories := s.accessories.WithTx(tx)
		payments := s.payments.WithTx(tx)

		record, err := carts.FindByID(ctx, session.CartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.metrics.IncRejection("cart_missing")
				return pkgerrors.New(pkgerrors.CodeConflict, "cart changed since checkout began")
			}
			return err
		}
		if len(record.Items) == 0 {
			s.metrics.IncRejection("cart_empty")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}
		if cart.Checksum(record.Items) != session.Checksum {
			s.metrics.IncRejection("checksum_mismatch")
			return pkgerrors.New(pkgerrors.CodeConflict, "cart changed since checkout began")
		}

		// Every line is re-validated against the live catalog and settles
		// at the current price, not the price captured at add-to-cart.
		items := make([]models.CartItem, 0, len(record.Items))
		for _, item := range record.Items {
			line := item
			switch item.Kind {
			case enums.ItemKindVehicle:
				vehicle, err := vehicles.FindByID(ctx, item.ReferencedID())
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						s.metrics.IncRejection("vehicle_missing")
						return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle no longer exists")
					}
					return err
				}
				if vehicle.Status != enums.VehicleStatusAvailable {
					s.metrics.IncRejection("vehicle_unavailable")
					return pkgerrors.New(pkgerrors.CodeStateConflict, "vehicle is no longer available")
				}
				line.UnitPrice = vehicle.Price
			case enums.ItemKindAccessory:
				accessory, err := accessories.FindByID(ctx, item.ReferencedID())
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						s.metrics.IncRejection("accessory_missing")
						return pkgerrors.New(pkgerrors.CodeNotFound, "accessory no longer exists")
					}
					return err
				}
				line.UnitPrice = accessory.Price
			default:
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid item kind")
			}
			items = append(items, line)
		}

		order, err := orders.SnapshotFromCart(userID, items)
		if err != nil {
			return err
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}

		countBefore, err := payments.Count(ctx)
		if err != nil {
			return err
		}
		seq := countBefore + 1
		approved := s.policy(seq)

		payment := &models.Payment{
			UserID:        userID,
			OrderID:       order.ID,
			Amount:        order.TotalPrice,
			Method:        input.Method,
			TransactionID: newTransactionID(),
			Status:        enums.PaymentStatusApproved,
		}
		if !approved {
			payment.Status = enums.PaymentStatusDenied
			reason := "payment declined by provider"
			payment.FailureReason = &reason
		}
		if err := payments.Create(ctx, payment); err != nil {
			return err
		}

		if approved {
			if err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusPaid); err != nil {
				return err
			}
			order.Status = enums.OrderStatusPaid
			for _, item := range record.Items {
				if item.Kind != enums.ItemKindVehicle {
					continue
				}
				if err := vehicles.UpdateStatus(ctx, item.ReferencedID(), enums.VehicleStatusSold); err != nil {
					return err
				}
			}
			if err := carts.Clear(ctx, record.ID); err != nil {
				return err
			}
		} else {
			if err := ordersRepo.UpdateStatus(ctx, order.ID, enums.OrderStatusPlaced, enums.OrderStatusCanceled); err != nil {
				return err
			}
			order.Status = enums.OrderStatusCanceled
		}

		receipt = &Receipt{Order: order, Payment: payment}
		return nil
	})
	if err != nil {
		s.metrics.ObserveCommit("rejected", s.now().Sub(start))
		return nil, err
	}

	outcome := "approved"
	if receipt.Payment.Status == enums.PaymentStatusDenied {
		outcome = "denied"
	}
	s.metrics.IncOutcome(outcome)
	s.metrics.ObserveCommit(outcome, s.now().Sub(start))
	return receipt, nil
}

// CancelSession drops the user's checkout session. Cancelling when no
// session exists is a no-op.
func (s *service) CancelSession(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drop checkout session")
	}
	return nil
}

// Refund reverses the approved payment on an order: the payment moves to
// REFUNDED, the order is canceled, and any vehicles on it go back on the
// market. Refunding an order whose payment is not currently approved is a
// no-op, so repeated refunds are safe.
func (s *service) Refund(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	var refunded *models.Payment
	transitioned := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		vehicles := s.vehicles.WithTx(tx)
		payments := s.payments.WithTx(tx)

		payment, err := payments.FindByOrder(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return err
		}
		if payment.Status != enums.PaymentStatusApproved {
			refunded = payment
			return nil
		}
		transitioned = true

		if err := payments.UpdateStatus(ctx, payment.ID, enums.PaymentStatusApproved, enums.PaymentStatusRefunded, nil); err != nil {
			return err
		}
		if err := ordersRepo.UpdateStatus(ctx, payment.OrderID, enums.OrderStatusPaid, enums.OrderStatusCanceled); err != nil {
			return err
		}

		order, err := ordersRepo.FindByID(ctx, payment.OrderID)
		if err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.Kind != enums.ItemKindVehicle || item.VehicleID == nil {
				continue
			}
			if err := vehicles.UpdateStatus(ctx, *item.VehicleID, enums.VehicleStatusAvailable); err != nil {
				return err
			}
		}

		payment.Status = enums.PaymentStatusRefunded
		refunded = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.metrics.IncOutcome("refunded")
	}
	return refunded, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payment, err := s.payments.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
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
	rows, err := s.payments.ListByUser(ctx, userID, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}

	list := &List{Payments: rows}
	if len(rows) > limit {
		list.Payments = rows[:limit]
		last := list.Payments[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func newTransactionID() string {
	return "txn_" + uuid.NewString()
}

