package controllers

import (
	"time"

	"github.com/Weilei424/leafwheels-sub000/internal/cart"
	"github.com/Weilei424/leafwheels-sub000/internal/payments"
	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/google/uuid"
)

type vehicleResponse struct {
	ID        uuid.UUID `json:"id"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Price     string    `json:"price"`
	Status    string    `json:"status"`
	Features  []string  `json:"features,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newVehicleResponse(vehicle *models.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:        vehicle.ID,
		Make:      vehicle.Make,
		Model:     vehicle.Model,
		Year:      vehicle.Year,
		Price:     vehicle.Price.String(),
		Status:    string(vehicle.Status),
		Features:  []string(vehicle.Features),
		CreatedAt: vehicle.CreatedAt,
	}
}

type accessoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       string    `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func newAccessoryResponse(accessory *models.Accessory) accessoryResponse {
	return accessoryResponse{
		ID:          accessory.ID,
		Name:        accessory.Name,
		Description: accessory.Description,
		Price:       accessory.Price.String(),
		CreatedAt:   accessory.CreatedAt,
	}
}

type cartItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	AccessoryID *uuid.UUID `json:"accessory_id,omitempty"`
	UnitPrice   string     `json:"unit_price"`
	Quantity    int        `json:"quantity"`
}

type cartResponse struct {
	ID       uuid.UUID          `json:"id"`
	UserID   uuid.UUID          `json:"user_id"`
	Items    []cartItemResponse `json:"items"`
	Checksum string             `json:"checksum"`
}

func newCartResponse(view *cart.View) cartResponse {
	items := make([]cartItemResponse, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		items = append(items, cartItemResponse{
			ID:          item.ID,
			Kind:        string(item.Kind),
			VehicleID:   item.VehicleID,
			AccessoryID: item.AccessoryID,
			UnitPrice:   item.UnitPrice.String(),
			Quantity:    item.Quantity,
		})
	}
	return cartResponse{
		ID:       view.Cart.ID,
		UserID:   view.Cart.UserID,
		Items:    items,
		Checksum: view.Checksum,
	}
}

type orderItemResponse struct {
	ID          uuid.UUID  `json:"id"`
	Kind        string     `json:"kind"`
	VehicleID   *uuid.UUID `json:"vehicle_id,omitempty"`
	AccessoryID *uuid.UUID `json:"accessory_id,omitempty"`
	UnitPrice   string     `json:"unit_price"`
	Quantity    int        `json:"quantity"`
	LineTotal   string     `json:"line_total"`
}

type orderResponse struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"user_id"`
	Status     string              `json:"status"`
	TotalPrice string              `json:"total_price"`
	Items      []orderItemResponse `json:"items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:          item.ID,
			Kind:        string(item.Kind),
			VehicleID:   item.VehicleID,
			AccessoryID: item.AccessoryID,
			UnitPrice:   item.UnitPrice.String(),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal.String(),
		})
	}
	return orderResponse{
		ID:         order.ID,
		UserID:     order.UserID,
		Status:     string(order.Status),
		TotalPrice: order.TotalPrice.String(),
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}

type paymentResponse struct {
	ID            uuid.UUID `json:"id"`
	OrderID       uuid.UUID `json:"order_id"`
	Amount        string    `json:"amount"`
	Status        string    `json:"status"`
	Method        string    `json:"method"`
	TransactionID string    `json:"transaction_id,omitempty"`
	FailureReason *string   `json:"failure_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newPaymentResponse(payment *models.Payment) paymentResponse {
	return paymentResponse{
		ID:            payment.ID,
		OrderID:       payment.OrderID,
		Amount:        payment.Amount.String(),
		Status:        string(payment.Status),
		Method:        string(payment.Method),
		TransactionID: payment.TransactionID,
		FailureReason: payment.FailureReason,
		CreatedAt:     payment.CreatedAt,
	}
}

type sessionResponse struct {
	CartID    uuid.UUID `json:"cart_id"`
	Checksum  string    `json:"checksum"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newSessionResponse(view *payments.SessionView) sessionResponse {
	return sessionResponse{
		CartID:    view.CartID,
		Checksum:  view.Checksum,
		ExpiresAt: view.ExpiresAt,
	}
}

type receiptResponse struct {
	Order   orderResponse   `json:"order"`
	Payment paymentResponse `json:"payment"`
}

func newReceiptResponse(receipt *payments.Receipt) receiptResponse {
	return receiptResponse{
		Order:   newOrderResponse(receipt.Order),
		Payment: newPaymentResponse(receipt.Payment),
	}
}
