package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Weilei424/leafwheels-sub000/pkg/db/models"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VehicleStore is the persistence surface the catalog service needs for vehicles.
type VehicleStore interface {
	WithTx(tx *gorm.DB) VehicleStore
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]models.Vehicle, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error
}

// AccessoryStore is the persistence surface the catalog service needs for accessories.
type AccessoryStore interface {
	WithTx(tx *gorm.DB) AccessoryStore
	Create(ctx context.Context, accessory *models.Accessory) (*models.Accessory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Accessory, error)
	List(ctx context.Context) ([]models.Accessory, error)
}

// Service exposes the vehicle/accessory catalog consumed by the checkout core.
type Service interface {
	GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error)
	CreateVehicle(ctx context.Context, input VehicleInput) (*models.Vehicle, error)
	CreateAccessory(ctx context.Context, input AccessoryInput) (*models.Accessory, error)
	ListVehicles(ctx context.Context, params pagination.Params) (*VehicleList, error)
	ListAccessories(ctx context.Context) ([]models.Accessory, error)
	SetVehicleStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error
}

type service struct {
	vehicles    VehicleStore
	accessories AccessoryStore
}

// NewService builds the catalog service.
func NewService(vehicles VehicleStore, accessories AccessoryStore) (Service, error) {
	if vehicles == nil {
		return nil, fmt.Errorf("vehicle store required")
	}
	if accessories == nil {
		return nil, fmt.Errorf("accessory store required")
	}
	return &service{vehicles: vehicles, accessories: accessories}, nil
}

// VehicleInput captures the payload to list a vehicle for sale.
type VehicleInput struct {
	Make     string
	Model    string
	Year     int
	Price    decimal.Decimal
	Features []string
}

// AccessoryInput captures the payload to list an accessory.
type AccessoryInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

// VehicleList is one page of vehicles plus the cursor for the next page.
type VehicleList struct {
	Vehicles   []models.Vehicle
	NextCursor string
}

func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	vehicle, err := s.vehicles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func (s *service) GetAccessory(ctx context.Context, id uuid.UUID) (*models.Accessory, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "accessory id is required")
	}
	accessory, err := s.accessories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "accessory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accessory")
	}
	return accessory, nil
}

func (s *service) CreateVehicle(ctx context.Context, input VehicleInput) (*models.Vehicle, error) {
	if input.Make == "" || input.Model == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "make and model are required")
	}
	if input.Year < 1990 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is out of range")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	vehicle := &models.Vehicle{
		Make:     input.Make,
		Model:    input.Model,
		Year:     input.Year,
		Price:    input.Price,
		Status:   enums.VehicleStatusAvailable,
		Features: pq.StringArray(input.Features),
	}
	created, err := s.vehicles.Create(ctx, vehicle)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist vehicle")
	}
	return created, nil
}

func (s *service) CreateAccessory(ctx context.Context, input AccessoryInput) (*models.Accessory, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}

	accessory := &models.Accessory{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	created, err := s.accessories.Create(ctx, accessory)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist accessory")
	}
	return created, nil
}

func (s *service) ListVehicles(ctx context.Context, params pagination.Params) (*VehicleList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.vehicles.List(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	list := &VehicleList{Vehicles: rows}
	if len(rows) > limit {
		list.Vehicles = rows[:limit]
		last := list.Vehicles[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (s *service) ListAccessories(ctx context.Context) ([]models.Accessory, error) {
	rows, err := s.accessories.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accessories")
	}
	return rows, nil
}

func (s *service) SetVehicleStatus(ctx context.Context, id uuid.UUID, status enums.VehicleStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle status")
	}
	if err := s.vehicles.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle status")
	}
	return nil
}
