package controllers

import (
	"net/http"

	"github.com/Weilei424/leafwheels-sub000/api/responses"
	"github.com/Weilei424/leafwheels-sub000/api/validators"
	"github.com/Weilei424/leafwheels-sub000/internal/catalog"
	"github.com/Weilei424/leafwheels-sub000/pkg/enums"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/logger"
	"github.com/shopspring/decimal"
)

type createVehiclePayload struct {
	Make     string          `json:"make" validate:"required"`
	Model    string          `json:"model" validate:"required"`
	Year     int             `json:"year" validate:"required,min=1990"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Features []string        `json:"features"`
}

// VehicleCreate lists a vehicle for sale.
func VehicleCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createVehiclePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.CreateVehicle(r.Context(), catalog.VehicleInput{
			Make:     payload.Make,
			Model:    payload.Model,
			Year:     payload.Year,
			Price:    payload.Price,
			Features: payload.Features,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newVehicleResponse(vehicle))
	}
}

// VehicleList returns one page of the vehicle catalog.
func VehicleList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := paginationFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListVehicles(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]vehicleResponse, 0, len(list.Vehicles))
		for i := range list.Vehicles {
			items = append(items, newVehicleResponse(&list.Vehicles[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"vehicles":    items,
			"next_cursor": list.NextCursor,
		})
	}
}

// VehicleDetail returns one vehicle.
func VehicleDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.GetVehicle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newVehicleResponse(vehicle))
	}
}

type vehicleStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE SOLD"`
}

// VehicleSetStatus flips a vehicle between AVAILABLE and SOLD.
func VehicleSetStatus(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload vehicleStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseVehicleStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := svc.SetVehicleStatus(r.Context(), id, status); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": string(status)})
	}
}
