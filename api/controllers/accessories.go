package controllers

import (
	"net/http"

	"github.com/Weilei424/leafwheels-sub000/api/responses"
	"github.com/Weilei424/leafwheels-sub000/api/validators"
	"github.com/Weilei424/leafwheels-sub000/internal/catalog"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/logger"
	"github.com/shopspring/decimal"
)

type createAccessoryPayload struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"required"`
}

// AccessoryCreate lists an accessory for sale.
func AccessoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createAccessoryPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		accessory, err := svc.CreateAccessory(r.Context(), catalog.AccessoryInput{
			Name:        payload.Name,
			Description: payload.Description,
			Price:       payload.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAccessoryResponse(accessory))
	}
}

// AccessoryList returns every accessory, ordered by name.
func AccessoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		rows, err := svc.ListAccessories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]accessoryResponse, 0, len(rows))
		for i := range rows {
			items = append(items, newAccessoryResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"accessories": items})
	}
}

// AccessoryDetail returns one accessory.
func AccessoryDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "accessoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accessory, err := svc.GetAccessory(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newAccessoryResponse(accessory))
	}
}
