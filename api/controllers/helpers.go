package controllers

import (
	"net/http"
	"strings"

	"github.com/Weilei424/leafwheels-sub000/api/middleware"
	"github.com/Weilei424/leafwheels-sub000/api/validators"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/pagination"
	"github.com/google/uuid"
)

func userIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

func paginationFromRequest(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
