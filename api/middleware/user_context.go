package middleware

import (
	"net/http"

	"github.com/Weilei424/leafwheels-sub000/api/responses"
	pkgerrors "github.com/Weilei424/leafwheels-sub000/pkg/errors"
	"github.com/Weilei424/leafwheels-sub000/pkg/logger"
	"github.com/google/uuid"
)

const userIDHeader = "X-User-Id"

// UserContext resolves the acting user from the gateway-provided header.
// Identity itself is established upstream; this service only needs to know
// whose cart and orders it is operating on.
func UserContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := r.Header.Get(userIDHeader)
			if raw == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing X-User-Id header"))
				return
			}
			if _, err := uuid.Parse(raw); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid X-User-Id header"))
				return
			}

			ctx = WithUserID(ctx, raw)
			if logg != nil {
				ctx = logg.WithUserID(ctx, raw)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
