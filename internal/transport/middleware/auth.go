package middleware

import (
	"net/http"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/pkg/logger"
)

// AdminContext tags the request logger with the authenticated admin. It runs
// after the admin auth middleware.
func AdminContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		adminID := internal.AdminIDFromContext(r.Context())
		if adminID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "admin_id", adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
