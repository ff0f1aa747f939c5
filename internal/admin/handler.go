package admin

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/transport"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto *LoginDTO) (*LoginResponse, error)
	Authenticate(ctx context.Context, token string) (int64, error)
	Me(ctx context.Context) (*AdminResponse, error)
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// Login handles POST /api/v1/admin/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	resp, err := h.Service.Login(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/admin/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.Me(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Dashboard handles GET /api/v1/admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}

// AuthMiddleware admits requests carrying a valid admin bearer token and puts
// the admin id on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleError(w, internal.NewUnauthorizedError("Missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		adminID, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithAdminID(r.Context(), adminID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
