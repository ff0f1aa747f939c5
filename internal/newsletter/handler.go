package newsletter

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Subscribe(ctx context.Context, dto *SubscribeDTO) (*SubscriberResponse, error)
	Confirm(ctx context.Context, token string) (*SubscriberResponse, bool, error)
	Unsubscribe(ctx context.Context, token string) (*SubscriberResponse, error)
	List(ctx context.Context, filter SubscriberFilter) ([]SubscriberResponse, error)
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

// Subscribe handles POST /api/v1/newsletter/subscribe
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var dto SubscribeDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	sub, err := h.Service.Subscribe(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Check your inbox to confirm your subscription",
		"subscriber": sub,
	})
}

// Confirm handles GET /api/v1/newsletter/confirm/{token}
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	sub, alreadyConfirmed, err := h.Service.Confirm(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	message := "Subscription confirmed"
	if alreadyConfirmed {
		message = "Subscription already confirmed"
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":           message,
		"already_confirmed": alreadyConfirmed,
		"subscriber":        sub,
	})
}

// Unsubscribe handles GET /api/v1/newsletter/unsubscribe/{token}
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Service.Unsubscribe(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":    "You have been unsubscribed",
		"subscriber": sub,
	})
}

// List handles GET /api/v1/admin/subscribers
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := SubscriberFilter{
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	subs, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"subscribers": subs,
		"limit":       limit,
		"offset":      offset,
	})
}
