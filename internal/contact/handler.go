package contact

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tradedesk/internal/transport"
)

type ServiceAPI interface {
	Submit(ctx context.Context, dto *ContactDTO) (int64, error)
	List(ctx context.Context, filter MessageFilter) ([]MessageResponse, error)
	MarkRead(ctx context.Context, id int64) error
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

// Submit handles POST /api/v1/contact
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto ContactDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	id, err := h.Service.Submit(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"contact_id": id,
		"message":    "Thanks, we will get back to you soon",
	})
}

// List handles GET /api/v1/admin/contacts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := MessageFilter{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	messages, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"contacts": messages,
		"limit":    limit,
		"offset":   offset,
	})
}

// MarkRead handles PATCH /api/v1/admin/contacts/{id}/read
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	if err := h.Service.MarkRead(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"id": id, "is_read": true})
}
