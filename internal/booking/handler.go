package booking

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/tradedesk/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter BookingFilter) ([]BookingResponse, error)
	UpdateStatus(ctx context.Context, id int64, dto *UpdateBookingDTO) (*BookingResponse, error)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := BookingFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.ServiceID = id
		}
	}

	bookings, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"bookings": bookings,
		"limit":    limit,
		"offset":   offset,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	var dto UpdateBookingDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	b, err := h.Service.UpdateStatus(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}
