package workshop

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/tradedesk/internal/transport"
)

type ServiceAPI interface {
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]ApplicationResponse, error)
	UpdateApplication(ctx context.Context, id int64, dto *UpdateApplicationDTO) (*ApplicationResponse, error)
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

func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	filter := ApplicationFilter{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
		Offset: offset,
	}
	if raw := r.URL.Query().Get("workshop_id"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			filter.WorkshopID = id
		}
	}

	apps, err := h.Service.ListApplications(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"limit":        limit,
		"offset":       offset,
	})
}

func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	var dto UpdateApplicationDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	app, err := h.Service.UpdateApplication(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Error("UpdateApplication: service error", "error", err, "application_id", id)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, app)
}
