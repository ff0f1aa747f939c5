package payment

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/tradedesk/internal/transport"
)

type CheckoutAPI interface {
	OrderCourse(ctx context.Context, dto *CourseOrderDTO) (*CheckoutResponse, error)
	OrderWorkshop(ctx context.Context, dto *WorkshopOrderDTO) (*CheckoutResponse, error)
	OrderService(ctx context.Context, dto *ServiceOrderDTO) (*CheckoutResponse, error)
}

type CompletionAPI interface {
	Complete(ctx context.Context, id int64, dto *CompleteDTO) (*CompletionResponse, error)
	Fail(ctx context.Context, id int64, dto *FailDTO) (*CompletionResponse, error)
	Get(ctx context.Context, id int64, receipt string) (*StatusView, error)
	List(ctx context.Context, filter PaymentFilter) ([]PaymentView, error)
}

type Handler struct {
	*transport.BaseHandler
	Checkout   CheckoutAPI
	Completion CompletionAPI
}

func NewHandler(baseHandler *transport.BaseHandler, checkout CheckoutAPI, completion CompletionAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Checkout:    checkout,
		Completion:  completion,
	}
}

// OrderCourse handles POST /api/v1/orders/course
func (h *Handler) OrderCourse(w http.ResponseWriter, r *http.Request) {
	var dto CourseOrderDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	resp, err := h.Checkout.OrderCourse(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// OrderWorkshop handles POST /api/v1/orders/workshop
func (h *Handler) OrderWorkshop(w http.ResponseWriter, r *http.Request) {
	var dto WorkshopOrderDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	resp, err := h.Checkout.OrderWorkshop(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// OrderService handles POST /api/v1/orders/service
func (h *Handler) OrderService(w http.ResponseWriter, r *http.Request) {
	var dto ServiceOrderDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	resp, err := h.Checkout.OrderService(r.Context(), &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, resp)
}

// Complete handles POST /api/v1/payments/{id}/complete, called by the frontend
// with what the gateway widget returned.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto CompleteDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	resp, err := h.Completion.Complete(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Warn("payment completion rejected", "payment_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Fail handles POST /api/v1/payments/{id}/fail
func (h *Handler) Fail(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	var dto FailDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}

	resp, err := h.Completion.Fail(r.Context(), id, &dto)
	if err != nil {
		h.Logger.Warn("payment fail callback rejected", "payment_id", id, "error", err)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/payments/{id}?receipt=
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	view, err := h.Completion.Get(r.Context(), id, r.URL.Query().Get("receipt"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, view)
}

// List handles GET /api/v1/admin/payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	q := r.URL.Query()
	filter := PaymentFilter{
		Status:      q.Get("status"),
		PaymentType: q.Get("payment_type"),
		Email:       strings.ToLower(strings.TrimSpace(q.Get("email"))),
		Limit:       limit,
		Offset:      offset,
	}
	payments, err := h.Completion.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"limit":    limit,
		"offset":   offset,
	})
}
