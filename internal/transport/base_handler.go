package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/pkg/logger"
	"github.com/go-chi/chi"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes a plain error envelope without a domain code.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.WriteJSON(w, status, internal.Response{Error: &internal.AppError{
		Type:       errorTypeFor(status),
		Code:       internal.ErrorCode(http.StatusText(status)),
		Message:    message,
		StatusCode: status,
	}})
}

// HandleError writes an AppError in the standard envelope.
func (h *BaseHandler) HandleError(w http.ResponseWriter, appErr *internal.AppError) {
	status, body := appErr.ToHTTPResponse()
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps a service error to a response. Unknown errors become
// a 500 and are logged with their cause; the client only sees a generic message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("service error", "code", appErr.Code, "error", err)
		}
		h.HandleError(w, appErr)
		return
	}

	h.Logger.Error("unexpected service error", "error", err)
	h.HandleError(w, internal.NewInternalError("An unexpected error occurred", nil))
}

// DecodeJSON reads a bounded JSON body into dst, rejecting unknown trailing data.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *internal.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return internal.NewValidationError("request body is empty", internal.ErrCodeValidationFailed)
		case errors.As(err, &maxErr):
			return internal.NewValidationError("request body too large", internal.ErrCodeValidationFailed)
		default:
			return internal.NewValidationError("invalid request body", internal.ErrCodeValidationFailed)
		}
	}
	return nil
}

// PathID parses a positive int64 URL parameter.
func (h *BaseHandler) PathID(r *http.Request, name string) (int64, *internal.AppError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, "invalid "+name, internal.ErrCodeValidationFailed)
	}
	return id, nil
}

// Pagination reads limit and offset query parameters with bounds.
func (h *BaseHandler) Pagination(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}

func errorTypeFor(status int) internal.ErrorType {
	switch {
	case status == http.StatusNotFound:
		return internal.ErrorTypeNotFound
	case status == http.StatusUnauthorized:
		return internal.ErrorTypeUnauthorized
	case status == http.StatusForbidden:
		return internal.ErrorTypeForbidden
	case status == http.StatusConflict:
		return internal.ErrorTypeConflict
	case status == http.StatusBadGateway:
		return internal.ErrorTypeExternal
	case status >= http.StatusInternalServerError:
		return internal.ErrorTypeInternal
	default:
		return internal.ErrorTypeValidation
	}
}
