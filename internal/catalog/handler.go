package catalog

import (
	"context"
	"net/http"

	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListCourses(ctx context.Context) ([]CourseResponse, error)
	GetCourse(ctx context.Context, slug string) (*CourseResponse, error)
	ListWorkshops(ctx context.Context) ([]WorkshopResponse, error)
	GetWorkshop(ctx context.Context, slug string) (*WorkshopResponse, error)
	ListServices(ctx context.Context) ([]ServiceResponse, error)
	GetService(ctx context.Context, slug string) (*ServiceResponse, error)
	ListPosts(ctx context.Context, tag string, limit, offset int) (*PostList, error)
	GetPost(ctx context.Context, slug string) (*PostResponse, error)

	SaveCourse(ctx context.Context, id int64, dto *CourseDTO) (*CourseResponse, error)
	SaveWorkshop(ctx context.Context, id int64, dto *WorkshopDTO) (*WorkshopResponse, error)
	SaveService(ctx context.Context, id int64, dto *ServiceDTO) (*ServiceResponse, error)
	SavePost(ctx context.Context, id int64, dto *PostDTO) (*PostResponse, error)
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

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Service.ListCourses(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"courses": courses})
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.Service.GetCourse(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, course)
}

func (h *Handler) ListWorkshops(w http.ResponseWriter, r *http.Request) {
	workshops, err := h.Service.ListWorkshops(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"workshops": workshops})
}

func (h *Handler) GetWorkshop(w http.ResponseWriter, r *http.Request) {
	workshop, err := h.Service.GetWorkshop(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, workshop)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.Service.ListServices(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"services": services})
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	svc, err := h.Service.GetService(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, svc)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := h.Pagination(r)
	posts, err := h.Service.ListPosts(r.Context(), r.URL.Query().Get("tag"), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, posts)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Service.GetPost(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, post)
}

// ----------------- ADMIN -----------------

// pathIDOrZero returns 0 for create routes that carry no {id}.
func (h *Handler) pathIDOrZero(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if chi.URLParam(r, "id") == "" {
		return 0, true
	}
	id, appErr := h.PathID(r, "id")
	if appErr != nil {
		h.HandleError(w, appErr)
		return 0, false
	}
	return id, true
}

func status(id int64) int {
	if id == 0 {
		return http.StatusCreated
	}
	return http.StatusOK
}

func (h *Handler) SaveCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathIDOrZero(w, r)
	if !ok {
		return
	}
	var dto CourseDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	course, err := h.Service.SaveCourse(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status(id), course)
}

func (h *Handler) SaveWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathIDOrZero(w, r)
	if !ok {
		return
	}
	var dto WorkshopDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	workshop, err := h.Service.SaveWorkshop(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status(id), workshop)
}

func (h *Handler) SaveService(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathIDOrZero(w, r)
	if !ok {
		return
	}
	var dto ServiceDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	svc, err := h.Service.SaveService(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status(id), svc)
}

func (h *Handler) SavePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathIDOrZero(w, r)
	if !ok {
		return
	}
	var dto PostDTO
	if appErr := h.DecodeJSON(w, r, &dto); appErr != nil {
		h.HandleError(w, appErr)
		return
	}
	post, err := h.Service.SavePost(r.Context(), id, &dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, status(id), post)
}
