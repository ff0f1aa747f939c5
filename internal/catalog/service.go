package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/cache"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
)

var ErrDuplicateSlug = errors.New("duplicate slug")

type RepositoryAPI interface {
	ListCourses(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.Course, error)
	GetCourseByID(ctx context.Context, id int64) (*catalogDatamodel.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*catalogDatamodel.Course, error)
	SaveCourse(ctx context.Context, c *catalogDatamodel.Course) error

	ListWorkshops(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.Workshop, error)
	GetWorkshopByID(ctx context.Context, id int64) (*catalogDatamodel.Workshop, error)
	GetWorkshopBySlug(ctx context.Context, slug string) (*catalogDatamodel.Workshop, error)
	SaveWorkshop(ctx context.Context, w *catalogDatamodel.Workshop) error

	ListServices(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.TradingService, error)
	GetServiceByID(ctx context.Context, id int64) (*catalogDatamodel.TradingService, error)
	GetServiceBySlug(ctx context.Context, slug string) (*catalogDatamodel.TradingService, error)
	SaveService(ctx context.Context, s *catalogDatamodel.TradingService) error

	ListPublishedPosts(ctx context.Context, tag string, limit, offset int) ([]*catalogDatamodel.BlogPost, error)
	GetPublishedPostBySlug(ctx context.Context, slug string) (*catalogDatamodel.BlogPost, error)
	GetPostByID(ctx context.Context, id int64) (*catalogDatamodel.BlogPost, error)
	SavePost(ctx context.Context, p *catalogDatamodel.BlogPost) error
}

const (
	keyCourses  = "catalog:courses"
	keyServices = "catalog:services"
	keyBlog     = "catalog:blog:"
)

type Service struct {
	repo       RepositoryAPI
	cache      cache.Store
	ttl        time.Duration
	currencies []string
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, store cache.Store, ttl time.Duration, currencies []string, logger *slog.Logger) *Service {
	if store == nil {
		store = cache.NoopStore{}
	}
	return &Service{
		repo:       repo,
		cache:      store,
		ttl:        ttl,
		currencies: currencies,
		logger:     logger,
	}
}

// cached serves key from the cache or fills it from load. Cache failures only cost a reload.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var out T
	if err := s.cache.GetJSON(ctx, key, &out); err == nil {
		return out, nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		s.logger.Warn("catalog cache read failed", "key", key, "error", err)
	}

	out, err := load()
	if err != nil {
		return out, err
	}
	if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
		s.logger.Warn("catalog cache write failed", "key", key, "error", err)
	}
	return out, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("catalog cache invalidation failed", "keys", keys, "error", err)
	}
}

func (s *Service) ListCourses(ctx context.Context) ([]CourseResponse, error) {
	return cached(ctx, s, keyCourses, func() ([]CourseResponse, error) {
		rows, err := s.repo.ListCourses(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		out := make([]CourseResponse, 0, len(rows))
		for _, c := range rows {
			out = append(out, CourseFromDataModel(c))
		}
		return out, nil
	})
}

func (s *Service) GetCourse(ctx context.Context, slug string) (*CourseResponse, error) {
	c, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if c == nil || !c.IsActive {
		return nil, internal.ErrCourseNotFound
	}
	resp := CourseFromDataModel(c)
	return &resp, nil
}

// Workshops are not cached: seat counts change on every checkout.
func (s *Service) ListWorkshops(ctx context.Context) ([]WorkshopResponse, error) {
	rows, err := s.repo.ListWorkshops(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list workshops: %w", err)
	}
	out := make([]WorkshopResponse, 0, len(rows))
	for _, w := range rows {
		out = append(out, WorkshopFromDataModel(w))
	}
	return out, nil
}

func (s *Service) GetWorkshop(ctx context.Context, slug string) (*WorkshopResponse, error) {
	w, err := s.repo.GetWorkshopBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get workshop: %w", err)
	}
	if w == nil || !w.IsActive {
		return nil, internal.ErrWorkshopNotFound
	}
	resp := WorkshopFromDataModel(w)
	return &resp, nil
}

func (s *Service) ListServices(ctx context.Context) ([]ServiceResponse, error) {
	return cached(ctx, s, keyServices, func() ([]ServiceResponse, error) {
		rows, err := s.repo.ListServices(ctx, true)
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		out := make([]ServiceResponse, 0, len(rows))
		for _, svc := range rows {
			out = append(out, ServiceFromDataModel(svc))
		}
		return out, nil
	})
}

func (s *Service) GetService(ctx context.Context, slug string) (*ServiceResponse, error) {
	svc, err := s.repo.GetServiceBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil || !svc.IsActive {
		return nil, internal.ErrServiceNotFound
	}
	resp := ServiceFromDataModel(svc)
	return &resp, nil
}

func blogKey(tag string, limit, offset int) string {
	return fmt.Sprintf("%s%s:%d:%d", keyBlog, tag, limit, offset)
}

func (s *Service) ListPosts(ctx context.Context, tag string, limit, offset int) (*PostList, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	posts, err := cached(ctx, s, blogKey(tag, limit, offset), func() ([]PostResponse, error) {
		rows, err := s.repo.ListPublishedPosts(ctx, tag, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		out := make([]PostResponse, 0, len(rows))
		for _, p := range rows {
			out = append(out, PostFromDataModel(p, false))
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return &PostList{Posts: posts, Limit: limit, Offset: offset}, nil
}

func (s *Service) GetPost(ctx context.Context, slug string) (*PostResponse, error) {
	p, err := s.repo.GetPublishedPostBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if p == nil {
		return nil, internal.ErrPostNotFound
	}
	resp := PostFromDataModel(p, true)
	return &resp, nil
}

// ----------------- ADMIN -----------------

func (s *Service) checkCurrency(currency string) *internal.AppError {
	return validation.ValidateCurrency(currency, s.currencies)
}

func mapSaveErr(err error) error {
	if errors.Is(err, ErrDuplicateSlug) {
		return internal.ErrSlugTaken
	}
	return err
}

// SaveCourse creates a course when id is 0, otherwise updates it.
func (s *Service) SaveCourse(ctx context.Context, id int64, dto *CourseDTO) (*CourseResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	if appErr := s.checkCurrency(dto.Currency); appErr != nil {
		return nil, appErr
	}

	c := &catalogDatamodel.Course{}
	if id != 0 {
		existing, err := s.repo.GetCourseByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get course: %w", err)
		}
		if existing == nil {
			return nil, internal.ErrCourseNotFound
		}
		c = existing
	}
	c.Title = dto.Title
	c.Slug = dto.Slug
	c.Summary = dto.Summary
	c.Description = dto.Description
	c.Price = dto.Price
	c.Currency = strings.ToUpper(dto.Currency)
	c.IsActive = dto.IsActive

	if err := s.repo.SaveCourse(ctx, c); err != nil {
		return nil, mapSaveErr(err)
	}
	s.invalidate(ctx, keyCourses)
	s.logger.Info("course saved", "course_id", c.ID, "slug", c.Slug)

	resp := CourseFromDataModel(c)
	return &resp, nil
}

// SaveWorkshop creates or updates a workshop. Capacity cannot drop below the seats already taken.
func (s *Service) SaveWorkshop(ctx context.Context, id int64, dto *WorkshopDTO) (*WorkshopResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	if appErr := s.checkCurrency(dto.Currency); appErr != nil {
		return nil, appErr
	}

	w := &catalogDatamodel.Workshop{}
	if id != 0 {
		existing, err := s.repo.GetWorkshopByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get workshop: %w", err)
		}
		if existing == nil {
			return nil, internal.ErrWorkshopNotFound
		}
		if dto.MaxParticipants < existing.RegisteredCount {
			return nil, internal.NewValidationFieldError("max_participants",
				fmt.Sprintf("max_participants cannot be below the %d seats already taken", existing.RegisteredCount),
				internal.ErrCodeValidationFailed)
		}
		w = existing
	}
	w.Title = dto.Title
	w.Slug = dto.Slug
	w.Summary = dto.Summary
	w.Description = dto.Description
	w.Price = dto.Price
	w.Currency = strings.ToUpper(dto.Currency)
	w.StartsAt = dto.StartsAt
	w.Location = dto.Location
	w.MaxParticipants = dto.MaxParticipants
	w.IsActive = dto.IsActive

	if err := s.repo.SaveWorkshop(ctx, w); err != nil {
		return nil, mapSaveErr(err)
	}
	s.logger.Info("workshop saved", "workshop_id", w.ID, "slug", w.Slug)

	resp := WorkshopFromDataModel(w)
	return &resp, nil
}

func (s *Service) SaveService(ctx context.Context, id int64, dto *ServiceDTO) (*ServiceResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	if appErr := s.checkCurrency(dto.Currency); appErr != nil {
		return nil, appErr
	}

	svc := &catalogDatamodel.TradingService{}
	if id != 0 {
		existing, err := s.repo.GetServiceByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get service: %w", err)
		}
		if existing == nil {
			return nil, internal.ErrServiceNotFound
		}
		svc = existing
	}
	svc.Title = dto.Title
	svc.Slug = dto.Slug
	svc.Summary = dto.Summary
	svc.Description = dto.Description
	svc.ServiceType = dto.ServiceType
	svc.Price = dto.Price
	svc.Currency = strings.ToUpper(dto.Currency)
	svc.IsActive = dto.IsActive

	if err := s.repo.SaveService(ctx, svc); err != nil {
		return nil, mapSaveErr(err)
	}
	s.invalidate(ctx, keyServices)
	s.logger.Info("service saved", "service_id", svc.ID, "slug", svc.Slug)

	resp := ServiceFromDataModel(svc)
	return &resp, nil
}

func (s *Service) SavePost(ctx context.Context, id int64, dto *PostDTO) (*PostResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	p := &catalogDatamodel.BlogPost{}
	if id != 0 {
		existing, err := s.repo.GetPostByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get post: %w", err)
		}
		if existing == nil {
			return nil, internal.ErrPostNotFound
		}
		p = existing
	}

	tags := make([]string, 0, len(dto.Tags))
	for _, t := range dto.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}

	p.Title = dto.Title
	p.Slug = dto.Slug
	p.Excerpt = dto.Excerpt
	p.Body = dto.Body
	p.Tags = encodeTags(tags)
	if dto.IsPublished && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}
	p.IsPublished = dto.IsPublished

	if err := s.repo.SavePost(ctx, p); err != nil {
		return nil, mapSaveErr(err)
	}
	// Only the untagged first page is dropped; other pages expire with the TTL.
	s.invalidate(ctx, blogKey("", 20, 0))
	s.logger.Info("post saved", "post_id", p.ID, "slug", p.Slug, "published", p.IsPublished)

	resp := PostFromDataModel(p, true)
	return &resp, nil
}

// ----------------- CHECKOUT LOOKUPS -----------------

// ActiveCourse returns a purchasable course or a not-found / inactive error.
func (s *Service) ActiveCourse(ctx context.Context, id int64) (*catalogDatamodel.Course, error) {
	c, err := s.repo.GetCourseByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if c == nil {
		return nil, internal.ErrCourseNotFound
	}
	if !c.IsActive {
		return nil, internal.ErrItemInactive
	}
	return c, nil
}

func (s *Service) ActiveWorkshop(ctx context.Context, id int64) (*catalogDatamodel.Workshop, error) {
	w, err := s.repo.GetWorkshopByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get workshop: %w", err)
	}
	if w == nil {
		return nil, internal.ErrWorkshopNotFound
	}
	if !w.IsActive {
		return nil, internal.ErrItemInactive
	}
	return w, nil
}

func (s *Service) ActiveService(ctx context.Context, id int64) (*catalogDatamodel.TradingService, error) {
	svc, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, internal.ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, internal.ErrItemInactive
	}
	return svc, nil
}
