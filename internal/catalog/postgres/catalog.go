package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/tradedesk/internal/catalog"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

// first loads one row into dest, returning found=false instead of gorm.ErrRecordNotFound.
func first(q *gorm.DB, dest interface{}) (bool, error) {
	err := q.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func save(db *gorm.DB, row interface{}) error {
	err := db.Save(row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrDuplicateSlug
	}
	return err
}

func (r *CatalogRepository) ListCourses(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.Course, error) {
	var rows []*catalogDatamodel.Course
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) GetCourseByID(ctx context.Context, id int64) (*catalogDatamodel.Course, error) {
	var c catalogDatamodel.Course
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &c)
	if !found {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) GetCourseBySlug(ctx context.Context, slug string) (*catalogDatamodel.Course, error) {
	var c catalogDatamodel.Course
	found, err := first(r.db.WithContext(ctx).Where("slug = ?", slug), &c)
	if !found {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) SaveCourse(ctx context.Context, c *catalogDatamodel.Course) error {
	return save(r.db.WithContext(ctx), c)
}

func (r *CatalogRepository) ListWorkshops(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.Workshop, error) {
	var rows []*catalogDatamodel.Workshop
	q := r.db.WithContext(ctx).Order("starts_at ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) GetWorkshopByID(ctx context.Context, id int64) (*catalogDatamodel.Workshop, error) {
	var w catalogDatamodel.Workshop
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &w)
	if !found {
		return nil, err
	}
	return &w, nil
}

func (r *CatalogRepository) GetWorkshopBySlug(ctx context.Context, slug string) (*catalogDatamodel.Workshop, error) {
	var w catalogDatamodel.Workshop
	found, err := first(r.db.WithContext(ctx).Where("slug = ?", slug), &w)
	if !found {
		return nil, err
	}
	return &w, nil
}

// SaveWorkshop never writes registered_count; seat accounting goes through the
// conditional updates in the workshop repository.
func (r *CatalogRepository) SaveWorkshop(ctx context.Context, w *catalogDatamodel.Workshop) error {
	db := r.db.WithContext(ctx)
	if w.ID == 0 {
		return save(db, w)
	}
	err := db.Model(w).Select(
		"title", "slug", "summary", "description", "price", "currency",
		"starts_at", "location", "max_participants", "is_active", "updated_at",
	).Updates(w).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return catalog.ErrDuplicateSlug
	}
	return err
}

func (r *CatalogRepository) ListServices(ctx context.Context, activeOnly bool) ([]*catalogDatamodel.TradingService, error) {
	var rows []*catalogDatamodel.TradingService
	q := r.db.WithContext(ctx).Order("price ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) GetServiceByID(ctx context.Context, id int64) (*catalogDatamodel.TradingService, error) {
	var s catalogDatamodel.TradingService
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &s)
	if !found {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) GetServiceBySlug(ctx context.Context, slug string) (*catalogDatamodel.TradingService, error) {
	var s catalogDatamodel.TradingService
	found, err := first(r.db.WithContext(ctx).Where("slug = ?", slug), &s)
	if !found {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepository) SaveService(ctx context.Context, s *catalogDatamodel.TradingService) error {
	return save(r.db.WithContext(ctx), s)
}

func (r *CatalogRepository) ListPublishedPosts(ctx context.Context, tag string, limit, offset int) ([]*catalogDatamodel.BlogPost, error) {
	var rows []*catalogDatamodel.BlogPost
	q := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("published_at DESC").
		Limit(limit).
		Offset(offset)
	if tag != "" {
		q = q.Where(datatypes.JSONArrayQuery("tags").Contains(tag))
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *CatalogRepository) GetPublishedPostBySlug(ctx context.Context, slug string) (*catalogDatamodel.BlogPost, error) {
	var p catalogDatamodel.BlogPost
	found, err := first(r.db.WithContext(ctx).Where("slug = ? AND is_published = ?", slug, true), &p)
	if !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) GetPostByID(ctx context.Context, id int64) (*catalogDatamodel.BlogPost, error) {
	var p catalogDatamodel.BlogPost
	found, err := first(r.db.WithContext(ctx).Where("id = ?", id), &p)
	if !found {
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) SavePost(ctx context.Context, p *catalogDatamodel.BlogPost) error {
	return save(r.db.WithContext(ctx), p)
}
