package postgres

import (
	"context"

	"github.com/frahmantamala/tradedesk/internal/contact"
	contactDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/contact"
	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) contact.RepositoryAPI {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, m *contactDatamodel.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *ContactRepository) List(ctx context.Context, filter contact.MessageFilter) ([]*contactDatamodel.Message, error) {
	var rows []*contactDatamodel.Message
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.UnreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ContactRepository) MarkRead(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&contactDatamodel.Message{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, nil
	}
	err := r.db.WithContext(ctx).Model(&contactDatamodel.Message{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	return err == nil, err
}
