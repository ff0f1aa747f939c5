package postgres

import (
	"context"
	"errors"

	newsletterDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/newsletter"
	"github.com/frahmantamala/tradedesk/internal/newsletter"
	"gorm.io/gorm"
)

type SubscriberRepository struct {
	db *gorm.DB
}

func NewSubscriberRepository(db *gorm.DB) newsletter.RepositoryAPI {
	return &SubscriberRepository{db: db}
}

func (r *SubscriberRepository) find(ctx context.Context, column, value string) (*newsletterDatamodel.Subscriber, error) {
	var s newsletterDatamodel.Subscriber
	err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (*newsletterDatamodel.Subscriber, error) {
	return r.find(ctx, "email", email)
}

func (r *SubscriberRepository) GetByToken(ctx context.Context, token string) (*newsletterDatamodel.Subscriber, error) {
	return r.find(ctx, "token", token)
}

func (r *SubscriberRepository) Save(ctx context.Context, s *newsletterDatamodel.Subscriber) error {
	err := r.db.WithContext(ctx).Save(s).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return newsletter.ErrDuplicateSubscriber
	}
	return err
}

func (r *SubscriberRepository) List(ctx context.Context, filter newsletter.SubscriberFilter) ([]*newsletterDatamodel.Subscriber, error) {
	var rows []*newsletterDatamodel.Subscriber
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}
