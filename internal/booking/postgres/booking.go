package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/tradedesk/internal/booking"
	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) booking.RepositoryAPI {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) List(ctx context.Context, filter booking.BookingFilter) ([]*bookingDatamodel.ServiceBooking, error) {
	var rows []*bookingDatamodel.ServiceBooking
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.ServiceID != 0 {
		q = q.Where("service_id = ?", filter.ServiceID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*bookingDatamodel.ServiceBooking, error) {
	var b bookingDatamodel.ServiceBooking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&bookingDatamodel.ServiceBooking{}).
		Where("id = ?", id).
		Update("status", status).Error
}
