package booking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
)

type RepositoryAPI interface {
	List(ctx context.Context, filter BookingFilter) ([]*bookingDatamodel.ServiceBooking, error)
	GetByID(ctx context.Context, id int64) (*bookingDatamodel.ServiceBooking, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) List(ctx context.Context, filter BookingFilter) ([]BookingResponse, error) {
	if filter.Status != "" {
		v := validation.NewValidator()
		v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus, bookingDatamodel.Statuses...)
		if appErr := v.Validate(); appErr != nil {
			return nil, appErr
		}
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]BookingResponse, 0, len(rows))
	for _, b := range rows {
		out = append(out, FromDataModel(b))
	}
	return out, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, dto *UpdateBookingDTO) (*BookingResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if b == nil {
		return nil, internal.ErrBookingNotFound
	}

	if err := s.repo.UpdateStatus(ctx, id, dto.Status); err != nil {
		return nil, fmt.Errorf("update booking: %w", err)
	}

	s.logger.Info("service booking updated",
		"booking_id", id,
		"from", b.Status,
		"to", dto.Status,
		"admin_id", internal.AdminIDFromContext(ctx))

	b.Status = dto.Status
	resp := FromDataModel(b)
	return &resp, nil
}
