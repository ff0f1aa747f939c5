package workshop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
)

var (
	ErrWorkshopFull    = errors.New("workshop is full")
	ErrStatusConflict  = errors.New("application status changed concurrently")
	ErrApplicationGone = errors.New("application not found")
)

type RepositoryAPI interface {
	ListApplications(ctx context.Context, filter ApplicationFilter) ([]*application.WorkshopApplication, error)
	// TransitionStatus moves an application to status, keeping the workshop seat
	// count in step: +1 entering approved, -1 leaving it.
	TransitionStatus(ctx context.Context, id int64, status, adminNotes string) (*application.WorkshopApplication, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) ListApplications(ctx context.Context, filter ApplicationFilter) ([]ApplicationResponse, error) {
	if filter.Status != "" {
		v := validation.NewValidator()
		v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus, application.Statuses...)
		if appErr := v.Validate(); appErr != nil {
			return nil, appErr
		}
	}

	rows, err := s.repo.ListApplications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	out := make([]ApplicationResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, FromDataModel(a))
	}
	return out, nil
}

func (s *Service) UpdateApplication(ctx context.Context, id int64, dto *UpdateApplicationDTO) (*ApplicationResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	app, err := s.repo.TransitionStatus(ctx, id, dto.Status, dto.AdminNotes)
	switch {
	case errors.Is(err, ErrApplicationGone):
		return nil, internal.ErrApplicationNotFound
	case errors.Is(err, ErrWorkshopFull):
		return nil, internal.ErrWorkshopFull
	case errors.Is(err, ErrStatusConflict):
		return nil, internal.NewConflictError("Application was modified by another request, reload and retry", internal.ErrCodeInvalidStatus)
	case err != nil:
		return nil, fmt.Errorf("update application: %w", err)
	}

	s.logger.Info("workshop application updated",
		"application_id", app.ID,
		"workshop_id", app.WorkshopID,
		"status", app.Status,
		"admin_id", internal.AdminIDFromContext(ctx))

	resp := FromDataModel(app)
	return &resp, nil
}
