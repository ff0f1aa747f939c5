package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	contactDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/contact"
	"github.com/frahmantamala/tradedesk/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, m *contactDatamodel.Message) error
	List(ctx context.Context, filter MessageFilter) ([]*contactDatamodel.Message, error)
	// MarkRead reports false when no message has the id.
	MarkRead(ctx context.Context, id int64) (bool, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) Submit(ctx context.Context, dto *ContactDTO) (int64, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return 0, appErr
	}

	m := &contactDatamodel.Message{
		Name:    strings.TrimSpace(dto.Name),
		Email:   strings.ToLower(strings.TrimSpace(dto.Email)),
		Phone:   strings.TrimSpace(dto.Phone),
		Subject: strings.TrimSpace(dto.Subject),
		Message: strings.TrimSpace(dto.Message),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return 0, fmt.Errorf("store contact message: %w", err)
	}

	s.logger.Info("contact message received", "contact_id", m.ID, "subject", m.Subject)

	event := events.NewContactReceivedEvent(m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Message)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish contact event", "error", err, "contact_id", m.ID)
	}
	return m.ID, nil
}

func (s *Service) List(ctx context.Context, filter MessageFilter) ([]MessageResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	out := make([]MessageResponse, 0, len(rows))
	for _, m := range rows {
		out = append(out, FromDataModel(m))
	}
	return out, nil
}

func (s *Service) MarkRead(ctx context.Context, id int64) error {
	found, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return fmt.Errorf("mark contact message read: %w", err)
	}
	if !found {
		return internal.ErrContactNotFound
	}
	return nil
}
