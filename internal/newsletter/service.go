package newsletter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	newsletterDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/newsletter"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/google/uuid"
)

// ErrDuplicateSubscriber is returned by Save when the email is already taken.
var ErrDuplicateSubscriber = errors.New("duplicate subscriber email")

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*newsletterDatamodel.Subscriber, error)
	GetByToken(ctx context.Context, token string) (*newsletterDatamodel.Subscriber, error)
	Save(ctx context.Context, s *newsletterDatamodel.Subscriber) error
	List(ctx context.Context, filter SubscriberFilter) ([]*newsletterDatamodel.Subscriber, error)
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

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Subscribe creates a subscription awaiting confirmation. An unsubscribed
// address is reactivated with a fresh token; an unconfirmed one gets the
// confirmation email again.
func (s *Service) Subscribe(ctx context.Context, dto *SubscribeDTO) (*SubscriberResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	name := strings.TrimSpace(dto.Name)

	sub, err := s.upsert(ctx, email, name, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("newsletter subscription pending confirmation", "subscriber_id", sub.ID)

	event := events.NewNewsletterSubscribedEvent(sub.ID, sub.Email, sub.Name, sub.Token)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish newsletter event", "error", err, "subscriber_id", sub.ID)
	}

	resp := FromDataModel(sub)
	return &resp, nil
}

// upsert applies the subscribe rules to the stored row. When a concurrent
// request inserts the same address first, the rules run once more against
// the row it created.
func (s *Service) upsert(ctx context.Context, email, name string, retry bool) (*newsletterDatamodel.Subscriber, error) {
	sub, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	created := sub == nil

	switch {
	case created:
		sub = &newsletterDatamodel.Subscriber{
			Email:    email,
			Name:     name,
			Token:    newToken(),
			IsActive: true,
		}
	case sub.IsActive && sub.IsConfirmed:
		return nil, internal.ErrAlreadySubscribed
	case !sub.IsActive:
		sub.IsActive = true
		sub.IsConfirmed = false
		sub.ConfirmedAt = nil
		sub.UnsubscribedAt = nil
		sub.Token = newToken()
		if name != "" {
			sub.Name = name
		}
	}

	if err := s.repo.Save(ctx, sub); err != nil {
		if created && errors.Is(err, ErrDuplicateSubscriber) {
			if retry {
				return s.upsert(ctx, email, name, false)
			}
			return nil, internal.ErrAlreadySubscribed
		}
		return nil, fmt.Errorf("save subscriber: %w", err)
	}
	return sub, nil
}

func (s *Service) byToken(ctx context.Context, token string) (*newsletterDatamodel.Subscriber, error) {
	if strings.TrimSpace(token) == "" {
		return nil, internal.ErrSubscriberNotFound
	}
	sub, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}
	if sub == nil {
		return nil, internal.ErrSubscriberNotFound
	}
	return sub, nil
}

// Confirm reports alreadyConfirmed when the token was used before; the stored
// confirmation time is left untouched in that case.
func (s *Service) Confirm(ctx context.Context, token string) (resp *SubscriberResponse, alreadyConfirmed bool, err error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if !sub.IsActive {
		return nil, false, internal.ErrSubscriberNotFound
	}

	alreadyConfirmed = sub.IsConfirmed
	if !alreadyConfirmed {
		now := time.Now().UTC()
		sub.IsConfirmed = true
		sub.ConfirmedAt = &now
		if err := s.repo.Save(ctx, sub); err != nil {
			return nil, false, fmt.Errorf("confirm subscriber: %w", err)
		}
		s.logger.Info("newsletter subscription confirmed", "subscriber_id", sub.ID)
	}

	out := FromDataModel(sub)
	return &out, alreadyConfirmed, nil
}

func (s *Service) Unsubscribe(ctx context.Context, token string) (*SubscriberResponse, error) {
	sub, err := s.byToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if sub.IsActive {
		now := time.Now().UTC()
		sub.IsActive = false
		sub.UnsubscribedAt = &now
		if err := s.repo.Save(ctx, sub); err != nil {
			return nil, fmt.Errorf("unsubscribe: %w", err)
		}
		s.logger.Info("newsletter unsubscribed", "subscriber_id", sub.ID)
	}

	resp := FromDataModel(sub)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, filter SubscriberFilter) ([]SubscriberResponse, error) {
	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	out := make([]SubscriberResponse, 0, len(rows))
	for _, sub := range rows {
		out = append(out, FromDataModel(sub))
	}
	return out, nil
}
