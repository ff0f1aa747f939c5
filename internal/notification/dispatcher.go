package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/tradedesk/internal/core/events"
)

type Config struct {
	AdminAddress string
	SiteURL      string
}

// Dispatcher turns domain events into emails. Delivery is best effort: errors
// are returned to the event bus, which logs them, and are never retried.
type Dispatcher struct {
	mailer Mailer
	cfg    Config
	logger *slog.Logger
}

func NewDispatcher(mailer Mailer, cfg Config, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, cfg: cfg, logger: logger}
}

func (d *Dispatcher) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeContactReceived, d.HandleContactReceived)
	bus.Subscribe(events.EventTypeServiceBookingCreated, d.HandleServiceBookingCreated)
	bus.Subscribe(events.EventTypeWorkshopApplicationCreated, d.HandleWorkshopApplicationCreated)
	bus.Subscribe(events.EventTypePaymentCompleted, d.HandlePaymentCompleted)
	bus.Subscribe(events.EventTypePaymentFailed, d.HandlePaymentFailed)
	bus.Subscribe(events.EventTypeNewsletterSubscribed, d.HandleNewsletterSubscribed)

	d.logger.Info("notification handlers registered", "admin_address", d.cfg.AdminAddress)
}

// deliver sends every message and reports all failures together. Messages
// without a recipient, such as admin copies with no admin address, are skipped.
func (d *Dispatcher) deliver(ctx context.Context, event events.Event, msgs []Message) error {
	var errs []error
	for _, msg := range msgs {
		if msg.To == "" {
			continue
		}
		if err := d.mailer.Send(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("send %q to %s: %w", msg.Subject, msg.To, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	d.logger.Debug("notifications delivered", "event_type", event.EventType(), "event_id", event.EventID())
	return nil
}

func (d *Dispatcher) HandleContactReceived(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ContactReceivedEvent)
	if !ok {
		return fmt.Errorf("expected ContactReceivedEvent, got %T", event)
	}
	return d.deliver(ctx, event, contactMessages(e, d.cfg.AdminAddress))
}

func (d *Dispatcher) HandleServiceBookingCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.ServiceBookingCreatedEvent)
	if !ok {
		return fmt.Errorf("expected ServiceBookingCreatedEvent, got %T", event)
	}
	return d.deliver(ctx, event, bookingMessages(e, d.cfg.AdminAddress))
}

func (d *Dispatcher) HandleWorkshopApplicationCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.WorkshopApplicationCreatedEvent)
	if !ok {
		return fmt.Errorf("expected WorkshopApplicationCreatedEvent, got %T", event)
	}
	return d.deliver(ctx, event, applicationMessages(e, d.cfg.AdminAddress))
}

func (d *Dispatcher) HandlePaymentCompleted(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentCompletedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentCompletedEvent, got %T", event)
	}
	return d.deliver(ctx, event, paymentCompletedMessages(e, d.cfg.AdminAddress))
}

func (d *Dispatcher) HandlePaymentFailed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.PaymentFailedEvent)
	if !ok {
		return fmt.Errorf("expected PaymentFailedEvent, got %T", event)
	}
	return d.deliver(ctx, event, paymentFailedMessages(e))
}

func (d *Dispatcher) HandleNewsletterSubscribed(ctx context.Context, event events.Event) error {
	e, ok := event.(*events.NewsletterSubscribedEvent)
	if !ok {
		return fmt.Errorf("expected NewsletterSubscribedEvent, got %T", event)
	}
	return d.deliver(ctx, event, newsletterMessages(e, d.cfg.SiteURL))
}
