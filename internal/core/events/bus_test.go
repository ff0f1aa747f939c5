package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/frahmantamala/tradedesk/internal/core/events"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var bus *events.EventBus

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("delivers to every subscriber of the event type", func() {
		var hits int32
		handler := func(ctx context.Context, e events.Event) error {
			atomic.AddInt32(&hits, 1)
			return nil
		}
		bus.Subscribe(events.EventTypeContactReceived, handler)
		bus.Subscribe(events.EventTypeContactReceived, handler)
		bus.Subscribe(events.EventTypePaymentFailed, handler)

		Expect(bus.Publish(context.Background(), events.NewContactReceivedEvent(1, "A", "a@b.co", "", "Hi", "Hello"))).To(Succeed())
		bus.Wait()
		Expect(atomic.LoadInt32(&hits)).To(BeEquivalentTo(2))
	})

	It("runs handlers after the publishing context is cancelled", func() {
		var sawErr atomic.Value
		bus.Subscribe(events.EventTypePaymentCompleted, func(ctx context.Context, e events.Event) error {
			sawErr.Store(ctx.Err() == nil)
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewPaymentCompletedEvent(7, "r", "course", "Course", 499, "INR", "A", "a@b.co", "pay_1", "enrolled"))).To(Succeed())
		cancel()
		bus.Wait()
		Expect(sawErr.Load()).To(BeTrue())
	})

	It("swallows handler errors and panics on async publish", func() {
		bus.Subscribe(events.EventTypeNewsletterSubscribed, func(ctx context.Context, e events.Event) error {
			return errors.New("smtp down")
		})
		bus.Subscribe(events.EventTypeNewsletterSubscribed, func(ctx context.Context, e events.Event) error {
			panic("boom")
		})
		Expect(bus.Publish(context.Background(), events.NewNewsletterSubscribedEvent(1, "a@b.co", "", "tok"))).To(Succeed())
		bus.Wait()
	})

	It("returns handler errors on sync publish", func() {
		bus.Subscribe(events.EventTypePaymentFailed, func(ctx context.Context, e events.Event) error {
			return errors.New("nope")
		})
		err := bus.PublishSync(context.Background(), events.NewPaymentFailedEvent(1, "r", "course", 1, "INR", "a@b.co", "declined"))
		Expect(err).To(MatchError(ContainSubstring("payment.failed")))
	})

	It("carries a unique id and type", func() {
		a := events.NewContactReceivedEvent(1, "A", "a@b.co", "", "", "m")
		b := events.NewContactReceivedEvent(1, "A", "a@b.co", "", "", "m")
		Expect(a.EventID()).NotTo(Equal(b.EventID()))
		Expect(a.EventType()).To(Equal("contact.received"))
	})
})
