package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/notification"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []notification.Message
	fail map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, msg notification.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail[msg.To] {
		return errors.New("mailbox unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, msg := range m.sent {
		out = append(out, msg.To)
	}
	return out
}

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		logger     *slog.Logger
		mailer     *recordingMailer
		dispatcher *notification.Dispatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		mailer = &recordingMailer{fail: map[string]bool{}}
		dispatcher = notification.NewDispatcher(mailer, notification.Config{
			AdminAddress: "desk@example.com",
			SiteURL:      "https://tradedesk.example.com/",
		}, logger)
	})

	It("notifies the admin and the customer about a booking", func() {
		date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
		event := events.NewServiceBookingCreatedEvent(7, "Portfolio Review", "Meera", "meera@example.com", "", &date, "<b>hi</b>", false)

		Expect(dispatcher.HandleServiceBookingCreated(ctx, event)).To(Succeed())
		Expect(mailer.recipients()).To(Equal([]string{"desk@example.com", "meera@example.com"}))
		Expect(mailer.sent[0].HTML).To(ContainSubstring("2 Nov 2026"))
		Expect(mailer.sent[0].HTML).To(ContainSubstring("&lt;b&gt;hi&lt;/b&gt;"))
	})

	It("skips the admin copy when no admin address is configured", func() {
		dispatcher = notification.NewDispatcher(mailer, notification.Config{}, logger)
		event := events.NewContactReceivedEvent(1, "Asha", "asha@example.com", "", "Mentorship", "Hello")

		Expect(dispatcher.HandleContactReceived(ctx, event)).To(Succeed())
		Expect(mailer.recipients()).To(Equal([]string{"asha@example.com"}))
	})

	It("reports delivery failures but still sends the other messages", func() {
		mailer.fail["desk@example.com"] = true
		event := events.NewPaymentCompletedEvent(3, "rcpt_1", "course", "Price Action Basics", 4999, "INR", "Asha", "asha@example.com", "pay_1", "enrolled")

		err := dispatcher.HandlePaymentCompleted(ctx, event)
		Expect(err).To(MatchError(ContainSubstring("mailbox unavailable")))
		Expect(mailer.recipients()).To(Equal([]string{"asha@example.com"}))
		Expect(mailer.sent[0].Subject).To(ContainSubstring("rcpt_1"))
	})

	It("sends confirm and unsubscribe links to new subscribers", func() {
		event := events.NewNewsletterSubscribedEvent(9, "sub@example.com", "", "tok123")

		Expect(dispatcher.HandleNewsletterSubscribed(ctx, event)).To(Succeed())
		Expect(mailer.sent).To(HaveLen(1))
		Expect(mailer.sent[0].HTML).To(ContainSubstring("https://tradedesk.example.com/api/v1/newsletter/confirm/tok123"))
		Expect(mailer.sent[0].HTML).To(ContainSubstring("/api/v1/newsletter/unsubscribe/tok123"))
	})

	It("rejects events of the wrong type", func() {
		event := events.NewContactReceivedEvent(1, "Asha", "asha@example.com", "", "x", "y")
		Expect(dispatcher.HandlePaymentFailed(ctx, event)).NotTo(Succeed())
	})

	It("receives events published on the bus", func() {
		bus := events.NewEventBus(logger)
		dispatcher.RegisterEventHandlers(bus)

		event := events.NewWorkshopApplicationCreatedEvent(4, "Options Bootcamp", "Ravi", "ravi@example.com", "", "beginner", "waitlist", false)
		Expect(bus.Publish(ctx, event)).To(Succeed())
		bus.Wait()

		Expect(mailer.recipients()).To(ConsistOf("desk@example.com", "ravi@example.com"))
	})
})

var _ = Describe("APIMailer", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	})

	It("posts the message with a bearer key", func() {
		var (
			auth string
			body map[string]interface{}
		)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			auth = r.Header.Get("Authorization")
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"email_1"}`))
		}))
		defer server.Close()

		mailer := notification.NewAPIMailer(server.URL, "re_test", "TradeDesk <hello@example.com>", logger)
		err := mailer.Send(context.Background(), notification.Message{To: "asha@example.com", Subject: "Hi", HTML: "<p>Hi</p>"})
		Expect(err).NotTo(HaveOccurred())
		Expect(auth).To(Equal("Bearer re_test"))
		Expect(body["to"]).To(Equal([]interface{}{"asha@example.com"}))
		Expect(body["from"]).To(Equal("TradeDesk <hello@example.com>"))
	})

	It("returns an error for non-2xx responses", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"invalid from"}`))
		}))
		defer server.Close()

		mailer := notification.NewAPIMailer(server.URL, "re_test", "hello@example.com", logger)
		err := mailer.Send(context.Background(), notification.Message{To: "asha@example.com", Subject: "Hi"})
		Expect(err).To(MatchError(ContainSubstring("422")))
	})
})
