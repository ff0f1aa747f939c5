package contact_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/contact"
	contactPostgres "github.com/frahmantamala/tradedesk/internal/contact/postgres"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/dbtest"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type capturePublisher struct {
	published []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

var _ = Describe("Contact", func() {
	var (
		ctx       context.Context
		service   *contact.Service
		publisher *capturePublisher
		router    chi.Router
	)

	BeforeEach(func() {
		ctx = context.Background()
		db, err := dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		publisher = &capturePublisher{}
		service = contact.NewService(contactPostgres.NewContactRepository(db), publisher, logger)

		h := contact.NewHandler(transport.NewBaseHandler(logger), service)
		r := chi.NewRouter()
		r.Post("/contact", h.Submit)
		r.Get("/admin/contacts", h.List)
		r.Patch("/admin/contacts/{id}/read", h.MarkRead)
		router = r
	})

	It("stores the message and publishes contact.received", func() {
		id, err := service.Submit(ctx, &contact.ContactDTO{Name: " Asha ", Email: "ASHA@example.com", Subject: "Mentorship", Message: "Do you take beginners?"})
		Expect(err).NotTo(HaveOccurred())
		Expect(id).NotTo(BeZero())

		Expect(publisher.published).To(HaveLen(1))
		received := publisher.published[0].(*events.ContactReceivedEvent)
		Expect(received.ContactID).To(Equal(id))
		Expect(received.Email).To(Equal("asha@example.com"))
		Expect(received.Name).To(Equal("Asha"))
	})

	It("rejects a message without body", func() {
		_, err := service.Submit(ctx, &contact.ContactDTO{Name: "Asha", Email: "asha@example.com"})
		Expect(err).To(HaveOccurred())
		Expect(publisher.published).To(BeEmpty())
	})

	It("returns 201 with the contact id", func() {
		body, _ := json.Marshal(map[string]string{"name": "Asha", "email": "asha@example.com", "message": "Hello"})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", bytes.NewReader(body)))

		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["contact_id"]).To(BeNumerically(">", 0))
	})

	It("marks messages read and filters unread ones", func() {
		first, err := service.Submit(ctx, &contact.ContactDTO{Name: "A", Email: "a@example.com", Message: "one"})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Submit(ctx, &contact.ContactDTO{Name: "B", Email: "b@example.com", Message: "two"})
		Expect(err).NotTo(HaveOccurred())

		Expect(service.MarkRead(ctx, first)).To(Succeed())

		unread, err := service.List(ctx, contact.MessageFilter{UnreadOnly: true, Limit: 20})
		Expect(err).NotTo(HaveOccurred())
		Expect(unread).To(HaveLen(1))
		Expect(unread[0].Name).To(Equal("B"))

		Expect(service.MarkRead(ctx, 999)).To(MatchError(internal.ErrContactNotFound))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/contacts/999/read", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
