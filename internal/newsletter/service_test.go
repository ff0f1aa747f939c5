package newsletter_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/tradedesk/internal"
	newsletterDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/newsletter"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/dbtest"
	"github.com/frahmantamala/tradedesk/internal/newsletter"
	newsletterPostgres "github.com/frahmantamala/tradedesk/internal/newsletter/postgres"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

// staleReadRepo misses the first lookups by email, the way a concurrent
// subscribe sees no row before the other request commits.
type staleReadRepo struct {
	newsletter.RepositoryAPI
	misses int
}

func (r *staleReadRepo) GetByEmail(ctx context.Context, email string) (*newsletterDatamodel.Subscriber, error) {
	if r.misses > 0 {
		r.misses--
		return nil, nil
	}
	return r.RepositoryAPI.GetByEmail(ctx, email)
}

type capturePublisher struct {
	published []*events.NewsletterSubscribedEvent
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.published = append(p.published, event.(*events.NewsletterSubscribedEvent))
	return nil
}

var _ = Describe("Newsletter", func() {
	var (
		ctx       context.Context
		db        *gorm.DB
		service   *newsletter.Service
		publisher *capturePublisher
	)

	stored := func(email string) *newsletterDatamodel.Subscriber {
		var s newsletterDatamodel.Subscriber
		Expect(db.Where("email = ?", email).First(&s).Error).To(Succeed())
		return &s
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		publisher = &capturePublisher{}
		service = newsletter.NewService(newsletterPostgres.NewSubscriberRepository(db), publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("subscribes, confirms and unsubscribes by token", func() {
		sub, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "Reader@Example.com", Name: "Reader"})
		Expect(err).NotTo(HaveOccurred())
		Expect(sub.State).To(Equal(newsletter.StatePendingConfirmation))
		Expect(publisher.published).To(HaveLen(1))

		token := stored("reader@example.com").Token
		Expect(publisher.published[0].Token).To(Equal(token))

		confirmed, already, err := service.Confirm(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(already).To(BeFalse())
		Expect(confirmed.State).To(Equal(newsletter.StateConfirmed))

		_, err = service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).To(MatchError(internal.ErrAlreadySubscribed))

		gone, err := service.Unsubscribe(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		Expect(gone.State).To(Equal(newsletter.StateUnsubscribed))
		Expect(gone.UnsubscribedAt).NotTo(BeNil())
	})

	It("reactivates an unsubscribed address with a fresh token", func() {
		_, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		oldToken := stored("reader@example.com").Token
		_, err = service.Unsubscribe(ctx, oldToken)
		Expect(err).NotTo(HaveOccurred())

		again, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		Expect(again.State).To(Equal(newsletter.StatePendingConfirmation))

		s := stored("reader@example.com")
		Expect(s.Token).NotTo(Equal(oldToken))
		Expect(s.UnsubscribedAt).To(BeNil())

		_, _, err = service.Confirm(ctx, oldToken)
		Expect(err).To(MatchError(internal.ErrSubscriberNotFound))

		var count int64
		Expect(db.Model(&newsletterDatamodel.Subscriber{}).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(1)))
	})

	It("resends the confirmation for an unconfirmed address", func() {
		_, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())

		Expect(publisher.published).To(HaveLen(2))
		Expect(publisher.published[1].Token).To(Equal(publisher.published[0].Token))
	})

	It("says so when a token is confirmed twice", func() {
		_, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		token := stored("reader@example.com").Token

		h := newsletter.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
		r := chi.NewRouter()
		r.Get("/newsletter/confirm/{token}", h.Confirm)

		confirm := func() map[string]interface{} {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/newsletter/confirm/"+token, nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			return body
		}

		first := confirm()
		Expect(first["message"]).To(Equal("Subscription confirmed"))
		Expect(first["already_confirmed"]).To(BeFalse())
		confirmedAt := stored("reader@example.com").ConfirmedAt
		Expect(confirmedAt).NotTo(BeNil())

		second := confirm()
		Expect(second["message"]).To(Equal("Subscription already confirmed"))
		Expect(second["already_confirmed"]).To(BeTrue())
		Expect(stored("reader@example.com").ConfirmedAt.Equal(*confirmedAt)).To(BeTrue())
	})

	It("follows the stored row when another request inserted the address first", func() {
		_, err := service.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		token := stored("reader@example.com").Token

		racing := newsletter.NewService(&staleReadRepo{RepositoryAPI: newsletterPostgres.NewSubscriberRepository(db), misses: 1},
			publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
		again, err := racing.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).NotTo(HaveOccurred())
		Expect(again.State).To(Equal(newsletter.StatePendingConfirmation))
		Expect(stored("reader@example.com").Token).To(Equal(token))

		_, _, err = service.Confirm(ctx, token)
		Expect(err).NotTo(HaveOccurred())
		racing = newsletter.NewService(&staleReadRepo{RepositoryAPI: newsletterPostgres.NewSubscriberRepository(db), misses: 1},
			publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))
		_, err = racing.Subscribe(ctx, &newsletter.SubscribeDTO{Email: "reader@example.com"})
		Expect(err).To(MatchError(internal.ErrAlreadySubscribed))

		var count int64
		Expect(db.Model(&newsletterDatamodel.Subscriber{}).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(1)))
	})

	It("answers 404 for unknown tokens over HTTP", func() {
		h := newsletter.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
		r := chi.NewRouter()
		r.Get("/newsletter/confirm/{token}", h.Confirm)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/newsletter/confirm/nope", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
