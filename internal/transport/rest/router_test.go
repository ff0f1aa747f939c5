package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/tradedesk/internal/admin"
	adminPostgres "github.com/frahmantamala/tradedesk/internal/admin/postgres"
	"github.com/frahmantamala/tradedesk/internal/booking"
	bookingPostgres "github.com/frahmantamala/tradedesk/internal/booking/postgres"
	"github.com/frahmantamala/tradedesk/internal/cache"
	"github.com/frahmantamala/tradedesk/internal/catalog"
	catalogPostgres "github.com/frahmantamala/tradedesk/internal/catalog/postgres"
	"github.com/frahmantamala/tradedesk/internal/contact"
	contactPostgres "github.com/frahmantamala/tradedesk/internal/contact/postgres"
	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	enrollmentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/enrollment"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/dbtest"
	"github.com/frahmantamala/tradedesk/internal/newsletter"
	newsletterPostgres "github.com/frahmantamala/tradedesk/internal/newsletter/postgres"
	"github.com/frahmantamala/tradedesk/internal/payment"
	paymentPostgres "github.com/frahmantamala/tradedesk/internal/payment/postgres"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/frahmantamala/tradedesk/internal/transport/middleware"
	"github.com/frahmantamala/tradedesk/internal/transport/rest"
	"github.com/frahmantamala/tradedesk/internal/workshop"
	workshopPostgres "github.com/frahmantamala/tradedesk/internal/workshop/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const mockSecret = "sandbox-secret"

var _ = Describe("Router", func() {
	var (
		db      *gorm.DB
		router  *chi.Mux
		bus     *events.EventBus
		sandbox *httptest.Server
		dbDown  bool
	)

	do := func(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
		var reader io.Reader
		if body != nil {
			raw, err := json.Marshal(body)
			Expect(err).NotTo(HaveOccurred())
			reader = bytes.NewReader(raw)
		}
		req := httptest.NewRequest(method, path, reader)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, dst interface{}) {
		Expect(json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed(), rec.Body.String())
	}

	BeforeEach(func() {
		var err error
		dbDown = false
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))

		sandbox = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			var payload map[string]interface{}
			Expect(json.NewDecoder(r.Body).Decode(&payload)).To(Succeed())
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"id": fmt.Sprintf("order_%v", payload["receipt"]), "status": "created"})
		}))
		DeferCleanup(sandbox.Close)

		gateway := paymentgateway.NewMockGateway(paymentgateway.Config{
			Provider: paymentgateway.ProviderMock, MockAPIURL: sandbox.URL, MockSecret: mockSecret, Timeout: 2 * time.Second,
		}, lg)

		bus = events.NewEventBus(lg)
		base := transport.NewBaseHandler(lg)
		catalogService := catalog.NewService(catalogPostgres.NewCatalogRepository(db), cache.NoopStore{}, time.Minute, []string{"INR", "USD"}, lg)
		paymentRepo := paymentPostgres.NewPaymentRepository(db)
		checkout := payment.NewCheckoutService(catalogService, paymentRepo, gateway, bus, payment.CheckoutConfig{Currencies: []string{"INR", "USD"}}, lg)
		completion := payment.NewCompletionService(paymentRepo, []paymentgateway.Gateway{gateway}, bus, lg)

		hash, err := admin.HashPassword("letmein", 4)
		Expect(err).NotTo(HaveOccurred())
		adminRepo := adminPostgres.NewAdminRepository(db)
		Expect(adminRepo.Upsert(context.Background(), &adminDatamodel.User{Email: "ops@tradedesk.io", Name: "Ops", PasswordHash: hash, IsActive: true})).To(Succeed())
		adminService := admin.NewService(adminRepo, nil, admin.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour), lg)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Catalog:    catalog.NewHandler(base, catalogService),
			Payment:    payment.NewHandler(base, checkout, completion),
			Workshop:   workshop.NewHandler(base, workshop.NewService(workshopPostgres.NewApplicationRepository(db), lg)),
			Booking:    booking.NewHandler(base, booking.NewService(bookingPostgres.NewBookingRepository(db), lg)),
			Contact:    contact.NewHandler(base, contact.NewService(contactPostgres.NewContactRepository(db), bus, lg)),
			Newsletter: newsletter.NewHandler(base, newsletter.NewService(newsletterPostgres.NewSubscriberRepository(db), bus, lg)),
			Admin:      admin.NewHandler(base, adminService),
			Health: rest.NewHealthHandler(map[string]rest.Pinger{
				"postgres": rest.PingFunc(func(ctx context.Context) error {
					if dbDown {
						return errors.New("connection refused")
					}
					return nil
				}),
			}),
		}, rest.Options{RateLimiter: middleware.NewRateLimiter(100, 100), Logger: lg})
	})

	AfterEach(func() {
		bus.Wait()
	})

	It("sells a course end to end", func() {
		course := &catalogDatamodel.Course{Title: "Options 101", Slug: "options-101", Price: 4999, Currency: "INR", IsActive: true}
		Expect(db.Create(course).Error).To(Succeed())

		rec := do(http.MethodGet, "/api/v1/courses/options-101", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodPost, "/api/v1/orders/course", map[string]interface{}{
			"course_id": course.ID, "name": "Asha", "email": "asha@example.com",
		}, "")
		Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
		var order payment.CheckoutResponse
		decode(rec, &order)
		Expect(order.RequiresPayment).To(BeTrue())
		Expect(order.Gateway).To(Equal(paymentgateway.ProviderMock))
		Expect(order.AmountMinor).To(Equal(int64(499900)))

		rec = do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", order.PaymentID), map[string]string{
			"gateway_order_id":   order.GatewayOrderID,
			"gateway_payment_id": "pay_1",
			"gateway_signature":  paymentgateway.SignCompletion(mockSecret, order.GatewayOrderID, "pay_1"),
		}, "")
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
		var done payment.CompletionResponse
		decode(rec, &done)
		Expect(done.Outcome).To(Equal(payment.OutcomeEnrolled))

		rec = do(http.MethodGet, fmt.Sprintf("/api/v1/payments/%d?receipt=%s", order.PaymentID, order.Receipt), nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var view payment.StatusView
		decode(rec, &view)
		Expect(view.Status).To(Equal("completed"))

		var enrolled int64
		Expect(db.Model(&enrollmentDatamodel.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrolled).Error).To(Succeed())
		Expect(enrolled).To(Equal(int64(1)))
	})

	It("rejects a forged completion", func() {
		course := &catalogDatamodel.Course{Title: "Futures", Slug: "futures", Price: 100, Currency: "INR", IsActive: true}
		Expect(db.Create(course).Error).To(Succeed())

		rec := do(http.MethodPost, "/api/v1/orders/course", map[string]interface{}{"course_id": course.ID, "name": "Asha", "email": "asha@example.com"}, "")
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var order payment.CheckoutResponse
		decode(rec, &order)

		rec = do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", order.PaymentID), map[string]string{
			"gateway_order_id": order.GatewayOrderID, "gateway_payment_id": "pay_1", "gateway_signature": "forged",
		}, "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("does not let a stranger fail or read someone else's checkout", func() {
		course := &catalogDatamodel.Course{Title: "Swing Trading", Slug: "swing-trading", Price: 2999, Currency: "INR", IsActive: true}
		Expect(db.Create(course).Error).To(Succeed())

		rec := do(http.MethodPost, "/api/v1/orders/course", map[string]interface{}{"course_id": course.ID, "name": "Asha", "email": "asha@example.com"}, "")
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var order payment.CheckoutResponse
		decode(rec, &order)

		rec = do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/fail", order.PaymentID), nil, "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		rec = do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/fail", order.PaymentID), map[string]string{"gateway_order_id": "order_guess"}, "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodGet, fmt.Sprintf("/api/v1/payments/%d", order.PaymentID), nil, "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		rec = do(http.MethodGet, fmt.Sprintf("/api/v1/payments/%d?receipt=rcpt_guess", order.PaymentID), nil, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).NotTo(ContainSubstring("asha@example.com"))

		rec = do(http.MethodPost, fmt.Sprintf("/api/v1/payments/%d/complete", order.PaymentID), map[string]string{
			"gateway_order_id":   order.GatewayOrderID,
			"gateway_payment_id": "pay_1",
			"gateway_signature":  paymentgateway.SignCompletion(mockSecret, order.GatewayOrderID, "pay_1"),
		}, "")
		Expect(rec.Code).To(Equal(http.StatusOK), rec.Body.String())
	})

	It("keeps admin routes behind login", func() {
		Expect(do(http.MethodGet, "/api/v1/admin/contacts", nil, "").Code).To(Equal(http.StatusUnauthorized))

		rec := do(http.MethodPost, "/api/v1/admin/login", map[string]string{"email": "ops@tradedesk.io", "password": "letmein"}, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var login admin.LoginResponse
		decode(rec, &login)

		Expect(do(http.MethodPost, "/api/v1/contact", map[string]string{
			"name": "Asha", "email": "asha@example.com", "subject": "Hi", "message": "When does the next batch start?",
		}, "").Code).To(Equal(http.StatusCreated))

		rec = do(http.MethodGet, "/api/v1/admin/contacts?unread=true", nil, login.AccessToken)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("next batch"))
	})

	It("reports readiness per component", func() {
		Expect(do(http.MethodGet, "/api/v1/health/live", nil, "").Code).To(Equal(http.StatusOK))
		Expect(do(http.MethodGet, "/api/v1/health", nil, "").Code).To(Equal(http.StatusOK))

		dbDown = true
		rec := do(http.MethodGet, "/api/v1/health/ready", nil, "")
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		var health rest.HealthResponse
		decode(rec, &health)
		Expect(health.Components["postgres"].Message).To(Equal("connection refused"))
	})

	It("serves the OpenAPI document and a JSON 404", func() {
		rec := do(http.MethodGet, "/openapi.yml", nil, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3"))

		rec = do(http.MethodGet, "/api/v1/nope", nil, "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
	})

	It("tags every response with a trace id", func() {
		rec := do(http.MethodGet, "/ping", nil, "")
		Expect(rec.Header().Get(middleware.TraceHeader)).NotTo(BeEmpty())
	})
})
