package payment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/cache"
	"github.com/frahmantamala/tradedesk/internal/catalog"
	catalogPostgres "github.com/frahmantamala/tradedesk/internal/catalog/postgres"
	applicationDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	enrollmentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/enrollment"
	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/dbtest"
	"github.com/frahmantamala/tradedesk/internal/payment"
	paymentPostgres "github.com/frahmantamala/tradedesk/internal/payment/postgres"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const gatewaySecret = "razorpay-test-secret"
const mockSecret = "mock-test-secret"

type testEnv struct {
	ctx        context.Context
	db         *gorm.DB
	gateway    *fakeGateway
	mock       *fakeGateway
	publisher  *recordingPublisher
	repo       *paymentPostgres.PaymentRepository
	checkout   *payment.CheckoutService
	completion *payment.CompletionService
	logger     *slog.Logger
}

func newTestEnv(offlineFallback bool) *testEnv {
	db, err := dbtest.Open()
	Expect(err).NotTo(HaveOccurred())

	env := &testEnv{
		ctx:       context.Background(),
		db:        db,
		gateway:   &fakeGateway{name: paymentgateway.ProviderRazorpay, secret: gatewaySecret},
		mock:      &fakeGateway{name: paymentgateway.ProviderMock, secret: mockSecret},
		publisher: &recordingPublisher{},
		repo:      paymentPostgres.NewPaymentRepository(db),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	catalogSvc := catalog.NewService(catalogPostgres.NewCatalogRepository(db), cache.NoopStore{}, time.Minute, []string{"INR", "USD"}, env.logger)
	env.checkout = payment.NewCheckoutService(catalogSvc, env.repo, env.gateway, env.publisher,
		payment.CheckoutConfig{Currencies: []string{"INR", "USD"}, OfflineFallback: offlineFallback}, env.logger)
	env.completion = payment.NewCompletionService(env.repo, []paymentgateway.Gateway{env.gateway, env.mock}, env.publisher, env.logger)
	return env
}

func (e *testEnv) course(price int64, active bool) *catalogDatamodel.Course {
	c := &catalogDatamodel.Course{Title: "Price Action Basics", Slug: "price-action", Price: price, Currency: "INR", IsActive: active}
	Expect(e.db.Create(c).Error).To(Succeed())
	return c
}

func (e *testEnv) workshop(price int64, capacity, registered int) *catalogDatamodel.Workshop {
	w := &catalogDatamodel.Workshop{
		Title: "Options Bootcamp", Slug: "options-bootcamp", Price: price, Currency: "INR",
		StartsAt: time.Now().Add(72 * time.Hour), MaxParticipants: capacity, RegisteredCount: registered, IsActive: true,
	}
	Expect(e.db.Create(w).Error).To(Succeed())
	return w
}

func (e *testEnv) service(price int64) *catalogDatamodel.TradingService {
	s := &catalogDatamodel.TradingService{Title: "Portfolio Review", Slug: "portfolio-review", ServiceType: "portfolio_review", Price: price, Currency: "INR", IsActive: true}
	Expect(e.db.Create(s).Error).To(Succeed())
	return s
}

func (e *testEnv) payment(id int64) *paymentDatamodel.Payment {
	var p paymentDatamodel.Payment
	Expect(e.db.First(&p, id).Error).To(Succeed())
	return &p
}

func (e *testEnv) registered(workshopID int64) int {
	var w catalogDatamodel.Workshop
	Expect(e.db.First(&w, workshopID).Error).To(Succeed())
	return w.RegisteredCount
}

func (e *testEnv) count(model interface{}) int64 {
	var n int64
	Expect(e.db.Model(model).Count(&n).Error).To(Succeed())
	return n
}

func validationCodes(err error) []string {
	appErr, ok := internal.IsAppError(err)
	Expect(ok).To(BeTrue())
	details, ok := appErr.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	codes := make([]string, 0, len(details.Errors))
	for _, d := range details.Errors {
		codes = append(codes, d.Code)
	}
	return codes
}

var _ = Describe("CheckoutService", func() {
	var env *testEnv

	BeforeEach(func() {
		env = newTestEnv(false)
	})

	Describe("courses", func() {
		It("opens a gateway order in minor units and stores a pending payment", func() {
			c := env.course(4999, true)

			resp, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{
				CourseID: c.ID, Name: "Asha", Email: "Asha@Example.com", Phone: "+91 98765 43210",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.RequiresPayment).To(BeTrue())
			Expect(resp.Amount).To(Equal(int64(4999)))
			Expect(resp.AmountMinor).To(Equal(int64(499900)))
			Expect(resp.GatewayKeyID).To(Equal("key_razorpay"))
			Expect(resp.GatewayOrderID).To(Equal("order_" + resp.Receipt))

			Expect(env.gateway.lastOrder().Amount).To(Equal(int64(499900)))
			Expect(env.gateway.lastOrder().Currency).To(Equal("INR"))

			p := env.payment(resp.PaymentID)
			Expect(p.Status).To(Equal(paymentDatamodel.StatusPending))
			Expect(p.Gateway).To(Equal(paymentgateway.ProviderRazorpay))
			Expect(p.CustomerEmail).To(Equal("asha@example.com"))
			Expect(*p.CourseID).To(Equal(c.ID))
			Expect(string(p.GatewayResponse)).To(ContainSubstring(resp.GatewayOrderID))
		})

		It("enrolls directly into a free course and rejects a second enrollment", func() {
			c := env.course(0, true)
			dto := &payment.CourseOrderDTO{CourseID: c.ID, Name: "Asha", Email: "asha@example.com"}

			resp, err := env.checkout.OrderCourse(env.ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.RequiresPayment).To(BeFalse())
			Expect(resp.EnrollmentID).NotTo(BeNil())
			Expect(env.count(&paymentDatamodel.Payment{})).To(BeZero())

			_, err = env.checkout.OrderCourse(env.ctx, dto)
			Expect(err).To(MatchError(internal.ErrAlreadyEnrolled))
			Expect(env.count(&enrollmentDatamodel.Enrollment{})).To(Equal(int64(1)))
		})

		It("refuses a paid checkout for a student already enrolled", func() {
			c := env.course(999, true)
			Expect(env.db.Create(&enrollmentDatamodel.Enrollment{CourseID: c.ID, StudentName: "Asha", StudentEmail: "asha@example.com"}).Error).To(Succeed())

			_, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: c.ID, Name: "Asha", Email: "asha@example.com"})
			Expect(err).To(MatchError(internal.ErrAlreadyEnrolled))
			Expect(env.gateway.orders).To(BeEmpty())
		})

		It("reports missing and inactive courses", func() {
			inactive := env.course(999, false)

			_, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: 404, Name: "Asha", Email: "asha@example.com"})
			Expect(err).To(MatchError(internal.ErrCourseNotFound))

			_, err = env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: inactive.ID, Name: "Asha", Email: "asha@example.com"})
			Expect(err).To(MatchError(internal.ErrItemInactive))
		})

		It("rejects malformed contact details", func() {
			c := env.course(999, true)
			_, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: c.ID, Name: "", Email: "not-an-email"})
			Expect(err).To(HaveOccurred())
			Expect(validationCodes(err)).To(ContainElement(string(internal.ErrCodeInvalidEmail)))
		})

		It("rejects currencies outside the allow-list", func() {
			c := &catalogDatamodel.Course{Title: "Forex", Slug: "forex", Price: 50, Currency: "EUR", IsActive: true}
			Expect(env.db.Create(c).Error).To(Succeed())

			_, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: c.ID, Name: "Asha", Email: "asha@example.com"})
			Expect(err).To(HaveOccurred())
			Expect(validationCodes(err)).To(ContainElement(string(internal.ErrCodeInvalidCurrency)))
		})
	})

	Describe("workshops", func() {
		It("approves free applications while seats last, then waitlists", func() {
			ws := env.workshop(0, 1, 0)
			dto := &payment.WorkshopOrderDTO{WorkshopID: ws.ID, Name: "Ravi", Email: "ravi@example.com", ExperienceLevel: "beginner"}

			first, err := env.checkout.OrderWorkshop(env.ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Status).To(Equal(applicationDatamodel.StatusApproved))

			second, err := env.checkout.OrderWorkshop(env.ctx, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Status).To(Equal(applicationDatamodel.StatusWaitlist))

			Expect(env.registered(ws.ID)).To(Equal(1))
			Expect(env.publisher.types()).To(Equal([]string{
				events.EventTypeWorkshopApplicationCreated,
				events.EventTypeWorkshopApplicationCreated,
			}))
		})

		It("rejects a paid checkout for a full workshop without persisting anything", func() {
			ws := env.workshop(1500, 2, 2)

			_, err := env.checkout.OrderWorkshop(env.ctx, &payment.WorkshopOrderDTO{WorkshopID: ws.ID, Name: "Ravi", Email: "ravi@example.com"})
			Expect(err).To(MatchError(internal.ErrWorkshopFull))
			Expect(env.count(&applicationDatamodel.WorkshopApplication{})).To(BeZero())
			Expect(env.count(&paymentDatamodel.Payment{})).To(BeZero())
		})

		It("links a pending application to the pending payment", func() {
			ws := env.workshop(1500, 10, 0)

			resp, err := env.checkout.OrderWorkshop(env.ctx, &payment.WorkshopOrderDTO{
				WorkshopID: ws.ID, Name: "Ravi", Email: "ravi@example.com", ExperienceLevel: "advanced", Message: "see you there",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.ApplicationID).NotTo(BeNil())

			p := env.payment(resp.PaymentID)
			Expect(*p.WorkshopApplicationID).To(Equal(*resp.ApplicationID))

			var app applicationDatamodel.WorkshopApplication
			Expect(env.db.First(&app, *resp.ApplicationID).Error).To(Succeed())
			Expect(app.Status).To(Equal(applicationDatamodel.StatusPending))
			Expect(env.registered(ws.ID)).To(BeZero())
		})

		It("rejects unknown experience levels", func() {
			ws := env.workshop(0, 10, 0)
			_, err := env.checkout.OrderWorkshop(env.ctx, &payment.WorkshopOrderDTO{WorkshopID: ws.ID, Name: "Ravi", Email: "ravi@example.com", ExperienceLevel: "guru"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
		})
	})

	Describe("services", func() {
		It("creates a pending booking for a free service", func() {
			svc := env.service(0)

			resp, err := env.checkout.OrderService(env.ctx, &payment.ServiceOrderDTO{
				ServiceID: svc.ID, Name: "Meera", Email: "meera@example.com", PreferredDate: "2026-11-02",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Status).To(Equal(bookingDatamodel.StatusPending))

			var b bookingDatamodel.ServiceBooking
			Expect(env.db.First(&b, *resp.BookingID).Error).To(Succeed())
			Expect(b.PreferredDate).NotTo(BeNil())
			Expect(b.PreferredDate.Format(time.DateOnly)).To(Equal("2026-11-02"))
			Expect(env.publisher.types()).To(Equal([]string{events.EventTypeServiceBookingCreated}))
		})

		It("links the booking to the payment for a paid service", func() {
			svc := env.service(2500)

			resp, err := env.checkout.OrderService(env.ctx, &payment.ServiceOrderDTO{ServiceID: svc.ID, Name: "Meera", Email: "meera@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(*env.payment(resp.PaymentID).ServiceBookingID).To(Equal(*resp.BookingID))
		})

		It("rejects a malformed preferred date", func() {
			svc := env.service(0)
			_, err := env.checkout.OrderService(env.ctx, &payment.ServiceOrderDTO{ServiceID: svc.ID, Name: "Meera", Email: "meera@example.com", PreferredDate: "next tuesday"})
			Expect(err).To(HaveOccurred())
			Expect(env.count(&bookingDatamodel.ServiceBooking{})).To(BeZero())
		})
	})

	Describe("gateway failures", func() {
		It("returns a gateway error and persists nothing without offline fallback", func() {
			svc := env.service(2500)
			env.gateway.err = errors.New("connection refused")

			_, err := env.checkout.OrderService(env.ctx, &payment.ServiceOrderDTO{ServiceID: svc.ID, Name: "Meera", Email: "meera@example.com"})
			Expect(err).To(MatchError(internal.ErrGatewayUnavailable))
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(502))
			Expect(env.count(&paymentDatamodel.Payment{})).To(BeZero())
			Expect(env.count(&bookingDatamodel.ServiceBooking{})).To(BeZero())
		})

		It("falls back to an offline mock order when enabled", func() {
			env = newTestEnv(true)
			c := env.course(999, true)
			env.gateway.err = errors.New("timeout")

			resp, err := env.checkout.OrderCourse(env.ctx, &payment.CourseOrderDTO{CourseID: c.ID, Name: "Asha", Email: "asha@example.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Gateway).To(Equal(paymentDatamodel.GatewayMock))
			Expect(resp.GatewayOrderID).To(Equal("mock_" + resp.Receipt))
			Expect(resp.GatewayKeyID).To(BeEmpty())
			Expect(env.payment(resp.PaymentID).Gateway).To(Equal(paymentDatamodel.GatewayMock))
		})
	})
})
