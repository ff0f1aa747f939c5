package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	applicationDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	enrollmentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/enrollment"
	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CatalogAPI resolves purchasable items. Implementations return not-found or
// inactive AppErrors so they can be passed straight to the client.
type CatalogAPI interface {
	ActiveCourse(ctx context.Context, id int64) (*catalogDatamodel.Course, error)
	ActiveWorkshop(ctx context.Context, id int64) (*catalogDatamodel.Workshop, error)
	ActiveService(ctx context.Context, id int64) (*catalogDatamodel.TradingService, error)
}

type CheckoutStore interface {
	IsEnrolled(ctx context.Context, courseID int64, email string) (bool, error)
	EnrollFree(ctx context.Context, e *enrollmentDatamodel.Enrollment) error
	// CreateFreeApplication reserves a seat when one is left and stores the
	// application as approved, otherwise as waitlist.
	CreateFreeApplication(ctx context.Context, app *applicationDatamodel.WorkshopApplication) error
	CreateBooking(ctx context.Context, b *bookingDatamodel.ServiceBooking) error
	// CreatePaidCheckout stores the optional side record and the pending
	// payment in one transaction, linking the payment to the side record.
	CreatePaidCheckout(ctx context.Context, p *paymentDatamodel.Payment, app *applicationDatamodel.WorkshopApplication, b *bookingDatamodel.ServiceBooking) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type CheckoutConfig struct {
	Currencies      []string
	OfflineFallback bool
}

type CheckoutService struct {
	catalog   CatalogAPI
	store     CheckoutStore
	gateway   paymentgateway.Gateway
	publisher EventPublisher
	cfg       CheckoutConfig
	logger    *slog.Logger
}

func NewCheckoutService(catalog CatalogAPI, store CheckoutStore, gateway paymentgateway.Gateway, publisher EventPublisher, cfg CheckoutConfig, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		catalog:   catalog,
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *CheckoutService) checkCharge(amount int64, currency string) *internal.AppError {
	if appErr := validation.ValidateChargeAmount(amount); appErr != nil {
		return appErr
	}
	return validation.ValidateCurrency(currency, s.cfg.Currencies)
}

// openOrder asks the gateway for a remote order. With offline fallback enabled
// a gateway failure degrades to a locally generated mock order id.
func (s *CheckoutService) openOrder(ctx context.Context, p *paymentDatamodel.Payment, itemID int64) (keyID string, err error) {
	order, err := s.gateway.CreateOrder(ctx, paymentgateway.OrderRequest{
		Receipt:  p.Receipt,
		Amount:   paymentgateway.ToMinorUnits(p.Amount),
		Currency: p.Currency,
		Notes: map[string]string{
			"payment_type": p.PaymentType,
			"item_id":      strconv.FormatInt(itemID, 10),
			"email":        p.CustomerEmail,
		},
	})
	if err == nil {
		p.Gateway = s.gateway.Name()
		p.GatewayOrderID = order.ID
		p.GatewayResponse = datatypes.JSON(order.Raw)
		return s.gateway.KeyID(), nil
	}

	if !s.cfg.OfflineFallback {
		s.logger.Error("gateway order creation failed",
			"error", err,
			"gateway", s.gateway.Name(),
			"receipt", p.Receipt)
		return "", internal.ErrGatewayUnavailable.WithCause(err)
	}

	s.logger.Warn("gateway unavailable, falling back to offline order",
		"error", err,
		"gateway", s.gateway.Name(),
		"receipt", p.Receipt)
	p.Gateway = paymentDatamodel.GatewayMock
	p.GatewayOrderID = "mock_" + p.Receipt
	return "", nil
}

func (s *CheckoutService) newPayment(paymentType string, amount int64, currency, name, email, phone string) *paymentDatamodel.Payment {
	return &paymentDatamodel.Payment{
		Receipt:       "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		Amount:        amount,
		Currency:      strings.ToUpper(currency),
		Status:        paymentDatamodel.StatusPending,
		PaymentType:   paymentType,
		CustomerName:  strings.TrimSpace(name),
		CustomerEmail: email,
		CustomerPhone: strings.TrimSpace(phone),
	}
}

func paidResponse(p *paymentDatamodel.Payment, keyID string, itemID int64, itemTitle string) *CheckoutResponse {
	return &CheckoutResponse{
		ItemType:        p.PaymentType,
		ItemID:          itemID,
		ItemTitle:       itemTitle,
		RequiresPayment: true,
		Status:          p.Status,
		PaymentID:       p.ID,
		Receipt:         p.Receipt,
		Gateway:         p.Gateway,
		GatewayOrderID:  p.GatewayOrderID,
		GatewayKeyID:    keyID,
		Amount:          p.Amount,
		AmountMinor:     paymentgateway.ToMinorUnits(p.Amount),
		Currency:        p.Currency,
	}
}

func (s *CheckoutService) OrderCourse(ctx context.Context, dto *CourseOrderDTO) (*CheckoutResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	email := normalizeEmail(dto.Email)

	course, err := s.catalog.ActiveCourse(ctx, dto.CourseID)
	if err != nil {
		return nil, err
	}

	if course.Price == 0 {
		e := &enrollmentDatamodel.Enrollment{
			CourseID:     course.ID,
			StudentName:  strings.TrimSpace(dto.Name),
			StudentEmail: email,
		}
		if err := s.store.EnrollFree(ctx, e); err != nil {
			if errors.Is(err, ErrDuplicateEnrollment) {
				return nil, internal.ErrAlreadyEnrolled
			}
			return nil, fmt.Errorf("enroll in free course: %w", err)
		}
		s.logger.Info("free course enrollment created", "course_id", course.ID, "enrollment_id", e.ID)
		return &CheckoutResponse{
			ItemType:     paymentDatamodel.TypeCourse,
			ItemID:       course.ID,
			ItemTitle:    course.Title,
			Status:       OutcomeEnrolled,
			Currency:     course.Currency,
			EnrollmentID: &e.ID,
		}, nil
	}

	if appErr := s.checkCharge(course.Price, course.Currency); appErr != nil {
		return nil, appErr
	}
	enrolled, err := s.store.IsEnrolled(ctx, course.ID, email)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, internal.ErrAlreadyEnrolled
	}

	p := s.newPayment(paymentDatamodel.TypeCourse, course.Price, course.Currency, dto.Name, email, dto.Phone)
	p.CourseID = &course.ID
	keyID, err := s.openOrder(ctx, p, course.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePaidCheckout(ctx, p, nil, nil); err != nil {
		return nil, fmt.Errorf("create course checkout: %w", err)
	}

	s.logger.Info("course checkout created",
		"payment_id", p.ID,
		"receipt", p.Receipt,
		"course_id", course.ID,
		"gateway", p.Gateway)
	return paidResponse(p, keyID, course.ID, course.Title), nil
}

func (s *CheckoutService) OrderWorkshop(ctx context.Context, dto *WorkshopOrderDTO) (*CheckoutResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	email := normalizeEmail(dto.Email)

	ws, err := s.catalog.ActiveWorkshop(ctx, dto.WorkshopID)
	if err != nil {
		return nil, err
	}

	app := &applicationDatamodel.WorkshopApplication{
		WorkshopID:      ws.ID,
		Name:            strings.TrimSpace(dto.Name),
		Email:           email,
		Phone:           strings.TrimSpace(dto.Phone),
		ExperienceLevel: dto.ExperienceLevel,
		Message:         strings.TrimSpace(dto.Message),
	}

	if ws.Price == 0 {
		if err := s.store.CreateFreeApplication(ctx, app); err != nil {
			return nil, fmt.Errorf("create free application: %w", err)
		}
		s.logger.Info("free workshop application created",
			"workshop_id", ws.ID,
			"application_id", app.ID,
			"status", app.Status)
		s.publishApplication(ctx, ws, app, false)
		return &CheckoutResponse{
			ItemType:      paymentDatamodel.TypeWorkshop,
			ItemID:        ws.ID,
			ItemTitle:     ws.Title,
			Status:        app.Status,
			Currency:      ws.Currency,
			ApplicationID: &app.ID,
		}, nil
	}

	if ws.IsFull() {
		return nil, internal.ErrWorkshopFull
	}
	if appErr := s.checkCharge(ws.Price, ws.Currency); appErr != nil {
		return nil, appErr
	}

	app.Status = applicationDatamodel.StatusPending
	p := s.newPayment(paymentDatamodel.TypeWorkshop, ws.Price, ws.Currency, dto.Name, email, dto.Phone)
	keyID, err := s.openOrder(ctx, p, ws.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePaidCheckout(ctx, p, app, nil); err != nil {
		return nil, fmt.Errorf("create workshop checkout: %w", err)
	}

	s.logger.Info("workshop checkout created",
		"payment_id", p.ID,
		"receipt", p.Receipt,
		"workshop_id", ws.ID,
		"application_id", app.ID,
		"gateway", p.Gateway)
	s.publishApplication(ctx, ws, app, true)

	resp := paidResponse(p, keyID, ws.ID, ws.Title)
	resp.ApplicationID = &app.ID
	return resp, nil
}

func (s *CheckoutService) OrderService(ctx context.Context, dto *ServiceOrderDTO) (*CheckoutResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	email := normalizeEmail(dto.Email)

	svc, err := s.catalog.ActiveService(ctx, dto.ServiceID)
	if err != nil {
		return nil, err
	}

	b := &bookingDatamodel.ServiceBooking{
		ServiceID:     svc.ID,
		Name:          strings.TrimSpace(dto.Name),
		Email:         email,
		Phone:         strings.TrimSpace(dto.Phone),
		PreferredDate: dto.preferredDate(),
		Message:       strings.TrimSpace(dto.Message),
		Status:        bookingDatamodel.StatusPending,
	}

	if svc.Price == 0 {
		if err := s.store.CreateBooking(ctx, b); err != nil {
			return nil, fmt.Errorf("create booking: %w", err)
		}
		s.logger.Info("free service booking created", "service_id", svc.ID, "booking_id", b.ID)
		s.publishBooking(ctx, svc, b, false)
		return &CheckoutResponse{
			ItemType:  paymentDatamodel.TypeService,
			ItemID:    svc.ID,
			ItemTitle: svc.Title,
			Status:    b.Status,
			Currency:  svc.Currency,
			BookingID: &b.ID,
		}, nil
	}

	if appErr := s.checkCharge(svc.Price, svc.Currency); appErr != nil {
		return nil, appErr
	}

	p := s.newPayment(paymentDatamodel.TypeService, svc.Price, svc.Currency, dto.Name, email, dto.Phone)
	keyID, err := s.openOrder(ctx, p, svc.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreatePaidCheckout(ctx, p, nil, b); err != nil {
		return nil, fmt.Errorf("create service checkout: %w", err)
	}

	s.logger.Info("service checkout created",
		"payment_id", p.ID,
		"receipt", p.Receipt,
		"service_id", svc.ID,
		"booking_id", b.ID,
		"gateway", p.Gateway)
	s.publishBooking(ctx, svc, b, true)

	resp := paidResponse(p, keyID, svc.ID, svc.Title)
	resp.BookingID = &b.ID
	return resp, nil
}

func (s *CheckoutService) publishApplication(ctx context.Context, ws *catalogDatamodel.Workshop, app *applicationDatamodel.WorkshopApplication, paid bool) {
	event := events.NewWorkshopApplicationCreatedEvent(app.ID, ws.Title, app.Name, app.Email, app.Phone, app.ExperienceLevel, app.Status, paid)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish application event", "error", err, "application_id", app.ID)
	}
}

func (s *CheckoutService) publishBooking(ctx context.Context, svc *catalogDatamodel.TradingService, b *bookingDatamodel.ServiceBooking, paid bool) {
	event := events.NewServiceBookingCreatedEvent(b.ID, svc.Title, b.Name, b.Email, b.Phone, b.PreferredDate, b.Message, paid)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish booking event", "error", err, "booking_id", b.ID)
	}
}
