package payment

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
)

type CompletionStore interface {
	GetByID(ctx context.Context, id int64) (*paymentDatamodel.Payment, error)
	// Complete flips the payment from pending to completed and runs the
	// post-payment action for its type in the same transaction. It returns
	// ErrNotPending when another completion won the race.
	Complete(ctx context.Context, p *paymentDatamodel.Payment, c paymentgateway.Completion) (*CompletionResult, error)
	// MarkFailed flips pending to failed and reports whether a row changed.
	MarkFailed(ctx context.Context, id int64, reason string) (bool, error)
	List(ctx context.Context, filter PaymentFilter) ([]*paymentDatamodel.Payment, error)
}

type CompletionService struct {
	store     CompletionStore
	gateways  map[string]paymentgateway.Gateway
	publisher EventPublisher
	logger    *slog.Logger
}

// NewCompletionService verifies each payment with the gateway that opened its
// order, so gateways must include the mock gateway when offline fallback is on.
func NewCompletionService(store CompletionStore, gateways []paymentgateway.Gateway, publisher EventPublisher, logger *slog.Logger) *CompletionService {
	byName := make(map[string]paymentgateway.Gateway, len(gateways))
	for _, gw := range gateways {
		byName[gw.Name()] = gw
	}
	return &CompletionService{
		store:     store,
		gateways:  byName,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *CompletionService) load(ctx context.Context, id int64) (*paymentDatamodel.Payment, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if p == nil {
		return nil, internal.ErrPaymentNotFound
	}
	return p, nil
}

func statusError(p *paymentDatamodel.Payment) error {
	if p.Status == paymentDatamodel.StatusCompleted {
		return internal.ErrPaymentAlreadyCompleted
	}
	return internal.ErrInvalidPaymentStatus
}

func (s *CompletionService) Complete(ctx context.Context, id int64, dto *CompleteDTO) (*CompletionResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, statusError(p)
	}
	if dto.GatewayOrderID != p.GatewayOrderID {
		s.logger.Warn("completion order id mismatch",
			"payment_id", p.ID,
			"expected", p.GatewayOrderID,
			"got", dto.GatewayOrderID)
		return nil, internal.ErrOrderMismatch
	}

	c := paymentgateway.Completion{
		OrderID:   dto.GatewayOrderID,
		PaymentID: dto.GatewayPaymentID,
		Signature: dto.GatewaySignature,
	}
	gw, ok := s.gateways[p.Gateway]
	if !ok || !gw.VerifyPayment(ctx, c) {
		s.logger.Warn("payment signature verification failed",
			"payment_id", p.ID,
			"gateway", p.Gateway,
			"gateway_payment_id", dto.GatewayPaymentID)
		return nil, internal.ErrInvalidSignature
	}

	result, err := s.store.Complete(ctx, p, c)
	if err != nil {
		if errors.Is(err, ErrNotPending) {
			s.logger.Warn("duplicate payment completion", "payment_id", p.ID)
			return nil, internal.ErrPaymentAlreadyCompleted
		}
		return nil, fmt.Errorf("complete payment: %w", err)
	}

	s.logger.Info("payment completed",
		"payment_id", p.ID,
		"receipt", p.Receipt,
		"payment_type", p.PaymentType,
		"outcome", result.Outcome)

	event := events.NewPaymentCompletedEvent(p.ID, p.Receipt, p.PaymentType, result.ItemTitle,
		p.Amount, p.Currency, p.CustomerName, p.CustomerEmail, dto.GatewayPaymentID, result.Outcome)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment completed event", "error", err, "payment_id", p.ID)
	}

	return &CompletionResponse{
		PaymentID:   p.ID,
		Receipt:     p.Receipt,
		Status:      paymentDatamodel.StatusCompleted,
		PaymentType: p.PaymentType,
		Outcome:     result.Outcome,
	}, nil
}

func (s *CompletionService) Fail(ctx context.Context, id int64, dto *FailDTO) (*CompletionResponse, error) {
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, statusError(p)
	}
	if dto.GatewayOrderID != p.GatewayOrderID {
		s.logger.Warn("fail callback order id mismatch",
			"payment_id", p.ID,
			"got", dto.GatewayOrderID)
		return nil, internal.ErrOrderMismatch
	}

	reason := strings.TrimSpace(dto.Reason)
	if reason == "" {
		reason = "payment failed at gateway"
	}

	changed, err := s.store.MarkFailed(ctx, p.ID, reason)
	if err != nil {
		return nil, fmt.Errorf("mark payment failed: %w", err)
	}
	if !changed {
		current, err := s.load(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, statusError(current)
	}

	s.logger.Info("payment failed", "payment_id", p.ID, "receipt", p.Receipt, "reason", reason)

	event := events.NewPaymentFailedEvent(p.ID, p.Receipt, p.PaymentType, p.Amount, p.Currency, p.CustomerEmail, reason)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish payment failed event", "error", err, "payment_id", p.ID)
	}

	return &CompletionResponse{
		PaymentID:   p.ID,
		Receipt:     p.Receipt,
		Status:      paymentDatamodel.StatusFailed,
		PaymentType: p.PaymentType,
	}, nil
}

// Get is the public status lookup. The caller must present the receipt from
// checkout; a wrong receipt looks the same as a missing payment.
func (s *CompletionService) Get(ctx context.Context, id int64, receipt string) (*StatusView, error) {
	v := validation.NewValidator()
	v.Field("receipt", strings.TrimSpace(receipt)).Required()
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(p.Receipt), []byte(strings.TrimSpace(receipt))) != 1 {
		return nil, internal.ErrPaymentNotFound
	}
	view := ToStatusView(p)
	return &view, nil
}

func (s *CompletionService) List(ctx context.Context, filter PaymentFilter) ([]PaymentView, error) {
	v := validation.NewValidator()
	v.Field("status", filter.Status).OneOf(internal.ErrCodeInvalidStatus,
		paymentDatamodel.StatusPending, paymentDatamodel.StatusCompleted, paymentDatamodel.StatusFailed,
		paymentDatamodel.StatusCancelled, paymentDatamodel.StatusRefunded)
	v.Field("payment_type", filter.PaymentType).OneOf(internal.ErrCodeInvalidItemType,
		paymentDatamodel.TypeCourse, paymentDatamodel.TypeWorkshop, paymentDatamodel.TypeService, paymentDatamodel.TypeProduct)
	if appErr := v.Validate(); appErr != nil {
		return nil, appErr
	}

	rows, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]PaymentView, 0, len(rows))
	for _, p := range rows {
		out = append(out, ToView(p))
	}
	return out, nil
}
