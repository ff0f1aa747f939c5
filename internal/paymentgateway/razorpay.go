package paymentgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	paymentgatewaytypes "github.com/frahmantamala/tradedesk/internal/core/datamodel/paymentgateway"
)

type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *client
	logger    *slog.Logger
}

func NewRazorpayGateway(cfg Config, logger *slog.Logger) *RazorpayGateway {
	cfg = cfg.withDefaults()
	return &RazorpayGateway{
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		client:    newClient(cfg, logger),
		logger:    logger,
	}
}

func (g *RazorpayGateway) Name() string {
	return ProviderRazorpay
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload := &paymentgatewaytypes.CreateOrderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	g.logger.Info("razorpay: creating order",
		"receipt", req.Receipt,
		"amount", req.Amount,
		"currency", req.Currency)

	raw, err := g.client.postJSON(ctx, g.baseURL+"/v1/orders", payload, func(r *http.Request) {
		r.SetBasicAuth(g.keyID, g.keySecret)
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	var order paymentgatewaytypes.OrderPayload
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay create order: response carried no order id")
	}

	g.logger.Info("razorpay: order created", "receipt", req.Receipt, "order_id", order.ID)

	return &Order{
		ID:       order.ID,
		Receipt:  order.Receipt,
		Amount:   order.Amount,
		Currency: order.Currency,
		Status:   order.Status,
		Raw:      raw,
	}, nil
}

func (g *RazorpayGateway) VerifyPayment(_ context.Context, c Completion) bool {
	return verifySignature(g.keySecret, c)
}
