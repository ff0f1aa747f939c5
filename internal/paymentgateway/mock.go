package paymentgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	paymentgatewaytypes "github.com/frahmantamala/tradedesk/internal/core/datamodel/paymentgateway"
)

// MockGateway talks to a sandbox echo service. The sandbox signs completions
// with the shared mock secret so the verification path is the same as production.
type MockGateway struct {
	apiURL string
	secret string
	keyID  string
	client *client
	logger *slog.Logger
}

func NewMockGateway(cfg Config, logger *slog.Logger) *MockGateway {
	cfg = cfg.withDefaults()
	keyID := cfg.KeyID
	if keyID == "" {
		keyID = "mock_key"
	}
	return &MockGateway{
		apiURL: strings.TrimRight(cfg.MockAPIURL, "/"),
		secret: cfg.MockSecret,
		keyID:  keyID,
		client: newClient(cfg, logger),
		logger: logger,
	}
}

func (g *MockGateway) Name() string {
	return ProviderMock
}

func (g *MockGateway) KeyID() string {
	return g.keyID
}

func (g *MockGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	payload := &paymentgatewaytypes.CreateOrderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	if err := payload.Validate(); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	g.logger.Info("mock gateway: creating order", "receipt", req.Receipt, "api_url", g.apiURL)

	raw, err := g.client.postJSON(ctx, g.apiURL+"/orders", payload, nil)
	if err != nil {
		return nil, fmt.Errorf("mock gateway create order: %w", err)
	}

	// Echo services either return the order at the top level or under "data"/"json".
	var resp struct {
		paymentgatewaytypes.OrderPayload
		Data *paymentgatewaytypes.OrderPayload `json:"data"`
		JSON *paymentgatewaytypes.OrderPayload `json:"json"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	order := resp.OrderPayload
	if order.ID == "" && resp.Data != nil {
		order = *resp.Data
	}
	if order.ID == "" && resp.JSON != nil {
		order = *resp.JSON
	}
	if order.ID == "" {
		order.ID = "order_mock_" + req.Receipt
	}
	if order.Status == "" {
		order.Status = "created"
	}

	return &Order{
		ID:       order.ID,
		Receipt:  req.Receipt,
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   order.Status,
		Raw:      raw,
	}, nil
}

func (g *MockGateway) VerifyPayment(_ context.Context, c Completion) bool {
	return verifySignature(g.secret, c)
}
