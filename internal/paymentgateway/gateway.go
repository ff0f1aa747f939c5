package paymentgateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderMock     = "mock"
)

// OrderRequest describes an order to open with a provider. Amount is in minor units.
type OrderRequest struct {
	Receipt  string
	Amount   int64
	Currency string
	Notes    map[string]string
}

type Order struct {
	ID       string
	Receipt  string
	Amount   int64
	Currency string
	Status   string
	Raw      json.RawMessage
}

// Completion is what the checkout widget hands back after the customer pays.
type Completion struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Gateway interface {
	Name() string
	// KeyID is the public key the frontend needs to open the checkout widget.
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	VerifyPayment(ctx context.Context, c Completion) bool
}

type Config struct {
	Provider      string
	KeyID         string
	KeySecret     string
	BaseURL       string
	MockAPIURL    string
	MockSecret    string
	Timeout       time.Duration
	RetryAttempts int
	Backoff       time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.razorpay.com"
	}
	return c
}

// New returns the gateway selected by cfg.Provider.
func New(cfg Config, logger *slog.Logger) (Gateway, error) {
	cfg = cfg.withDefaults()
	switch cfg.Provider {
	case ProviderRazorpay:
		return NewRazorpayGateway(cfg, logger), nil
	case ProviderMock, "":
		return NewMockGateway(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// ToMinorUnits converts whole currency units to the smallest unit the provider charges in.
func ToMinorUnits(amount int64) int64 {
	return amount * 100
}
