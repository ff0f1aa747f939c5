package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/admin"
	adminPostgres "github.com/frahmantamala/tradedesk/internal/admin/postgres"
	"github.com/frahmantamala/tradedesk/internal/booking"
	bookingPostgres "github.com/frahmantamala/tradedesk/internal/booking/postgres"
	"github.com/frahmantamala/tradedesk/internal/cache"
	"github.com/frahmantamala/tradedesk/internal/catalog"
	catalogPostgres "github.com/frahmantamala/tradedesk/internal/catalog/postgres"
	"github.com/frahmantamala/tradedesk/internal/contact"
	contactPostgres "github.com/frahmantamala/tradedesk/internal/contact/postgres"
	"github.com/frahmantamala/tradedesk/internal/core/events"
	"github.com/frahmantamala/tradedesk/internal/newsletter"
	newsletterPostgres "github.com/frahmantamala/tradedesk/internal/newsletter/postgres"
	"github.com/frahmantamala/tradedesk/internal/notification"
	"github.com/frahmantamala/tradedesk/internal/payment"
	paymentPostgres "github.com/frahmantamala/tradedesk/internal/payment/postgres"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/frahmantamala/tradedesk/internal/transport/middleware"
	"github.com/frahmantamala/tradedesk/internal/transport/rest"
	"github.com/frahmantamala/tradedesk/internal/transport/swagger"
	"github.com/frahmantamala/tradedesk/internal/workshop"
	workshopPostgres "github.com/frahmantamala/tradedesk/internal/workshop/postgres"
	"github.com/frahmantamala/tradedesk/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config      *internal.Config
	DB          *sqlx.DB
	Gorm        *gorm.DB
	Cache       cache.Store
	Bus         *events.EventBus
	Router      *chi.Mux
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

func (d *Dependencies) Close() {
	if d.Cache != nil {
		if err := d.Cache.Close(); err != nil {
			d.Logger.Error("cache close error", "error", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Error("database close error", "error", err)
		}
	}
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if deps.RateLimiter != nil {
		go deps.RateLimiter.Run(bgCtx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	stopBackground()
	// Let in-flight notifications finish before the pool goes away.
	deps.Bus.Wait()
	deps.Close()
	deps.Logger.Info("server stopped")
}

func gatewayConfig(cfg internal.PaymentConfig) paymentgateway.Config {
	return paymentgateway.Config{
		Provider:      cfg.Provider,
		KeyID:         cfg.KeyID,
		KeySecret:     cfg.KeySecret,
		BaseURL:       cfg.BaseURL,
		MockAPIURL:    cfg.MockAPIURL,
		MockSecret:    cfg.MockSecret,
		Timeout:       cfg.Timeout,
		RetryAttempts: cfg.RetryAttempts,
	}
}

// completionGateways lists every gateway a pending payment may have been
// opened with. Offline fallback orders are recorded under the mock gateway.
func completionGateways(primary paymentgateway.Gateway, cfg internal.PaymentConfig, lg *slog.Logger) []paymentgateway.Gateway {
	gateways := []paymentgateway.Gateway{primary}
	if primary.Name() != paymentgateway.ProviderMock {
		gateways = append(gateways, paymentgateway.NewMockGateway(gatewayConfig(cfg), lg))
	}
	return gateways
}

func newMailer(cfg internal.EmailConfig, lg *slog.Logger) notification.Mailer {
	if cfg.Configured() {
		return notification.NewAPIMailer(cfg.APIURL, cfg.APIKey, cfg.From, lg)
	}
	lg.Warn("email API not configured, notifications will only be logged")
	return notification.NewLogMailer(lg)
}

// newEventBus wires the notification dispatcher onto a fresh bus.
func newEventBus(cfg *internal.Config, lg *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(lg)
	siteURL := cfg.Email.SiteURL
	if siteURL == "" {
		siteURL = cfg.Server.BaseURL
	}
	dispatcher := notification.NewDispatcher(newMailer(cfg.Email, lg), notification.Config{
		AdminAddress: cfg.Email.AdminAddress,
		SiteURL:      siteURL,
	}, lg)
	dispatcher.RegisterEventHandlers(bus)
	return bus
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db, lg)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store, err := cache.New(config.Cache.RedisURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		DB:     db,
		Gorm:   gdb,
		Cache:  store,
		Bus:    newEventBus(config, lg),
		Router: chi.NewRouter(),
		Logger: lg,
	}
	if config.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewRateLimiter(config.RateLimit.RPS, config.RateLimit.Burst)
	}
	return deps, nil
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	if _, err := swagger.Load(context.Background()); err != nil {
		return err
	}

	gateway, err := paymentgateway.New(gatewayConfig(cfg.Payment), lg)
	if err != nil {
		return err
	}

	base := transport.NewBaseHandler(lg)

	catalogService := catalog.NewService(catalogPostgres.NewCatalogRepository(deps.Gorm), deps.Cache, cfg.Cache.TTL, cfg.Payment.Currencies, lg)
	paymentRepo := paymentPostgres.NewPaymentRepository(deps.Gorm)
	checkoutService := payment.NewCheckoutService(catalogService, paymentRepo, gateway, deps.Bus, payment.CheckoutConfig{
		Currencies:      cfg.Payment.Currencies,
		OfflineFallback: cfg.Payment.OfflineFallback,
	}, lg)
	completionService := payment.NewCompletionService(paymentRepo, completionGateways(gateway, cfg.Payment, lg), deps.Bus, lg)

	adminService := admin.NewService(
		adminPostgres.NewAdminRepository(deps.Gorm),
		adminPostgres.NewDashboardReader(deps.DB),
		admin.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		lg,
	)

	health := rest.NewHealthHandler(map[string]rest.Pinger{
		"postgres": deps.DB,
		"cache":    rest.PingFunc(deps.Cache.Ping),
	})

	rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Catalog:    catalog.NewHandler(base, catalogService),
		Payment:    payment.NewHandler(base, checkoutService, completionService),
		Workshop:   workshop.NewHandler(base, workshop.NewService(workshopPostgres.NewApplicationRepository(deps.Gorm), lg)),
		Booking:    booking.NewHandler(base, booking.NewService(bookingPostgres.NewBookingRepository(deps.Gorm), lg)),
		Contact:    contact.NewHandler(base, contact.NewService(contactPostgres.NewContactRepository(deps.Gorm), deps.Bus, lg)),
		Newsletter: newsletter.NewHandler(base, newsletter.NewService(newsletterPostgres.NewSubscriberRepository(deps.Gorm), deps.Bus, lg)),
		Admin:      admin.NewHandler(base, adminService),
		Health:     health,
	}, rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimiter:    deps.RateLimiter,
		Logger:         lg,
	})

	lg.Info("routes registered",
		"payment_provider", gateway.Name(),
		"offline_fallback", cfg.Payment.OfflineFallback,
		"rate_limit", cfg.RateLimit.Enabled)
	return nil
}
