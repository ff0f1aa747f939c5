package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/tradedesk/internal/admin"
	"github.com/frahmantamala/tradedesk/internal/booking"
	"github.com/frahmantamala/tradedesk/internal/catalog"
	"github.com/frahmantamala/tradedesk/internal/contact"
	"github.com/frahmantamala/tradedesk/internal/newsletter"
	"github.com/frahmantamala/tradedesk/internal/payment"
	"github.com/frahmantamala/tradedesk/internal/transport/middleware"
	"github.com/frahmantamala/tradedesk/internal/transport/swagger"
	"github.com/frahmantamala/tradedesk/internal/workshop"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Catalog    *catalog.Handler
	Payment    *payment.Handler
	Workshop   *workshop.Handler
	Booking    *booking.Handler
	Contact    *contact.Handler
	Newsletter *newsletter.Handler
	Admin      *admin.Handler
	Health     *HealthHandler
}

type Options struct {
	AllowedOrigins string
	// RateLimiter guards the public write endpoints; nil disables it.
	RateLimiter *middleware.RateLimiter
	Logger      *slog.Logger
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.ContextLogger(opts.Logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.CORS(opts.AllowedOrigins))

	limited := func(r chi.Router) chi.Router {
		if opts.RateLimiter == nil {
			return r
		}
		return r.With(opts.RateLimiter.Middleware)
	}

	router.Get("/openapi.yml", swagger.SpecHandler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", h.Health.readinessHandler)
	router.Get("/ping", h.Health.pingHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.readinessHandler)
		r.Get("/health/live", h.Health.livenessHandler)
		r.Get("/health/ready", h.Health.readinessHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Get("/courses", h.Catalog.ListCourses)
		r.Get("/courses/{slug}", h.Catalog.GetCourse)
		r.Get("/workshops", h.Catalog.ListWorkshops)
		r.Get("/workshops/{slug}", h.Catalog.GetWorkshop)
		r.Get("/services", h.Catalog.ListServices)
		r.Get("/services/{slug}", h.Catalog.GetService)
		r.Get("/blog", h.Catalog.ListPosts)
		r.Get("/blog/{slug}", h.Catalog.GetPost)

		limited(r).Post("/orders/course", h.Payment.OrderCourse)
		limited(r).Post("/orders/workshop", h.Payment.OrderWorkshop)
		limited(r).Post("/orders/service", h.Payment.OrderService)

		r.Route("/payments/{id}", func(pr chi.Router) {
			pr.Get("/", h.Payment.Get)
			limited(pr).Post("/complete", h.Payment.Complete)
			limited(pr).Post("/fail", h.Payment.Fail)
		})

		limited(r).Post("/contact", h.Contact.Submit)

		r.Route("/newsletter", func(nr chi.Router) {
			limited(nr).Post("/subscribe", h.Newsletter.Subscribe)
			nr.Get("/confirm/{token}", h.Newsletter.Confirm)
			nr.Get("/unsubscribe/{token}", h.Newsletter.Unsubscribe)
		})

		r.Route("/admin", func(ar chi.Router) {
			limited(ar).Post("/login", h.Admin.Login)

			ar.Group(func(pr chi.Router) {
				pr.Use(h.Admin.AuthMiddleware)
				pr.Use(middleware.AdminContext)

				pr.Get("/me", h.Admin.Me)
				pr.Get("/dashboard", h.Admin.Dashboard)
				pr.Get("/payments", h.Payment.List)

				pr.Get("/workshop-applications", h.Workshop.ListApplications)
				pr.Patch("/workshop-applications/{id}", h.Workshop.UpdateApplication)

				pr.Get("/service-bookings", h.Booking.List)
				pr.Patch("/service-bookings/{id}", h.Booking.UpdateStatus)

				pr.Get("/contacts", h.Contact.List)
				pr.Patch("/contacts/{id}/read", h.Contact.MarkRead)

				pr.Get("/subscribers", h.Newsletter.List)

				pr.Post("/courses", h.Catalog.SaveCourse)
				pr.Put("/courses/{id}", h.Catalog.SaveCourse)
				pr.Post("/workshops", h.Catalog.SaveWorkshop)
				pr.Put("/workshops/{id}", h.Catalog.SaveWorkshop)
				pr.Post("/services", h.Catalog.SaveService)
				pr.Put("/services/{id}", h.Catalog.SaveService)
				pr.Post("/blog", h.Catalog.SavePost)
				pr.Put("/blog/{id}", h.Catalog.SavePost)
			})
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeHealth(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{"type": "NOT_FOUND", "code": "ROUTE_NOT_FOUND", "message": "Route not found"},
		})
	})
}
