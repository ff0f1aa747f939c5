package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/admin"
	adminPostgres "github.com/frahmantamala/tradedesk/internal/admin/postgres"
	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	"github.com/frahmantamala/tradedesk/internal/dbtest"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

const secret = "0123456789abcdef0123456789abcdef"

type staticStats struct{}

func (staticStats) DashboardStats(context.Context) (*admin.DashboardStats, error) {
	return &admin.DashboardStats{PendingPayments: 3}, nil
}

var _ = Describe("Admin", func() {
	var (
		ctx     context.Context
		db      *gorm.DB
		service *admin.Service
		tokens  *admin.JWTTokenGenerator
		user    *adminDatamodel.User
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = dbtest.Open()
		Expect(err).NotTo(HaveOccurred())

		hash, err := admin.HashPassword("correct horse", 4)
		Expect(err).NotTo(HaveOccurred())
		user = &adminDatamodel.User{Email: "ops@tradedesk.io", Name: "Ops", PasswordHash: hash, IsActive: true}
		Expect(adminPostgres.NewAdminRepository(db).Upsert(ctx, user)).To(Succeed())

		tokens = admin.NewJWTTokenGenerator(secret, time.Hour)
		service = admin.NewService(adminPostgres.NewAdminRepository(db), staticStats{}, tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	Describe("Login", func() {
		It("issues a token that authenticates back to the admin", func() {
			resp, err := service.Login(ctx, &admin.LoginDTO{Email: " OPS@tradedesk.io ", Password: "correct horse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.TokenType).To(Equal("Bearer"))
			Expect(resp.Admin.ID).To(Equal(user.ID))
			Expect(resp.Admin.LastLoginAt).NotTo(BeNil())

			id, err := service.Authenticate(ctx, resp.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(user.ID))

			var stored adminDatamodel.User
			Expect(db.First(&stored, user.ID).Error).To(Succeed())
			Expect(stored.LastLoginAt).NotTo(BeNil())
		})

		It("answers the same way for a wrong password and an unknown email", func() {
			_, err := service.Login(ctx, &admin.LoginDTO{Email: "ops@tradedesk.io", Password: "nope"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))

			_, err = service.Login(ctx, &admin.LoginDTO{Email: "ghost@tradedesk.io", Password: "correct horse"})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("refuses inactive admins", func() {
			Expect(db.Model(user).Update("is_active", false).Error).To(Succeed())
			_, err := service.Login(ctx, &admin.LoginDTO{Email: "ops@tradedesk.io", Password: "correct horse"})
			Expect(err).To(MatchError(internal.ErrUserInactive))
		})

		It("validates the payload", func() {
			_, err := service.Login(ctx, &admin.LoginDTO{Email: "not-an-email"})
			var appErr *internal.AppError
			Expect(err).To(BeAssignableToTypeOf(appErr))
			Expect(err.(*internal.AppError).Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("keeps the admin and resets the password when upserted again", func() {
			hash, err := admin.HashPassword("new secret", 4)
			Expect(err).NotTo(HaveOccurred())
			again := &adminDatamodel.User{Email: user.Email, Name: "Ops Team", PasswordHash: hash, IsActive: true}
			Expect(adminPostgres.NewAdminRepository(db).Upsert(ctx, again)).To(Succeed())
			Expect(again.ID).To(Equal(user.ID))

			_, err = service.Login(ctx, &admin.LoginDTO{Email: user.Email, Password: "new secret"})
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Tokens", func() {
		It("rejects tokens signed with another secret", func() {
			other := admin.NewJWTTokenGenerator("ffffffffffffffffffffffffffffffff", time.Hour)
			token, _, err := other.GenerateAccessToken(user)
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("reports expired tokens", func() {
			claims := &admin.Claims{
				AdminID: user.ID,
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    "tradedesk",
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("rejects the none algorithm", func() {
			claims := &admin.Claims{AdminID: user.ID, RegisteredClaims: jwt.RegisteredClaims{Issuer: "tradedesk"}}
			token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
			Expect(err).NotTo(HaveOccurred())

			_, err = tokens.ValidateToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})

	Describe("HTTP", func() {
		var router *chi.Mux

		BeforeEach(func() {
			h := admin.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
			router = chi.NewRouter()
			router.Post("/admin/login", h.Login)
			router.Group(func(r chi.Router) {
				r.Use(h.AuthMiddleware)
				r.Get("/admin/me", h.Me)
				r.Get("/admin/dashboard", h.Dashboard)
			})
		})

		login := func() string {
			body, _ := json.Marshal(map[string]string{"email": "ops@tradedesk.io", "password": "correct horse"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp admin.LoginResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			return resp.AccessToken
		}

		It("guards admin routes with the bearer token", func() {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
			req.Header.Set("Authorization", "Bearer "+login())
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var stats admin.DashboardStats
			Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
			Expect(stats.PendingPayments).To(Equal(int64(3)))
		})

		It("returns the current admin from the token", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/me", nil)
			req.Header.Set("Authorization", "Bearer "+login())
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var me admin.AdminResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &me)).To(Succeed())
			Expect(me.Email).To(Equal("ops@tradedesk.io"))
		})

		It("rejects wrong credentials with 401", func() {
			body, _ := json.Marshal(map[string]string{"email": "ops@tradedesk.io", "password": "wrong"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/login", bytes.NewReader(body)))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
