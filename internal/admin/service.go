package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetByEmail(ctx context.Context, email string) (*adminDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*adminDatamodel.User, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type StatsReader interface {
	DashboardStats(ctx context.Context) (*DashboardStats, error)
}

type TokenGenerator interface {
	GenerateAccessToken(u *adminDatamodel.User) (string, time.Time, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type Service struct {
	repo   RepositoryAPI
	stats  StatsReader
	tokens TokenGenerator
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, stats StatsReader, tokens TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		stats:  stats,
		tokens: tokens,
		logger: logger,
	}
}

// Login checks the credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, dto *LoginDTO) (*LoginResponse, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if appErr := validation.Struct(dto); appErr != nil {
		return nil, appErr
	}
	email := dto.Email

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.Password)); err != nil {
		s.logger.Warn("admin login rejected", "admin_id", u.ID)
		return nil, internal.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.logger.Error("failed to record admin login", "error", err, "admin_id", u.ID)
	} else {
		u.LastLoginAt = &now
	}

	s.logger.Info("admin logged in", "admin_id", u.ID)
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		Admin:       FromDataModel(u),
	}, nil
}

// Authenticate resolves a bearer token to an active admin id.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return 0, err
	}
	u, err := s.repo.GetByID(ctx, claims.AdminID)
	if err != nil {
		return 0, fmt.Errorf("get admin: %w", err)
	}
	if u == nil {
		return 0, internal.ErrInvalidToken
	}
	if !u.IsActive {
		return 0, internal.ErrUserInactive
	}
	return u.ID, nil
}

func (s *Service) Me(ctx context.Context) (*AdminResponse, error) {
	id := internal.AdminIDFromContext(ctx)
	if id == 0 {
		return nil, internal.ErrInvalidToken
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", err)
	}
	if u == nil {
		return nil, internal.ErrInvalidToken
	}
	resp := FromDataModel(u)
	return &resp, nil
}

func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.stats.DashboardStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return stats, nil
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
