package postgres

import (
	"context"
	"errors"
	"time"

	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	"gorm.io/gorm"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) get(ctx context.Context, where string, arg interface{}) (*adminDatamodel.User, error) {
	var u adminDatamodel.User
	err := r.db.WithContext(ctx).Where(where, arg).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*adminDatamodel.User, error) {
	return r.get(ctx, "email = ?", email)
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*adminDatamodel.User, error) {
	return r.get(ctx, "id = ?", id)
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&adminDatamodel.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// Upsert creates the admin or resets the name, password and active flag of an
// existing one with the same email.
func (r *AdminRepository) Upsert(ctx context.Context, u *adminDatamodel.User) error {
	existing, err := r.GetByEmail(ctx, u.Email)
	if err != nil {
		return err
	}
	if existing == nil {
		return r.db.WithContext(ctx).Create(u).Error
	}
	u.ID = existing.ID
	return r.db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"name":          u.Name,
		"password_hash": u.PasswordHash,
		"is_active":     u.IsActive,
	}).Error
}
