package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
	"github.com/frahmantamala/tradedesk/internal/workshop"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) workshop.RepositoryAPI {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) ListApplications(ctx context.Context, filter workshop.ApplicationFilter) ([]*application.WorkshopApplication, error) {
	var rows []*application.WorkshopApplication
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.WorkshopID != 0 {
		q = q.Where("workshop_id = ?", filter.WorkshopID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id int64, status, adminNotes string) (*application.WorkshopApplication, error) {
	var app application.WorkshopApplication

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return workshop.ErrApplicationGone
			}
			return err
		}

		previous := app.Status
		if previous != status {
			if status == application.StatusApproved {
				ok, err := ReserveSeat(tx, app.WorkshopID)
				if err != nil {
					return err
				}
				if !ok {
					return workshop.ErrWorkshopFull
				}
			}
			if previous == application.StatusApproved {
				if err := ReleaseSeat(tx, app.WorkshopID); err != nil {
					return err
				}
			}
		}

		updates := map[string]interface{}{"status": status}
		if adminNotes != "" {
			updates["admin_notes"] = adminNotes
		}
		// Guard on the status we read so two admins cannot both count the same approval.
		res := tx.Model(&application.WorkshopApplication{}).
			Where("id = ? AND status = ?", id, previous).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return workshop.ErrStatusConflict
		}

		return tx.Where("id = ?", id).First(&app).Error
	})
	if err != nil {
		return nil, err
	}
	return &app, nil
}
