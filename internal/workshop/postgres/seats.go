package postgres

import (
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	"gorm.io/gorm"
)

// ReserveSeat takes one seat if the workshop still has capacity. It is a single
// conditional UPDATE so concurrent callers can never push registered_count past
// max_participants. Returns false when the workshop is full.
func ReserveSeat(tx *gorm.DB, workshopID int64) (bool, error) {
	res := tx.Model(&catalogDatamodel.Workshop{}).
		Where("id = ? AND registered_count < max_participants", workshopID).
		UpdateColumn("registered_count", gorm.Expr("registered_count + 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseSeat gives back a seat taken by ReserveSeat.
func ReleaseSeat(tx *gorm.DB, workshopID int64) error {
	return tx.Model(&catalogDatamodel.Workshop{}).
		Where("id = ? AND registered_count > 0", workshopID).
		UpdateColumn("registered_count", gorm.Expr("registered_count - 1")).Error
}
