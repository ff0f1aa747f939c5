package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	applicationDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
	bookingDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	enrollmentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/enrollment"
	paymentDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	paymentpkg "github.com/frahmantamala/tradedesk/internal/payment"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	workshopPostgres "github.com/frahmantamala/tradedesk/internal/workshop/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		db: db,
	}
}

func (r *PaymentRepository) IsEnrolled(ctx context.Context, courseID int64, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&enrollmentDatamodel.Enrollment{}).
		Where("course_id = ? AND student_email = ?", courseID, email).
		Count(&count).Error
	return count > 0, err
}

func (r *PaymentRepository) EnrollFree(ctx context.Context, e *enrollmentDatamodel.Enrollment) error {
	err := r.db.WithContext(ctx).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return paymentpkg.ErrDuplicateEnrollment
	}
	return err
}

func (r *PaymentRepository) CreateFreeApplication(ctx context.Context, app *applicationDatamodel.WorkshopApplication) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := workshopPostgres.ReserveSeat(tx, app.WorkshopID)
		if err != nil {
			return err
		}
		if ok {
			app.Status = applicationDatamodel.StatusApproved
		} else {
			app.Status = applicationDatamodel.StatusWaitlist
		}
		return tx.Create(app).Error
	})
}

func (r *PaymentRepository) CreateBooking(ctx context.Context, b *bookingDatamodel.ServiceBooking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *PaymentRepository) CreatePaidCheckout(ctx context.Context, p *paymentDatamodel.Payment, app *applicationDatamodel.WorkshopApplication, b *bookingDatamodel.ServiceBooking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if app != nil {
			if err := tx.Create(app).Error; err != nil {
				return fmt.Errorf("create application: %w", err)
			}
			p.WorkshopApplicationID = &app.ID
		}
		if b != nil {
			if err := tx.Create(b).Error; err != nil {
				return fmt.Errorf("create booking: %w", err)
			}
			p.ServiceBookingID = &b.ID
		}
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
}

func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*paymentDatamodel.Payment, error) {
	var p paymentDatamodel.Payment
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Complete(ctx context.Context, p *paymentDatamodel.Payment, c paymentgateway.Completion) (*paymentpkg.CompletionResult, error) {
	var result *paymentpkg.CompletionResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&paymentDatamodel.Payment{}).
			Where("id = ? AND status = ?", p.ID, paymentDatamodel.StatusPending).
			Updates(map[string]interface{}{
				"status":             paymentDatamodel.StatusCompleted,
				"gateway_payment_id": c.PaymentID,
				"gateway_signature":  c.Signature,
				"completed_at":       now,
				"updated_at":         now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return paymentpkg.ErrNotPending
		}

		var err error
		switch p.PaymentType {
		case paymentDatamodel.TypeCourse:
			result, err = enroll(tx, p)
		case paymentDatamodel.TypeWorkshop:
			result, err = admitApplicant(tx, p)
		case paymentDatamodel.TypeService:
			result, err = confirmBooking(tx, p)
		default:
			result = &paymentpkg.CompletionResult{Outcome: paymentpkg.OutcomeNone}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func title(tx *gorm.DB, model interface{}, id int64) string {
	var titles []string
	if err := tx.Model(model).Where("id = ?", id).Pluck("title", &titles).Error; err != nil || len(titles) == 0 {
		return ""
	}
	return titles[0]
}

// enroll skips silently when the student is already enrolled in the course
// through another payment; the payment still completes.
func enroll(tx *gorm.DB, p *paymentDatamodel.Payment) (*paymentpkg.CompletionResult, error) {
	if p.CourseID == nil {
		return nil, fmt.Errorf("course payment %d has no course", p.ID)
	}
	e := &enrollmentDatamodel.Enrollment{
		CourseID:     *p.CourseID,
		PaymentID:    &p.ID,
		StudentName:  p.CustomerName,
		StudentEmail: p.CustomerEmail,
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(e)
	if res.Error != nil {
		return nil, fmt.Errorf("create enrollment: %w", res.Error)
	}

	outcome := paymentpkg.OutcomeEnrolled
	if res.RowsAffected == 0 {
		outcome = paymentpkg.OutcomeAlreadyEnrolled
	}
	return &paymentpkg.CompletionResult{
		Outcome:   outcome,
		ItemTitle: title(tx, &catalogDatamodel.Course{}, *p.CourseID),
	}, nil
}

// admitApplicant takes a seat for the paid application. When the workshop
// filled up after checkout the applicant is waitlisted and the payment stays
// completed for an offline refund.
func admitApplicant(tx *gorm.DB, p *paymentDatamodel.Payment) (*paymentpkg.CompletionResult, error) {
	if p.WorkshopApplicationID == nil {
		return nil, fmt.Errorf("workshop payment %d has no application", p.ID)
	}
	var app applicationDatamodel.WorkshopApplication
	if err := tx.Where("id = ?", *p.WorkshopApplicationID).First(&app).Error; err != nil {
		return nil, fmt.Errorf("load application: %w", err)
	}

	result := &paymentpkg.CompletionResult{
		ItemTitle: title(tx, &catalogDatamodel.Workshop{}, app.WorkshopID),
	}
	if app.Status == applicationDatamodel.StatusApproved {
		result.Outcome = paymentpkg.OutcomeApproved
		return result, nil
	}

	ok, err := workshopPostgres.ReserveSeat(tx, app.WorkshopID)
	if err != nil {
		return nil, fmt.Errorf("reserve seat: %w", err)
	}
	status := applicationDatamodel.StatusWaitlist
	result.Outcome = paymentpkg.OutcomeWaitlist
	if ok {
		status = applicationDatamodel.StatusApproved
		result.Outcome = paymentpkg.OutcomeApproved
	}

	res := tx.Model(&applicationDatamodel.WorkshopApplication{}).
		Where("id = ? AND status = ?", app.ID, app.Status).
		Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("update application: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("application %d changed during completion", app.ID)
	}
	return result, nil
}

func confirmBooking(tx *gorm.DB, p *paymentDatamodel.Payment) (*paymentpkg.CompletionResult, error) {
	if p.ServiceBookingID == nil {
		return nil, fmt.Errorf("service payment %d has no booking", p.ID)
	}
	var b bookingDatamodel.ServiceBooking
	if err := tx.Where("id = ?", *p.ServiceBookingID).First(&b).Error; err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if err := tx.Model(&b).Update("status", bookingDatamodel.StatusConfirmed).Error; err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	return &paymentpkg.CompletionResult{
		Outcome:   paymentpkg.OutcomeConfirmed,
		ItemTitle: title(tx, &catalogDatamodel.TradingService{}, b.ServiceID),
	}, nil
}

func (r *PaymentRepository) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&paymentDatamodel.Payment{}).
		Where("id = ? AND status = ?", id, paymentDatamodel.StatusPending).
		Updates(map[string]interface{}{
			"status":         paymentDatamodel.StatusFailed,
			"failure_reason": reason,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *PaymentRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]*paymentDatamodel.Payment, error) {
	var rows []*paymentDatamodel.Payment
	err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", paymentDatamodel.StatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *PaymentRepository) List(ctx context.Context, filter paymentpkg.PaymentFilter) ([]*paymentDatamodel.Payment, error) {
	var rows []*paymentDatamodel.Payment
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PaymentType != "" {
		q = q.Where("payment_type = ?", filter.PaymentType)
	}
	if filter.Email != "" {
		q = q.Where("customer_email = ?", filter.Email)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}
	err := q.Find(&rows).Error
	return rows, err
}
