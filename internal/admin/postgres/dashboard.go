package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/tradedesk/internal/admin"
	"github.com/jmoiron/sqlx"
)

const countersQuery = `
SELECT
	(SELECT COUNT(*) FROM courses WHERE is_active = TRUE) AS active_courses,
	(SELECT COUNT(*) FROM workshops WHERE is_active = TRUE AND starts_at > $1) AS upcoming_workshops,
	(SELECT COUNT(*) FROM enrollments) AS enrollments,
	(SELECT COUNT(*) FROM workshop_applications WHERE status = 'pending') AS pending_applications,
	(SELECT COUNT(*) FROM service_bookings WHERE status = 'pending') AS pending_bookings,
	(SELECT COUNT(*) FROM contact_messages WHERE is_read = FALSE) AS unread_contacts,
	(SELECT COUNT(*) FROM newsletter_subscribers WHERE is_active = TRUE AND is_confirmed = TRUE) AS active_subscribers,
	(SELECT COUNT(*) FROM payments WHERE status = 'pending') AS pending_payments`

const revenueQuery = `
SELECT currency, COUNT(*) AS payments, COALESCE(SUM(amount), 0) AS amount
FROM payments
WHERE status = 'completed'
GROUP BY currency
ORDER BY currency`

// DashboardReader serves the back-office counters with hand-written SQL.
type DashboardReader struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDashboardReader(db *sqlx.DB) *DashboardReader {
	return &DashboardReader{db: db, now: time.Now}
}

func (r *DashboardReader) DashboardStats(ctx context.Context) (*admin.DashboardStats, error) {
	var stats admin.DashboardStats
	if err := r.db.GetContext(ctx, &stats, countersQuery, r.now().UTC()); err != nil {
		return nil, fmt.Errorf("counters: %w", err)
	}

	revenue := []admin.RevenueLine{}
	if err := r.db.SelectContext(ctx, &revenue, revenueQuery); err != nil {
		return nil, fmt.Errorf("revenue: %w", err)
	}
	stats.Revenue = revenue
	return &stats, nil
}
