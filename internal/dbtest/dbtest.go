// Package dbtest opens a throwaway sqlite database with every table migrated.
// It is only imported from tests.
package dbtest

import (
	"fmt"
	"sync/atomic"

	"github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/application"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/booking"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/contact"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/enrollment"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/newsletter"
	"github.com/frahmantamala/tradedesk/internal/core/datamodel/payment"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq int64

// Models lists every persisted type, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&catalog.Course{},
		&catalog.Workshop{},
		&catalog.TradingService{},
		&catalog.BlogPost{},
		&application.WorkshopApplication{},
		&booking.ServiceBooking{},
		&payment.Payment{},
		&enrollment.Enrollment{},
		&newsletter.Subscriber{},
		&contact.Message{},
		&admin.User{},
	}
}

// Open returns an isolated in-memory database. A single connection keeps the
// memory database alive and serialises writers the way row locks would.
func Open() (*gorm.DB, error) {
	name := fmt.Sprintf("file:tradedesk_%d?mode=memory&cache=shared", atomic.AddInt64(&seq, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, err
	}
	return db, nil
}
