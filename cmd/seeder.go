package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/frahmantamala/tradedesk/internal/admin"
	adminPostgres "github.com/frahmantamala/tradedesk/internal/admin/postgres"
	adminDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/admin"
	catalogDatamodel "github.com/frahmantamala/tradedesk/internal/core/datamodel/catalog"
	"github.com/frahmantamala/tradedesk/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	seedAdminEmail    string
	seedAdminName     string
	seedAdminPassword string
	seedClear         bool
	seedSkipCatalog   bool
)

// domainTables are cleared by --clear; admin_users is kept.
var domainTables = []string{
	"enrollments",
	"payments",
	"workshop_applications",
	"service_bookings",
	"contact_messages",
	"newsletter_subscribers",
	"blog_posts",
	"courses",
	"workshops",
	"trading_services",
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with an admin user and a sample catalog",
	Long:  `Seed the database with an admin account and sample courses, workshops, services and posts for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.LoggerWrapper()

		conn, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer conn.Close()

		gdb, err := initGorm(conn, lg)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}
		ctx := context.Background()

		if seedClear {
			stmt := "TRUNCATE TABLE " + strings.Join(domainTables, ", ") + " RESTART IDENTITY CASCADE"
			if err := gdb.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Fatalf("failed to clear tables: %v", err)
			}
			fmt.Println("Cleared domain tables")
		}

		if seedAdminPassword == "" {
			log.Fatal("--admin-password is required")
		}
		hash, err := admin.HashPassword(seedAdminPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		u := &adminDatamodel.User{
			Email:        strings.ToLower(strings.TrimSpace(seedAdminEmail)),
			Name:         seedAdminName,
			PasswordHash: hash,
			IsActive:     true,
		}
		if err := adminPostgres.NewAdminRepository(gdb).Upsert(ctx, u); err != nil {
			log.Fatalf("failed to upsert admin user: %v", err)
		}
		fmt.Println("Seeded admin user:", u.Email)

		if seedSkipCatalog {
			return
		}
		if err := seedCatalog(ctx, gdb, cfg.Payment.DefaultCurrency); err != nil {
			log.Fatalf("failed to seed catalog: %v", err)
		}
		fmt.Println("Sample catalog seeded successfully")
	},
}

// seedCatalog inserts sample items keyed by slug; existing rows are left alone.
func seedCatalog(ctx context.Context, gdb *gorm.DB, currency string) error {
	now := time.Now().UTC()
	published := now.Add(-72 * time.Hour)

	courses := []catalogDatamodel.Course{
		{Title: "Price Action Foundations", Slug: "price-action-foundations", Summary: "Read candles, trends and structure without indicators.", Price: 4999, Currency: currency, IsActive: true},
		{Title: "Options Basics", Slug: "options-basics", Summary: "Calls, puts and the greeks for new traders.", Price: 7999, Currency: currency, IsActive: true},
		{Title: "Trading Journal Starter", Slug: "trading-journal-starter", Summary: "A free guide to keeping an honest journal.", Price: 0, Currency: currency, IsActive: true},
	}
	for i := range courses {
		c := courses[i]
		if err := gdb.WithContext(ctx).Where("slug = ?", c.Slug).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("course %s: %w", c.Slug, err)
		}
		fmt.Printf("Seeded course: %s\n", c.Slug)
	}

	workshops := []catalogDatamodel.Workshop{
		{Title: "Live Market Open", Slug: "live-market-open", Summary: "Trade the first hour together.", Price: 14999, Currency: currency, StartsAt: now.Add(14 * 24 * time.Hour), Location: "Online", MaxParticipants: 25, IsActive: true},
		{Title: "Risk Management Clinic", Slug: "risk-management-clinic", Summary: "Position sizing and stop placement, free for members.", Price: 0, Currency: currency, StartsAt: now.Add(21 * 24 * time.Hour), Location: "Online", MaxParticipants: 50, IsActive: true},
	}
	for i := range workshops {
		w := workshops[i]
		if err := gdb.WithContext(ctx).Where("slug = ?", w.Slug).FirstOrCreate(&w).Error; err != nil {
			return fmt.Errorf("workshop %s: %w", w.Slug, err)
		}
		fmt.Printf("Seeded workshop: %s\n", w.Slug)
	}

	services := []catalogDatamodel.TradingService{
		{Title: "1:1 Mentoring Session", Slug: "mentoring-session", Summary: "An hour reviewing your trades with a coach.", ServiceType: "mentoring", Price: 9999, Currency: currency, IsActive: true},
		{Title: "Portfolio Review", Slug: "portfolio-review", Summary: "A written review of your current holdings.", ServiceType: "consultation", Price: 0, Currency: currency, IsActive: true},
	}
	for i := range services {
		s := services[i]
		if err := gdb.WithContext(ctx).Where("slug = ?", s.Slug).FirstOrCreate(&s).Error; err != nil {
			return fmt.Errorf("service %s: %w", s.Slug, err)
		}
		fmt.Printf("Seeded service: %s\n", s.Slug)
	}

	posts := []catalogDatamodel.BlogPost{
		{Title: "Why Most Traders Skip the Journal", Slug: "why-traders-skip-the-journal", Excerpt: "And what it costs them.", Body: "Keeping a journal is the cheapest edge available.", Tags: datatypes.JSON(`["psychology","habits"]`), IsPublished: true, PublishedAt: &published},
		{Title: "Draft: Reading Volume", Slug: "reading-volume", Excerpt: "Work in progress.", Body: "Volume confirms or questions a move.", Tags: datatypes.JSON(`["volume"]`)},
	}
	for i := range posts {
		p := posts[i]
		if err := gdb.WithContext(ctx).Where("slug = ?", p.Slug).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("post %s: %w", p.Slug, err)
		}
		fmt.Printf("Seeded blog post: %s\n", p.Slug)
	}
	return nil
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@tradedesk.local", "admin login email")
	seedCmd.Flags().StringVar(&seedAdminName, "admin-name", "Tradedesk Admin", "admin display name")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "admin password (required)")
	seedCmd.Flags().BoolVar(&seedClear, "clear", false, "truncate domain tables before seeding")
	seedCmd.Flags().BoolVar(&seedSkipCatalog, "skip-catalog", false, "only seed the admin user")
}
