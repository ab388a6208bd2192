//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	dropAll := func() {
		_ = db.Migrator().DropTable("campaign_routes", "campaign_industries")
		_ = db.Migrator().DropTable(
			&models.NotificationDismissal{},
			&models.PricingRuleApplication{},
			&models.PricingRule{},
			&models.Booking{},
			&models.Campaign{},
			&models.Industry{},
			&models.Route{},
			&models.User{},
		)
	}
	dropAll()

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		dropAll()
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresPaidCellPartialIndex(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	f := seedBookingFixture(t, db)
	repo := NewBookingRepository(db)

	if err := repo.Create(newTestBooking(f, "PG-BK-1", f.industry, constants.PaymentStatusPaid)); err != nil {
		t.Fatalf("create first paid booking failed: %v", err)
	}
	if err := repo.Create(newTestBooking(f, "PG-BK-2", f.industry, constants.PaymentStatusPending)); err != nil {
		t.Fatalf("create pending booking failed: %v", err)
	}
	err := repo.Create(newTestBooking(f, "PG-BK-3", f.industry, constants.PaymentStatusPaid))
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation on postgres, got %v", err)
	}
	for _, no := range []string{"PG-BK-O1", "PG-BK-O2"} {
		if err := repo.Create(newTestBooking(f, no, f.other, constants.PaymentStatusPaid)); err != nil {
			t.Fatalf("create unlimited booking %s failed: %v", no, err)
		}
	}
}

func TestPostgresRowLockAndCounters(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	f := seedBookingFixture(t, db)
	booking := newTestBooking(f, "PG-BK-L", f.industry, constants.PaymentStatusPending)
	if err := NewBookingRepository(db).Create(booking); err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := NewBookingRepository(db).WithTx(tx).GetByIDForUpdate(booking.ID)
		if err != nil {
			return err
		}
		if locked == nil || locked.BookingNo != "PG-BK-L" {
			t.Fatalf("locked booking mismatch: %+v", locked)
		}
		campaigns := NewCampaignRepository(db).WithTx(tx)
		if err := campaigns.IncrementBooked(f.campaign.ID, 1, models.NewMoneyFromCents(60000)); err != nil {
			return err
		}
		return campaigns.DecrementBooked(f.campaign.ID, 3, models.NewMoneyFromCents(90000))
	})
	if err != nil {
		t.Fatalf("transaction failed: %v", err)
	}

	got, err := NewCampaignRepository(db).GetByID(f.campaign.ID)
	if err != nil || got == nil {
		t.Fatalf("reload campaign failed: %v", err)
	}
	if got.BookedSlots != 0 || got.Revenue.Cents() != 0 {
		t.Fatalf("counters should floor at 0, got slots=%d revenue=%s", got.BookedSlots, got.Revenue.String())
	}
}
