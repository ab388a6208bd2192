package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })
	return db
}

func fixedClock(now time.Time) Clock {
	return func() time.Time { return now }
}

type serviceFixture struct {
	now      time.Time
	campaign *models.Campaign
	routes   []models.Route
	plumbing *models.Industry
	other    *models.Industry
	user     *models.User
	rival    *models.User
	admin    *models.User
}

func seedServiceFixture(t *testing.T, db *gorm.DB) serviceFixture {
	t.Helper()
	now := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	routes := []models.Route{
		{ZipCode: "94110", Name: "Mission A", Households: 5000, IsActive: true},
		{ZipCode: "94114", Name: "Castro B", Households: 4200, IsActive: true},
	}
	if err := db.Create(&routes).Error; err != nil {
		t.Fatalf("create routes failed: %v", err)
	}
	plumbing := &models.Industry{Name: "Plumbing", IsActive: true, SortOrder: 1}
	other := &models.Industry{Name: "Other", Unlimited: true, IsActive: true, SortOrder: 99}
	user := &models.User{Email: "shop@example.com", BusinessName: "Shop", Status: constants.UserStatusActive}
	rival := &models.User{Email: "rival@example.com", BusinessName: "Rival", Status: constants.UserStatusActive}
	admin := &models.User{Email: "admin@example.com", IsAdmin: true, Status: constants.UserStatusActive}
	for _, item := range []interface{}{plumbing, other, user, rival, admin} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	campaign := &models.Campaign{
		Name:          "April Mailer",
		MailDate:      now.AddDate(0, 0, 40),
		PrintDeadline: now.AddDate(0, 0, 30),
		Status:        constants.CampaignStatusBookingOpen,
		TotalSlots:    4,
	}
	if err := db.Omit("Routes", "Industries").Create(campaign).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if err := db.Model(campaign).Association("Routes").Replace(routes); err != nil {
		t.Fatalf("attach routes failed: %v", err)
	}
	if err := db.Model(campaign).Association("Industries").Replace([]models.Industry{*plumbing, *other}); err != nil {
		t.Fatalf("attach industries failed: %v", err)
	}
	return serviceFixture{
		now:      now,
		campaign: campaign,
		routes:   routes,
		plumbing: plumbing,
		other:    other,
		user:     user,
		rival:    rival,
		admin:    admin,
	}
}
