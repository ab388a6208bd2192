package repository

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

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

type bookingFixture struct {
	campaign *models.Campaign
	route    *models.Route
	industry *models.Industry
	other    *models.Industry
	user     *models.User
}

func seedBookingFixture(t *testing.T, db *gorm.DB) bookingFixture {
	t.Helper()
	route := &models.Route{ZipCode: "10001", Name: "Route 10001-A", IsActive: true}
	industry := &models.Industry{Name: "Plumbing", IsActive: true}
	other := &models.Industry{Name: "Other", Unlimited: true, IsActive: true, SortOrder: 99}
	user := &models.User{Email: "owner@example.com", Status: constants.UserStatusActive}
	for _, item := range []interface{}{route, industry, other, user} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("seed fixture failed: %v", err)
		}
	}
	campaign := &models.Campaign{
		Name:          "Spring Mailer",
		MailDate:      time.Now().AddDate(0, 1, 0),
		PrintDeadline: time.Now().AddDate(0, 0, 20),
		Status:        constants.CampaignStatusBookingOpen,
	}
	if err := NewCampaignRepository(db).Create(campaign); err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	return bookingFixture{campaign: campaign, route: route, industry: industry, other: other, user: user}
}

func newTestBooking(f bookingFixture, no string, industry *models.Industry, paymentStatus string) *models.Booking {
	now := time.Now()
	booking := &models.Booking{
		BookingNo:      no,
		UserID:         f.user.ID,
		CampaignID:     f.campaign.ID,
		RouteID:        f.route.ID,
		IndustryID:     industry.ID,
		SlotExclusive:  !industry.Unlimited,
		Quantity:       1,
		Amount:         models.NewMoneyFromCents(60000),
		PriceSource:    constants.PriceSourceDefault,
		Status:         constants.BookingStatusConfirmed,
		PaymentStatus:  paymentStatus,
		ApprovalStatus: constants.ApprovalStatusPending,
		ArtworkStatus:  constants.ArtworkStatusPendingUpload,
	}
	if paymentStatus == constants.PaymentStatusPending {
		booking.PendingSince = &now
	}
	if paymentStatus == constants.PaymentStatusPaid {
		booking.PaidAt = &now
	}
	return booking
}
