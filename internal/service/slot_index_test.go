package service

import (
	"testing"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
)

func TestBuildSlotGrid(t *testing.T) {
	campaign := &models.Campaign{ID: 1}
	routes := []models.Route{{ID: 1, Name: "A", ZipCode: "10001"}, {ID: 2, Name: "B", ZipCode: "10002"}}
	industries := []models.Industry{{ID: 1, Name: "Plumbing"}, {ID: 2, Name: "Other", Unlimited: true}}
	override := models.NewMoneyFromCents(45000)
	bookings := []models.Booking{
		{ID: 5, CampaignID: 1, RouteID: 1, IndustryID: 1, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusPending, Amount: models.NewMoneyFromCents(60000)},
		{ID: 6, CampaignID: 1, RouteID: 1, IndustryID: 1, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, Amount: models.NewMoneyFromCents(60000)},
		{ID: 7, CampaignID: 1, RouteID: 2, IndustryID: 1, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusFailed, Amount: models.NewMoneyFromCents(60000)},
		{ID: 8, CampaignID: 1, RouteID: 2, IndustryID: 2, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, Amount: models.NewMoneyFromCents(60000), PriceOverride: &override},
		{ID: 9, CampaignID: 1, RouteID: 2, IndustryID: 2, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, Amount: models.NewMoneyFromCents(60000)},
		{ID: 10, CampaignID: 1, RouteID: 1, IndustryID: 2, Status: constants.BookingStatusCancelled, PaymentStatus: constants.PaymentStatusPaid, Amount: models.NewMoneyFromCents(60000)},
		{ID: 11, CampaignID: 2, RouteID: 1, IndustryID: 2, Status: constants.BookingStatusConfirmed, PaymentStatus: constants.PaymentStatusPaid, Amount: models.NewMoneyFromCents(60000)},
	}

	grid := BuildSlotGrid(campaign, routes, industries, bookings)
	if grid.Summary.TotalSlots != 4 || grid.Summary.Booked != 2 || grid.Summary.Pending != 1 || grid.Summary.Available != 1 {
		t.Fatalf("unexpected summary: %+v", grid.Summary)
	}
	if grid.Summary.Revenue.Cents() != 165000 {
		t.Fatalf("revenue want 165000 got %d", grid.Summary.Revenue.Cents())
	}

	cells := map[[2]uint]SlotCell{}
	for _, cell := range grid.Slots {
		cells[[2]uint{cell.RouteID, cell.IndustryID}] = cell
	}
	if cell := cells[[2]uint{1, 1}]; cell.State != constants.SlotStateBooked || cell.BookingID != 6 || cell.BookingCount != 2 {
		t.Fatalf("paid booking should be primary: %+v", cell)
	}
	if cell := cells[[2]uint{2, 1}]; cell.State != constants.SlotStatePending {
		t.Fatalf("failed payment keeps the slot pending: %+v", cell)
	}
	if cell := cells[[2]uint{2, 2}]; !cell.Unlimited || cell.BookingCount != 2 || cell.BookingID != 8 {
		t.Fatalf("unlimited cell should list both paid bookings: %+v", cell)
	}
	if cell := cells[[2]uint{1, 2}]; cell.State != constants.SlotStateAvailable {
		t.Fatalf("cancelled and foreign bookings should be ignored: %+v", cell)
	}

	again := BuildSlotGrid(campaign, routes, industries, bookings)
	if again.Summary.Booked != grid.Summary.Booked || again.Summary.Revenue.Cents() != grid.Summary.Revenue.Cents() {
		t.Fatalf("grid should be recomputable")
	}
}
