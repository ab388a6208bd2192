package service

import (
	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"

	"github.com/shopspring/decimal"
)

// SlotCell 槽位格子（路线 × 行业）
type SlotCell struct {
	RouteID      uint         `json:"route_id"`
	RouteName    string       `json:"route_name"`
	ZipCode      string       `json:"zip_code"`
	IndustryID   uint         `json:"industry_id"`
	IndustryName string       `json:"industry_name"`
	Unlimited    bool         `json:"unlimited"`
	State        string       `json:"state"`
	BookingID    uint         `json:"booking_id,omitempty"`
	BookingCount int          `json:"booking_count"`
	Amount       models.Money `json:"amount"`
}

// SlotSummary 槽位汇总
type SlotSummary struct {
	TotalSlots int          `json:"total_slots"`
	Available  int          `json:"available"`
	Booked     int          `json:"booked"`
	Pending    int          `json:"pending"`
	Revenue    models.Money `json:"revenue"`
}

// SlotGrid 投放期槽位视图，每次按预订集合重新计算
type SlotGrid struct {
	CampaignID uint        `json:"campaign_id"`
	Slots      []SlotCell  `json:"slots"`
	Summary    SlotSummary `json:"summary"`
}

type slotKey struct {
	routeID    uint
	industryID uint
}

// BuildSlotGrid 根据路线、行业与未取消预订计算槽位状态
func BuildSlotGrid(campaign *models.Campaign, routes []models.Route, industries []models.Industry, bookings []models.Booking) SlotGrid {
	grouped := make(map[slotKey][]*models.Booking)
	for i := range bookings {
		booking := &bookings[i]
		if booking.IsCancelled() {
			continue
		}
		if campaign != nil && booking.CampaignID != campaign.ID {
			continue
		}
		key := slotKey{routeID: booking.RouteID, industryID: booking.IndustryID}
		grouped[key] = append(grouped[key], booking)
	}

	grid := SlotGrid{Slots: make([]SlotCell, 0, len(routes)*len(industries))}
	if campaign != nil {
		grid.CampaignID = campaign.ID
	}
	revenue := decimal.Zero
	for _, route := range routes {
		for _, industry := range industries {
			cell := SlotCell{
				RouteID:      route.ID,
				RouteName:    route.Name,
				ZipCode:      route.ZipCode,
				IndustryID:   industry.ID,
				IndustryName: industry.Name,
				Unlimited:    industry.Unlimited,
				State:        constants.SlotStateAvailable,
				Amount:       models.NewMoneyFromCents(0),
			}
			cellBookings := grouped[slotKey{routeID: route.ID, industryID: industry.ID}]
			cell.BookingCount = len(cellBookings)
			if primary := primaryBooking(cellBookings); primary != nil {
				cell.BookingID = primary.ID
				cell.Amount = primary.EffectiveAmount()
				if primary.IsPaid() {
					cell.State = constants.SlotStateBooked
				} else {
					cell.State = constants.SlotStatePending
				}
			}
			for _, booking := range cellBookings {
				if booking.IsPaid() {
					revenue = revenue.Add(booking.EffectiveAmount().Decimal)
				}
			}
			switch cell.State {
			case constants.SlotStateBooked:
				grid.Summary.Booked++
			case constants.SlotStatePending:
				grid.Summary.Pending++
			default:
				grid.Summary.Available++
			}
			grid.Slots = append(grid.Slots, cell)
		}
	}
	grid.Summary.TotalSlots = len(grid.Slots)
	grid.Summary.Revenue = models.NewMoneyFromDecimal(revenue)
	return grid
}

// primaryBooking 已支付优先，其次最早的待支付
func primaryBooking(bookings []*models.Booking) *models.Booking {
	var primary *models.Booking
	for _, booking := range bookings {
		if primary == nil {
			primary = booking
			continue
		}
		if booking.IsPaid() != primary.IsPaid() {
			if booking.IsPaid() {
				primary = booking
			}
			continue
		}
		if booking.ID < primary.ID {
			primary = booking
		}
	}
	return primary
}
