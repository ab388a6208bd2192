package service

import (
	"context"
	"strings"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

// PaymentEvent 网关异步回调事件
type PaymentEvent struct {
	Type      string        `json:"type"`
	BookingID uint          `json:"booking_id"`
	BookingNo string        `json:"booking_no"`
	Amount    *models.Money `json:"amount"`
	Reference string        `json:"reference"`
}

// HandlePaymentEvent 把网关事件分发到支付状态入口
func (s *BookingService) HandlePaymentEvent(ctx context.Context, event PaymentEvent) (*models.Booking, error) {
	eventType := strings.ToLower(strings.TrimSpace(event.Type))
	reference := strings.TrimSpace(event.Reference)
	if reference == "" {
		return nil, ErrBookingReferenceRequired
	}
	bookingID, err := s.resolvePaymentBooking(ctx, event)
	if err != nil {
		return nil, err
	}
	logger.Infow("payment_event_received", "type", eventType, "booking_id", bookingID, "reference", reference)
	switch eventType {
	case constants.PaymentEventPaid:
		if event.Amount == nil {
			return nil, ErrPaymentAmountMismatch
		}
		return s.MarkPaid(ctx, PaymentConfirmation{BookingID: bookingID, Amount: *event.Amount, Reference: reference})
	case constants.PaymentEventFailed:
		return s.MarkPaymentFailed(ctx, bookingID, reference)
	case constants.PaymentEventRefunded:
		return s.MarkRefunded(ctx, bookingID, reference)
	default:
		return nil, ErrPaymentEventUnsupported
	}
}

func (s *BookingService) resolvePaymentBooking(ctx context.Context, event PaymentEvent) (uint, error) {
	if event.BookingID != 0 {
		return event.BookingID, nil
	}
	bookingNo := strings.TrimSpace(event.BookingNo)
	if bookingNo == "" {
		return 0, ErrBookingNotFound
	}
	bookings, _, err := s.bookingRepo.WithContext(ctx).List(repository.BookingListFilter{BookingNo: bookingNo, Page: 1, PageSize: 1})
	if err != nil {
		return 0, upstream(ErrBookingFetchFailed, err)
	}
	if len(bookings) == 0 {
		return 0, ErrBookingNotFound
	}
	return bookings[0].ID, nil
}
