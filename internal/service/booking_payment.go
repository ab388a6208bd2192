package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/metrics"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/queue"
	"github.com/slotmail/internal/repository"

	"gorm.io/gorm"
)

// PaymentIntent 发起支付时返回给网关的信息
type PaymentIntent struct {
	BookingID uint         `json:"booking_id"`
	BookingNo string       `json:"booking_no"`
	Amount    models.Money `json:"amount"`
	Currency  string       `json:"currency"`
}

// PaymentConfirmation 网关支付成功回调
type PaymentConfirmation struct {
	BookingID uint
	Amount    models.Money
	Reference string
}

// InitiatePayment 返回应付金额（改价优先），失败的支付回到待支付并重新计时
func (s *BookingService) InitiatePayment(ctx context.Context, bookingID, userID uint) (*PaymentIntent, error) {
	booking, err := s.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}
	switch booking.PaymentStatus {
	case constants.PaymentStatusPaid:
		return nil, ErrPaymentStatusInvalid
	case constants.PaymentStatusFailed:
		now := s.clock.now()
		ok, err := s.bookingRepo.WithContext(ctx).UpdateGuarded(booking.ID, repository.BookingGuard{
			NotCancelled:    true,
			PaymentStatuses: []string{constants.PaymentStatusFailed},
		}, map[string]interface{}{
			"payment_status": constants.PaymentStatusPending,
			"pending_since":  now,
			"updated_at":     now,
		})
		if err != nil {
			return nil, upstream(ErrBookingUpdateFailed, err)
		}
		if !ok {
			return nil, ErrBookingStateChanged
		}
		if s.queueClient != nil {
			if err := s.queueClient.EnqueueBookingExpireCheck(queue.BookingExpireCheckPayload{BookingID: booking.ID}, s.options.PendingTimeout); err != nil {
				logger.Warnw("booking_enqueue_expire_check_failed", "booking_id", booking.ID, "error", err)
			}
		}
	}
	return &PaymentIntent{
		BookingID: booking.ID,
		BookingNo: booking.BookingNo,
		Amount:    booking.EffectiveAmount(),
		Currency:  s.options.Currency,
	}, nil
}

// MarkPaid 支付成功：校验金额与槽位唯一性，计入投放期收入并累计忠诚度
func (s *BookingService) MarkPaid(ctx context.Context, input PaymentConfirmation) (*models.Booking, error) {
	var paid *models.Booking
	alreadyPaid := false
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		booking, err := bookingRepo.GetByIDForUpdate(input.BookingID)
		if err != nil {
			return upstream(ErrBookingFetchFailed, err)
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.IsCancelled() {
			return ErrBookingCancelled
		}
		if booking.IsPaid() {
			paid = booking
			alreadyPaid = true
			return nil
		}
		if !canTransitionPayment(booking.PaymentStatus, constants.PaymentStatusPaid) {
			return ErrPaymentStatusInvalid
		}
		effective := booking.EffectiveAmount()
		if !input.Amount.Decimal.Equal(effective.Decimal) {
			return ErrPaymentAmountMismatch
		}
		if booking.SlotExclusive {
			occupied, err := bookingRepo.FindActivePaidInCell(booking.CampaignID, booking.RouteID, booking.IndustryID, booking.ID)
			if err != nil {
				return upstream(ErrBookingFetchFailed, err)
			}
			if occupied != nil {
				return ErrSlotTaken
			}
		}

		now := s.clock.now()
		ok, err := bookingRepo.UpdateGuarded(booking.ID, repository.BookingGuard{
			NotCancelled:    true,
			PaymentStatuses: []string{booking.PaymentStatus},
		}, map[string]interface{}{
			"payment_status": constants.PaymentStatusPaid,
			"paid_at":        now,
			"pending_since":  nil,
			"payment_ref":    strings.TrimSpace(input.Reference),
			"updated_at":     now,
		})
		if err != nil {
			if repository.IsUniqueViolation(err) {
				return ErrSlotTaken
			}
			return upstream(ErrBookingUpdateFailed, err)
		}
		if !ok {
			return ErrBookingStateChanged
		}
		if err := s.campaignRepo.WithTx(tx).IncrementBooked(booking.CampaignID, booking.Quantity, effective); err != nil {
			return upstream(ErrBookingUpdateFailed, err)
		}
		if booking.PriceSource == constants.PriceSourceDefault && booking.PriceOverride == nil {
			if err := s.creditLoyalty(tx, booking.UserID, booking.Quantity, now); err != nil {
				return upstream(ErrBookingUpdateFailed, err)
			}
		}
		paid, err = bookingRepo.GetByID(booking.ID)
		if err != nil {
			return upstream(ErrBookingFetchFailed, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			metrics.RecordSlotConflict("payment")
			logger.Warnw("booking_payment_slot_taken", "booking_id", input.BookingID, "reference", input.Reference)
		}
		if !isDomainError(err) {
			return nil, upstream(ErrBookingUpdateFailed, err)
		}
		return nil, err
	}
	if !alreadyPaid {
		metrics.BookingsPaid.Inc()
		logger.Infow("booking_paid", "booking_id", paid.ID, "amount", input.Amount.String(), "reference", input.Reference)
	}
	return paid, nil
}

// creditLoyalty 累计本年度槽位数，每满阈值发放一次折扣；跨年清零
func (s *BookingService) creditLoyalty(tx *gorm.DB, userID uint, quantity int, now time.Time) error {
	threshold := s.options.LoyaltyThreshold
	if threshold <= 0 {
		return nil
	}
	userRepo := s.userRepo.WithTx(tx)
	user, err := userRepo.GetByIDForUpdate(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}
	earned, available := nextLoyalty(user, quantity, threshold, now.Year())
	return userRepo.UpdateLoyalty(user.ID, earned, available, now.Year())
}

func nextLoyalty(user *models.User, quantity, threshold, year int) (int, int) {
	earned := user.LoyaltySlotsEarned
	available := user.LoyaltyDiscountsAvailable
	if user.LoyaltyResetYear != year {
		earned = 0
		available = 0
	}
	previous := earned
	earned += quantity
	available += earned/threshold - previous/threshold
	return earned, available
}

// MarkPaymentFailed 支付失败；预订保留，可重新发起支付
func (s *BookingService) MarkPaymentFailed(ctx context.Context, bookingID uint, reference string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}
	if booking.PaymentStatus == constants.PaymentStatusFailed {
		return booking, nil
	}
	if !canTransitionPayment(booking.PaymentStatus, constants.PaymentStatusFailed) {
		return nil, ErrPaymentStatusInvalid
	}
	now := s.clock.now()
	ok, err := s.bookingRepo.WithContext(ctx).UpdateGuarded(booking.ID, repository.BookingGuard{
		NotCancelled:    true,
		PaymentStatuses: []string{booking.PaymentStatus},
	}, map[string]interface{}{
		"payment_status": constants.PaymentStatusFailed,
		"pending_since":  nil,
		"payment_ref":    strings.TrimSpace(reference),
		"updated_at":     now,
	})
	if err != nil {
		return nil, upstream(ErrBookingUpdateFailed, err)
	}
	if !ok {
		return nil, ErrBookingStateChanged
	}
	logger.Infow("booking_payment_failed", "booking_id", booking.ID, "reference", reference)
	return s.GetBooking(ctx, booking.ID)
}

// MarkRefunded 退款完成：仅已取消且退款待处理的预订
func (s *BookingService) MarkRefunded(ctx context.Context, bookingID uint, reference string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsCancelled() {
		return nil, ErrBookingNotCancelled
	}
	if booking.RefundStatus == constants.RefundStatusRefunded {
		return booking, nil
	}
	if booking.RefundStatus != constants.RefundStatusPending {
		return nil, ErrRefundStatusInvalid
	}
	now := s.clock.now()
	ok, err := s.bookingRepo.WithContext(ctx).UpdateGuarded(booking.ID, repository.BookingGuard{
		Cancelled:      true,
		RefundStatuses: []string{constants.RefundStatusPending},
	}, map[string]interface{}{
		"refund_status": constants.RefundStatusRefunded,
		"refund_ref":    strings.TrimSpace(reference),
		"refunded_at":   now,
		"updated_at":    now,
	})
	if err != nil {
		return nil, upstream(ErrBookingUpdateFailed, err)
	}
	if !ok {
		return nil, ErrBookingStateChanged
	}
	logger.Infow("booking_refunded", "booking_id", booking.ID, "amount", booking.RefundAmount.String(), "reference", reference)
	return s.GetBooking(ctx, booking.ID)
}
