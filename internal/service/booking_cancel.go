package service

import (
	"context"
	"errors"
	"strings"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/metrics"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/queue"
	"github.com/slotmail/internal/repository"

	"gorm.io/gorm"
)

// CancelOptions 取消参数
type CancelOptions struct {
	Reason string
	// Refund 固定退款；RefundFunc 非空时以锁定行重新计算
	Refund     RefundDecision
	RefundFunc func(booking *models.Booking, campaign *models.Campaign) RefundDecision
	// LockedFrom 投放期达到该状态后拒绝取消
	LockedFrom string
	// RequirePaymentPending 仅在仍待支付时取消（超时回收使用）
	RequirePaymentPending bool
}

// CancelResult 取消结果；CancelledNow 为 false 表示本次调用未产生任何副作用
type CancelResult struct {
	Booking       *models.Booking
	CancelledNow  bool
	ReleasedPaths []string
}

// Cancel 幂等取消：置为取消、记录退款、清空文件路径、扣减投放期计数并归还忠诚度折扣
func (s *BookingService) Cancel(ctx context.Context, bookingID uint, opts CancelOptions) (*CancelResult, error) {
	result := &CancelResult{}
	err := models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bookingRepo := s.bookingRepo.WithTx(tx)
		booking, err := bookingRepo.GetByIDForUpdate(bookingID)
		if err != nil {
			return upstream(ErrBookingFetchFailed, err)
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.IsCancelled() {
			result.Booking = booking
			return nil
		}
		if opts.RequirePaymentPending && booking.PaymentStatus != constants.PaymentStatusPending {
			result.Booking = booking
			return nil
		}

		var campaign *models.Campaign
		if opts.RefundFunc != nil || opts.LockedFrom != "" {
			campaign, err = s.campaignRepo.WithTx(tx).GetByID(booking.CampaignID)
			if err != nil {
				return upstream(ErrUpstreamFailure, err)
			}
			if campaign == nil {
				return ErrCampaignNotFound
			}
		}
		if opts.LockedFrom != "" && campaignStatusRank(campaign.Status) >= campaignStatusRank(opts.LockedFrom) {
			return ErrBookingCampaignLocked
		}

		refund := opts.Refund
		if opts.RefundFunc != nil {
			refund = opts.RefundFunc(booking, campaign)
		}
		if refund.Status == "" {
			refund = RefundDecision{Amount: models.NewMoneyFromCents(0), Status: constants.RefundStatusNoRefund}
		}
		now := s.clock.now()
		ok, err := bookingRepo.UpdateGuarded(booking.ID, repository.BookingGuard{
			NotCancelled:    true,
			PaymentStatuses: []string{booking.PaymentStatus},
		}, map[string]interface{}{
			"status":        constants.BookingStatusCancelled,
			"cancelled_at":  now,
			"cancel_reason": opts.Reason,
			"refund_amount": refund.Amount,
			"refund_status": refund.Status,
			"pending_since": nil,
			"artwork_path":  nil,
			"logo_path":     nil,
			"image_path":    nil,
			"updated_at":    now,
		})
		if err != nil {
			return upstream(ErrBookingUpdateFailed, err)
		}
		if !ok {
			return ErrBookingStateChanged
		}

		if booking.IsPaid() {
			if err := s.campaignRepo.WithTx(tx).DecrementBooked(booking.CampaignID, booking.Quantity, booking.EffectiveAmount()); err != nil {
				return upstream(ErrBookingUpdateFailed, err)
			}
		} else if booking.LoyaltyDiscountApplied {
			if err := s.userRepo.WithTx(tx).ReleaseLoyaltyDiscount(booking.UserID); err != nil {
				return upstream(ErrBookingUpdateFailed, err)
			}
		}

		result.CancelledNow = true
		result.ReleasedPaths = booking.FilePaths()
		reloaded, err := bookingRepo.GetByID(booking.ID)
		if err != nil {
			return upstream(ErrBookingFetchFailed, err)
		}
		result.Booking = reloaded
		return nil
	})
	if err != nil {
		if !isDomainError(err) {
			return nil, upstream(ErrBookingUpdateFailed, err)
		}
		return nil, err
	}
	if result.CancelledNow {
		metrics.RecordBookingCancelled(opts.Reason)
		logger.Infow("booking_cancelled",
			"booking_id", bookingID,
			"reason", opts.Reason,
			"refund_amount", result.Booking.RefundAmount.String(),
			"refund_status", result.Booking.RefundStatus,
			"released_files", len(result.ReleasedPaths),
		)
	}
	return result, nil
}

// CancelBooking 客户取消自己的预订
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return booking, nil
	}
	result, err := s.Cancel(ctx, booking.ID, CancelOptions{
		Reason:     constants.CancelReasonCustomer,
		RefundFunc: s.policyRefund,
		LockedFrom: constants.CampaignStatusPrinting,
	})
	if err != nil {
		return nil, err
	}
	s.dispatchFileCleanup(ctx, result)
	return result.Booking, nil
}

// AdminCancelInput 管理端取消参数；RefundAmount 为空时按规则计算
type AdminCancelInput struct {
	BookingID    uint
	RefundAmount *models.Money
}

// AdminCancelBooking 管理端取消预订
func (s *BookingService) AdminCancelBooking(ctx context.Context, input AdminCancelInput) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return booking, nil
	}
	opts := CancelOptions{
		Reason:     constants.CancelReasonAdmin,
		RefundFunc: s.policyRefund,
		LockedFrom: constants.CampaignStatusMailed,
	}
	if input.RefundAmount != nil {
		if input.RefundAmount.IsNegative() {
			return nil, ErrInvalidArgument
		}
		opts.RefundFunc = nil
		opts.Refund = RefundDecision{Amount: *input.RefundAmount, Status: constants.RefundStatusPending}
		if input.RefundAmount.IsZero() {
			opts.Refund.Status = constants.RefundStatusNoRefund
		}
	}
	result, err := s.Cancel(ctx, booking.ID, opts)
	if err != nil {
		return nil, err
	}
	s.dispatchFileCleanup(ctx, result)
	return result.Booking, nil
}

// policyRefund 按退款规则计算锁定行的退款
func (s *BookingService) policyRefund(booking *models.Booking, campaign *models.Campaign) RefundDecision {
	return ComputeRefund(booking, campaign, s.clock.now(), s.options.Refund)
}

// DeleteBooking 删除已取消的预订（软删除）
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uint) error {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if !booking.IsCancelled() {
		return ErrBookingNotCancelled
	}
	if err := s.bookingRepo.WithContext(ctx).Delete(booking.ID); err != nil {
		return upstream(ErrBookingUpdateFailed, err)
	}
	logger.Infow("booking_deleted", "booking_id", booking.ID)
	return nil
}

// dispatchFileCleanup 队列可用时异步清理，否则同步尽力删除
func (s *BookingService) dispatchFileCleanup(ctx context.Context, result *CancelResult) {
	if result == nil || !result.CancelledNow || len(result.ReleasedPaths) == 0 {
		return
	}
	bookingID := result.Booking.ID
	if s.queueClient != nil && s.queueClient.Enabled() {
		err := s.queueClient.EnqueueBookingFilesCleanup(queue.BookingFilesCleanupPayload{
			BookingID: bookingID,
			Paths:     result.ReleasedPaths,
		})
		if err == nil {
			return
		}
		logger.Warnw("booking_enqueue_files_cleanup_failed", "booking_id", bookingID, "error", err)
	}
	if _, err := s.CleanupFiles(ctx, bookingID, result.ReleasedPaths, false); err != nil {
		logger.Warnw("booking_files_cleanup_failed", "booking_id", bookingID, "error", err)
	}
}

// CleanupFiles 仅当预订仍为已取消且路径已清空时删除文件；requireUnpaid 额外要求未支付
func (s *BookingService) CleanupFiles(ctx context.Context, bookingID uint, paths []string, requireUnpaid bool) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	booking, err := s.bookingRepo.WithContext(ctx).GetByID(bookingID)
	if err != nil {
		return 0, upstream(ErrBookingFetchFailed, err)
	}
	if booking != nil {
		if !booking.IsCancelled() || booking.HasFiles() || (requireUnpaid && booking.IsPaid()) {
			logger.Warnw("booking_files_cleanup_skipped",
				"booking_id", bookingID,
				"status", booking.Status,
				"payment_status", booking.PaymentStatus,
			)
			return 0, nil
		}
	}
	return s.deleteStoredFiles(ctx, bookingID, paths), nil
}

// deleteStoredFiles 逐个删除文件，失败只记录日志
func (s *BookingService) deleteStoredFiles(ctx context.Context, bookingID uint, paths []string) int {
	if s.store == nil {
		return 0
	}
	deleted := 0
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		if err := s.store.Delete(ctx, path); err != nil {
			logger.Warnw("booking_file_delete_failed", "booking_id", bookingID, "path", path, "error", err)
			continue
		}
		deleted++
	}
	return deleted
}

// IsStateChanged 判断错误是否为并发修改导致
func IsStateChanged(err error) bool {
	return errors.Is(err, ErrBookingStateChanged)
}
