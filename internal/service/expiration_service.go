package service

import (
	"context"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/metrics"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

// ExpirationOptions 超时回收参数
type ExpirationOptions struct {
	PendingTimeout time.Duration
	IOTimeout      time.Duration
	BatchSize      int
}

// ReapSummary 单次回收汇总
type ReapSummary struct {
	Scanned      int `json:"scanned"`
	Reaped       int `json:"reaped"`
	Skipped      int `json:"skipped"`
	Failed       int `json:"failed"`
	FilesDeleted int `json:"files_deleted"`
}

// ReapOutcome 单笔回收结果
type ReapOutcome struct {
	Reaped       bool
	FilesDeleted int
}

// ExpirationService 回收超时未支付的预订
type ExpirationService struct {
	bookingRepo    repository.BookingRepository
	bookingService *BookingService
	options        ExpirationOptions
	clock          Clock
}

// NewExpirationService 创建回收服务
func NewExpirationService(bookingRepo repository.BookingRepository, bookingService *BookingService, options ExpirationOptions, clock Clock) *ExpirationService {
	if options.PendingTimeout <= 0 {
		options.PendingTimeout = 15 * time.Minute
	}
	if options.IOTimeout <= 0 {
		options.IOTimeout = 10 * time.Second
	}
	if options.BatchSize <= 0 {
		options.BatchSize = 200
	}
	return &ExpirationService{
		bookingRepo:    bookingRepo,
		bookingService: bookingService,
		options:        options,
		clock:          clock,
	}
}

// ReapStale 扫描并回收所有超时预订；单笔失败只记录日志
func (s *ExpirationService) ReapStale(ctx context.Context) (ReapSummary, error) {
	started := time.Now()
	var summary ReapSummary
	defer func() {
		metrics.RecordReaperTick(summary.Reaped, summary.Failed, time.Since(started).Seconds())
	}()

	cutoff := s.clock.now().Add(-s.options.PendingTimeout)
	listCtx, cancel := context.WithTimeout(ctx, s.options.IOTimeout)
	stale, err := s.bookingRepo.WithContext(listCtx).ListStalePending(cutoff, s.options.BatchSize)
	cancel()
	if err != nil {
		return summary, upstream(ErrBookingFetchFailed, err)
	}
	summary.Scanned = len(stale)
	for _, booking := range stale {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		outcome, err := s.ReapBooking(ctx, booking.ID)
		if err != nil {
			summary.Failed++
			logger.Warnw("reaper_booking_failed", "booking_id", booking.ID, "error", err)
			continue
		}
		if outcome.Reaped {
			summary.Reaped++
			summary.FilesDeleted += outcome.FilesDeleted
		} else {
			summary.Skipped++
		}
	}
	if summary.Scanned > 0 {
		logger.Infow("reaper_tick_done",
			"scanned", summary.Scanned,
			"reaped", summary.Reaped,
			"skipped", summary.Skipped,
			"failed", summary.Failed,
			"files_deleted", summary.FilesDeleted,
		)
	}
	return summary, nil
}

// ReapBooking 回收单笔预订：重新读取确认仍超时待支付后取消，再次确认后删除文件
func (s *ExpirationService) ReapBooking(ctx context.Context, bookingID uint) (ReapOutcome, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.options.IOTimeout)
	defer cancel()

	booking, err := s.bookingRepo.WithContext(opCtx).GetByID(bookingID)
	if err != nil {
		return ReapOutcome{}, upstream(ErrBookingFetchFailed, err)
	}
	if !s.isStale(booking) {
		return ReapOutcome{}, nil
	}

	result, err := s.bookingService.Cancel(opCtx, bookingID, CancelOptions{
		Reason:                constants.CancelReasonExpired,
		Refund:                RefundDecision{Amount: models.NewMoneyFromCents(0), Status: constants.RefundStatusNoRefund},
		RequirePaymentPending: true,
	})
	if err != nil {
		if IsStateChanged(err) {
			return ReapOutcome{}, nil
		}
		return ReapOutcome{}, err
	}
	if !result.CancelledNow {
		return ReapOutcome{}, nil
	}

	deleted, err := s.bookingService.CleanupFiles(opCtx, bookingID, result.ReleasedPaths, true)
	if err != nil {
		logger.Warnw("reaper_files_cleanup_failed", "booking_id", bookingID, "error", err)
	}
	logger.Infow("reaper_booking_expired", "booking_id", bookingID, "files_deleted", deleted)
	return ReapOutcome{Reaped: true, FilesDeleted: deleted}, nil
}

func (s *ExpirationService) isStale(booking *models.Booking) bool {
	if booking == nil || booking.IsCancelled() {
		return false
	}
	if booking.PaymentStatus != constants.PaymentStatusPending || booking.PendingSince == nil {
		return false
	}
	return booking.PendingSince.Before(s.clock.now().Add(-s.options.PendingTimeout))
}
