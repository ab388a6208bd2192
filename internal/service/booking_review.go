package service

import (
	"context"
	"strings"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

// ApproveBooking 审核通过；驳回后可再次通过并清空驳回信息
func (s *BookingService) ApproveBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canTransitionApproval(booking.ApprovalStatus, constants.ApprovalStatusApproved) {
		return nil, ErrApprovalStatusInvalid
	}
	now := s.clock.now()
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled:     true,
		ApprovalStatuses: []string{booking.ApprovalStatus},
	}, map[string]interface{}{
		"approval_status": constants.ApprovalStatusApproved,
		"approved_at":     now,
		"rejection_note":  "",
		"rejected_at":     nil,
		"updated_at":      now,
	}, "booking_approved")
}

// RejectBooking 审核驳回，必须填写说明
func (s *BookingService) RejectBooking(ctx context.Context, bookingID uint, note string) (*models.Booking, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, ErrRejectionNoteRequired
	}
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canTransitionApproval(booking.ApprovalStatus, constants.ApprovalStatusRejected) {
		return nil, ErrApprovalStatusInvalid
	}
	now := s.clock.now()
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled:     true,
		ApprovalStatuses: []string{booking.ApprovalStatus},
	}, map[string]interface{}{
		"approval_status": constants.ApprovalStatusRejected,
		"rejection_note":  note,
		"rejected_at":     now,
		"updated_at":      now,
	}, "booking_rejected")
}

// MarkArtworkUnderReview 设计稿进入审核
func (s *BookingService) MarkArtworkUnderReview(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.ArtworkStatus == constants.ArtworkStatusUnderReview {
		return booking, nil
	}
	if !canTransitionArtwork(booking.ArtworkStatus, constants.ArtworkStatusUnderReview) {
		return nil, ErrArtworkStatusInvalid
	}
	now := s.clock.now()
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled:    true,
		ArtworkStatuses: []string{booking.ArtworkStatus},
	}, map[string]interface{}{
		"artwork_status": constants.ArtworkStatusUnderReview,
		"updated_at":     now,
	}, "booking_artwork_under_review")
}

// ApproveArtwork 设计稿通过并清空驳回原因
func (s *BookingService) ApproveArtwork(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canTransitionArtwork(booking.ArtworkStatus, constants.ArtworkStatusApproved) {
		return nil, ErrArtworkStatusInvalid
	}
	now := s.clock.now()
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled:    true,
		ArtworkStatuses: []string{booking.ArtworkStatus},
	}, map[string]interface{}{
		"artwork_status":           constants.ArtworkStatusApproved,
		"artwork_rejection_reason": "",
		"artwork_reviewed_at":      now,
		"updated_at":               now,
	}, "booking_artwork_approved")
}

// RejectArtwork 设计稿驳回，必须填写原因
func (s *BookingService) RejectArtwork(ctx context.Context, bookingID uint, reason string) (*models.Booking, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrArtworkReasonRequired
	}
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canTransitionArtwork(booking.ArtworkStatus, constants.ArtworkStatusRejected) {
		return nil, ErrArtworkStatusInvalid
	}
	now := s.clock.now()
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled:    true,
		ArtworkStatuses: []string{booking.ArtworkStatus},
	}, map[string]interface{}{
		"artwork_status":           constants.ArtworkStatusRejected,
		"artwork_rejection_reason": reason,
		"artwork_reviewed_at":      now,
		"updated_at":               now,
	}, "booking_artwork_rejected")
}

// SetPriceOverride 管理员改价；amount 为空时清除改价。仅未支付预订可改
func (s *BookingService) SetPriceOverride(ctx context.Context, bookingID uint, amount *models.Money, note string) (*models.Booking, error) {
	if amount != nil && amount.IsNegative() {
		return nil, ErrPriceOverrideInvalid
	}
	booking, err := s.loadActiveBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsPaid() {
		return nil, ErrPaymentStatusInvalid
	}
	updates := map[string]interface{}{
		"price_override":      nil,
		"price_override_note": "",
		"updated_at":          s.clock.now(),
	}
	if amount != nil {
		updates["price_override"] = models.NewMoneyFromDecimal(amount.Decimal)
		updates["price_override_note"] = strings.TrimSpace(note)
	}
	return s.applyGuarded(ctx, booking.ID, repository.BookingGuard{
		NotCancelled: true,
		PaymentStatuses: []string{
			constants.PaymentStatusPending,
			constants.PaymentStatusFailed,
		},
	}, updates, "booking_price_override_set")
}

// AttachFile 写入上传的文件路径，返回被替换的旧路径；上传设计稿会进入审核
func (s *BookingService) AttachFile(ctx context.Context, bookingID, userID uint, kind, path string) (*models.Booking, string, error) {
	column, ok := bookingFileColumns[kind]
	if !ok {
		return nil, "", ErrBookingFileKindInvalid
	}
	booking, err := s.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, "", err
	}
	if booking.IsCancelled() {
		return nil, "", ErrBookingCancelled
	}
	previous := bookingFilePath(booking, kind)
	updates := map[string]interface{}{
		column:       path,
		"updated_at": s.clock.now(),
	}
	guard := repository.BookingGuard{NotCancelled: true}
	if kind == constants.BookingFileArtwork && booking.ArtworkStatus != constants.ArtworkStatusUnderReview {
		if !canTransitionArtwork(booking.ArtworkStatus, constants.ArtworkStatusUnderReview) {
			return nil, "", ErrArtworkStatusInvalid
		}
		updates["artwork_status"] = constants.ArtworkStatusUnderReview
		guard.ArtworkStatuses = []string{booking.ArtworkStatus}
	}
	updated, err := s.applyGuarded(ctx, booking.ID, guard, updates, "booking_file_attached")
	if err != nil {
		return nil, "", err
	}
	return updated, previous, nil
}

var bookingFileColumns = map[string]string{
	constants.BookingFileArtwork: "artwork_path",
	constants.BookingFileLogo:    "logo_path",
	constants.BookingFileImage:   "image_path",
}

func bookingFilePath(booking *models.Booking, kind string) string {
	var current *string
	switch kind {
	case constants.BookingFileArtwork:
		current = booking.ArtworkPath
	case constants.BookingFileLogo:
		current = booking.LogoPath
	case constants.BookingFileImage:
		current = booking.ImagePath
	}
	if current == nil {
		return ""
	}
	return *current
}

func (s *BookingService) loadActiveBooking(ctx context.Context, bookingID uint) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.IsCancelled() {
		return nil, ErrBookingCancelled
	}
	return booking, nil
}

// applyGuarded 条件更新后重新读取；未命中说明状态已被并发修改
func (s *BookingService) applyGuarded(ctx context.Context, bookingID uint, guard repository.BookingGuard, updates map[string]interface{}, event string) (*models.Booking, error) {
	ok, err := s.bookingRepo.WithContext(ctx).UpdateGuarded(bookingID, guard, updates)
	if err != nil {
		return nil, upstream(ErrBookingUpdateFailed, err)
	}
	if !ok {
		return nil, ErrBookingStateChanged
	}
	logger.Infow(event, "booking_id", bookingID)
	return s.GetBooking(ctx, bookingID)
}
