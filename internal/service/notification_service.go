package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

// NotificationItem 需要管理员处理的条目，由预订状态实时推导
type NotificationItem struct {
	Kind       string    `json:"kind"`
	BookingID  uint      `json:"booking_id"`
	BookingNo  string    `json:"booking_no"`
	CampaignID uint      `json:"campaign_id"`
	UserID     uint      `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Detail     string    `json:"detail,omitempty"`
}

// NotificationOptions 推导窗口与单类上限
type NotificationOptions struct {
	Window       time.Duration
	LimitPerKind int
}

// NotificationService 管理端通知推导
type NotificationService struct {
	bookingRepo   repository.BookingRepository
	dismissalRepo repository.NotificationDismissalRepository
	options       NotificationOptions
	clock         Clock
}

// NewNotificationService 创建通知推导服务
func NewNotificationService(bookingRepo repository.BookingRepository, dismissalRepo repository.NotificationDismissalRepository, options NotificationOptions, clock Clock) *NotificationService {
	if options.Window <= 0 {
		options.Window = 30 * 24 * time.Hour
	}
	if options.LimitPerKind <= 0 {
		options.LimitPerKind = 100
	}
	return &NotificationService{
		bookingRepo:   bookingRepo,
		dismissalRepo: dismissalRepo,
		options:       options,
		clock:         clock,
	}
}

type notificationSource struct {
	kind     string
	filter   func(from time.Time) repository.BookingListFilter
	occurred func(b *models.Booking) time.Time
	detail   func(b *models.Booking) string
}

var notificationSources = []notificationSource{
	{
		kind: constants.NotificationBookingAwaitingApproval,
		filter: func(from time.Time) repository.BookingListFilter {
			return repository.BookingListFilter{
				Status:         constants.BookingStatusConfirmed,
				PaymentStatus:  constants.PaymentStatusPaid,
				ApprovalStatus: constants.ApprovalStatusPending,
				UpdatedFrom:    &from,
			}
		},
		occurred: func(b *models.Booking) time.Time { return timeOr(b.PaidAt, b.UpdatedAt) },
	},
	{
		kind: constants.NotificationArtworkAwaitingReview,
		filter: func(from time.Time) repository.BookingListFilter {
			return repository.BookingListFilter{
				Status:        constants.BookingStatusConfirmed,
				ArtworkStatus: constants.ArtworkStatusUnderReview,
				UpdatedFrom:   &from,
			}
		},
		occurred: func(b *models.Booking) time.Time { return b.UpdatedAt },
	},
	{
		kind: constants.NotificationRefundPending,
		filter: func(from time.Time) repository.BookingListFilter {
			return repository.BookingListFilter{
				Status:        constants.BookingStatusCancelled,
				RefundStatus:  constants.RefundStatusPending,
				CancelledFrom: &from,
			}
		},
		occurred: func(b *models.Booking) time.Time { return timeOr(b.CancelledAt, b.UpdatedAt) },
		detail:   func(b *models.Booking) string { return b.RefundAmount.String() },
	},
	{
		kind: constants.NotificationPaymentFailed,
		filter: func(from time.Time) repository.BookingListFilter {
			return repository.BookingListFilter{
				Status:        constants.BookingStatusConfirmed,
				PaymentStatus: constants.PaymentStatusFailed,
				UpdatedFrom:   &from,
			}
		},
		occurred: func(b *models.Booking) time.Time { return b.UpdatedAt },
	},
	{
		kind: constants.NotificationBookingExpired,
		filter: func(from time.Time) repository.BookingListFilter {
			return repository.BookingListFilter{
				Status:        constants.BookingStatusCancelled,
				CancelReason:  constants.CancelReasonExpired,
				CancelledFrom: &from,
			}
		},
		occurred: func(b *models.Booking) time.Time { return timeOr(b.CancelledAt, b.UpdatedAt) },
	},
}

// List 推导窗口内的待处理条目，排除已忽略的 (kind, booking)
func (s *NotificationService) List(ctx context.Context) ([]NotificationItem, error) {
	from := s.clock.now().Add(-s.options.Window)
	repo := s.bookingRepo.WithContext(ctx)
	items := make([]NotificationItem, 0)
	bookingIDs := make([]uint, 0)
	for _, source := range notificationSources {
		filter := source.filter(from)
		filter.Page = 1
		filter.PageSize = s.options.LimitPerKind
		bookings, _, err := repo.List(filter)
		if err != nil {
			return nil, upstream(ErrBookingFetchFailed, err)
		}
		for i := range bookings {
			booking := &bookings[i]
			item := NotificationItem{
				Kind:       source.kind,
				BookingID:  booking.ID,
				BookingNo:  booking.BookingNo,
				CampaignID: booking.CampaignID,
				UserID:     booking.UserID,
				OccurredAt: source.occurred(booking),
			}
			if source.detail != nil {
				item.Detail = source.detail(booking)
			}
			items = append(items, item)
			bookingIDs = append(bookingIDs, booking.ID)
		}
	}
	dismissed, err := s.dismissalRepo.WithContext(ctx).ListKeys(uniqueIDs(bookingIDs))
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	visible := items[:0]
	for _, item := range items {
		if _, ok := dismissed[repository.DismissalKey(item.Kind, item.BookingID)]; ok {
			continue
		}
		visible = append(visible, item)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if !visible[i].OccurredAt.Equal(visible[j].OccurredAt) {
			return visible[i].OccurredAt.After(visible[j].OccurredAt)
		}
		if visible[i].BookingID != visible[j].BookingID {
			return visible[i].BookingID > visible[j].BookingID
		}
		return visible[i].Kind < visible[j].Kind
	})
	return visible, nil
}

// Dismiss 忽略某条通知，重复忽略视为成功
func (s *NotificationService) Dismiss(ctx context.Context, kind string, bookingID, adminID uint) error {
	kind = strings.TrimSpace(kind)
	if !isNotificationKind(kind) {
		return ErrNotificationKindInvalid
	}
	if bookingID == 0 {
		return ErrBookingNotFound
	}
	err := s.dismissalRepo.WithContext(ctx).Create(&models.NotificationDismissal{
		Kind:        kind,
		BookingID:   bookingID,
		DismissedBy: adminID,
	})
	if err != nil {
		return upstream(ErrUpstreamFailure, err)
	}
	logger.Infow("notification_dismissed", "kind", kind, "booking_id", bookingID, "admin_id", adminID)
	return nil
}

func isNotificationKind(kind string) bool {
	for _, source := range notificationSources {
		if source.kind == kind {
			return true
		}
	}
	return false
}

func timeOr(value *time.Time, fallback time.Time) time.Time {
	if value != nil && !value.IsZero() {
		return *value
	}
	return fallback
}
