package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/metrics"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/queue"
	"github.com/slotmail/internal/repository"
	"github.com/slotmail/internal/storage"

	"gorm.io/gorm"
)

// BookingOptions 预订生命周期参数
type BookingOptions struct {
	PendingTimeout   time.Duration
	Refund           RefundPolicy
	LoyaltyThreshold int
	Currency         string
}

// BookingService 预订服务
type BookingService struct {
	bookingRepo  repository.BookingRepository
	campaignRepo repository.CampaignRepository
	userRepo     repository.UserRepository
	pricing      *PricingService
	queueClient  *queue.Client
	store        storage.BlobStore
	options      BookingOptions
	clock        Clock
}

// NewBookingService 创建预订服务
func NewBookingService(bookingRepo repository.BookingRepository, campaignRepo repository.CampaignRepository, userRepo repository.UserRepository, pricing *PricingService, queueClient *queue.Client, store storage.BlobStore, options BookingOptions, clock Clock) *BookingService {
	if options.PendingTimeout <= 0 {
		options.PendingTimeout = 15 * time.Minute
	}
	return &BookingService{
		bookingRepo:  bookingRepo,
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		pricing:      pricing,
		queueClient:  queueClient,
		store:        store,
		options:      options,
		clock:        clock,
	}
}

// PendingTimeout 待支付超时时间
func (s *BookingService) PendingTimeout() time.Duration {
	return s.options.PendingTimeout
}

// CreateBookingInput 创建预订输入
type CreateBookingInput struct {
	UserID              uint
	CampaignID          uint
	RouteID             uint
	IndustryID          uint
	IndustrySubcategory string
	Quantity            int
}

// CreateBooking 创建待支付预订
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*models.Booking, *Quote, error) {
	if input.Quantity < minBookingQuantity || input.Quantity > maxBookingQuantity {
		return nil, nil, ErrQuantityInvalid
	}
	campaign, err := s.campaignRepo.WithContext(ctx).GetByID(input.CampaignID)
	if err != nil {
		return nil, nil, upstream(ErrUpstreamFailure, err)
	}
	if campaign == nil {
		return nil, nil, ErrCampaignNotFound
	}
	if campaign.Status != constants.CampaignStatusBookingOpen {
		return nil, nil, ErrCampaignNotOpen
	}
	if !campaign.HasRoute(input.RouteID) {
		return nil, nil, ErrRouteNotInCampaign
	}
	industry := campaign.FindIndustry(input.IndustryID)
	if industry == nil {
		return nil, nil, ErrIndustryNotInCampaign
	}
	user, err := s.userRepo.WithContext(ctx).GetByID(input.UserID)
	if err != nil {
		return nil, nil, upstream(ErrUpstreamFailure, err)
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	if user.Status == constants.UserStatusDisabled {
		return nil, nil, ErrUserDisabled
	}

	if !industry.Unlimited {
		occupied, err := s.bookingRepo.WithContext(ctx).FindActivePaidInCell(campaign.ID, input.RouteID, industry.ID, 0)
		if err != nil {
			return nil, nil, upstream(ErrBookingFetchFailed, err)
		}
		if occupied != nil {
			metrics.RecordSlotConflict("create")
			return nil, nil, ErrSlotTaken
		}
	}

	quote, err := s.pricing.quoteFor(ctx, campaign, user, input.Quantity)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.now()
	booking := &models.Booking{
		BookingNo:              generateBookingNo(now),
		UserID:                 user.ID,
		CampaignID:             campaign.ID,
		RouteID:                input.RouteID,
		IndustryID:             industry.ID,
		IndustrySubcategory:    strings.TrimSpace(input.IndustrySubcategory),
		SlotExclusive:          !industry.Unlimited,
		Quantity:               input.Quantity,
		Amount:                 quote.TotalPrice,
		PriceSource:            quote.PriceSource,
		Status:                 constants.BookingStatusConfirmed,
		PaymentStatus:          constants.PaymentStatusPending,
		ApprovalStatus:         constants.ApprovalStatusPending,
		ArtworkStatus:          constants.ArtworkStatusPendingUpload,
		PendingSince:           &now,
		RefundAmount:           models.NewMoneyFromCents(0),
		LoyaltyDiscountApplied: quote.PriceSource == constants.PriceSourceLoyaltyDiscount,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if booking.LoyaltyDiscountApplied {
			ok, err := s.userRepo.WithTx(tx).ReserveLoyaltyDiscount(user.ID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLoyaltyUnavailable
			}
		}
		if err := s.bookingRepo.WithTx(tx).Create(booking); err != nil {
			return err
		}
		return s.pricing.RecordApplication(tx, quote, booking.ID)
	})
	if err != nil {
		if isDomainError(err) {
			return nil, nil, err
		}
		return nil, nil, upstream(ErrBookingUpdateFailed, err)
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueBookingExpireCheck(queue.BookingExpireCheckPayload{BookingID: booking.ID}, s.options.PendingTimeout); err != nil {
			logger.Warnw("booking_enqueue_expire_check_failed", "booking_id", booking.ID, "error", err)
		}
	}
	metrics.RecordBookingCreated(booking.PriceSource)
	logger.Infow("booking_created",
		"booking_id", booking.ID,
		"booking_no", booking.BookingNo,
		"campaign_id", booking.CampaignID,
		"route_id", booking.RouteID,
		"industry_id", booking.IndustryID,
		"quantity", booking.Quantity,
		"amount", booking.Amount.String(),
		"price_source", booking.PriceSource,
	)
	return booking, quote, nil
}

// GetBooking 管理端获取预订
func (s *BookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, upstream(ErrBookingFetchFailed, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// GetUserBooking 获取用户自己的预订
func (s *BookingService) GetUserBooking(ctx context.Context, id, userID uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.WithContext(ctx).GetByIDAndUser(id, userID)
	if err != nil {
		return nil, upstream(ErrBookingFetchFailed, err)
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// ListBookings 分页查询预订
func (s *BookingService) ListBookings(ctx context.Context, filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	bookings, total, err := s.bookingRepo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, upstream(ErrBookingFetchFailed, err)
	}
	return bookings, total, nil
}

// isDomainError 判断是否为已分类的业务错误
func isDomainError(err error) bool {
	for _, category := range []error{ErrNotFound, ErrInvalidArgument, ErrSlotTaken, ErrInvalidState, ErrUpstreamFailure} {
		if errors.Is(err, category) {
			return true
		}
	}
	return false
}

func generateBookingNo(now time.Time) string {
	return fmt.Sprintf("BK%s%s", now.Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
