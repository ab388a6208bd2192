package provider

import (
	"context"
	"time"

	"github.com/slotmail/internal/cache"
	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/queue"
	"github.com/slotmail/internal/repository"
	"github.com/slotmail/internal/service"
	"github.com/slotmail/internal/storage"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	Store       storage.BlobStore
	Clock       service.Clock

	// Repositories
	UserRepo         repository.UserRepository
	CampaignRepo     repository.CampaignRepository
	RouteRepo        repository.RouteRepository
	IndustryRepo     repository.IndustryRepository
	BookingRepo      repository.BookingRepository
	PricingRuleRepo  repository.PricingRuleRepository
	NotificationRepo repository.NotificationDismissalRepository

	// Services
	TokenService        *service.TokenService
	PricingService      *service.PricingService
	BookingService      *service.BookingService
	ExpirationService   *service.ExpirationService
	CampaignService     *service.CampaignService
	DimensionService    *service.DimensionService
	PricingRuleService  *service.PricingRuleService
	NotificationService *service.NotificationService
	UploadService       *service.UploadService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	store, err := storage.New(context.Background(), cfg.Storage)
	if err != nil {
		return nil, err
	}

	return Wire(cfg, store, queueClient, time.Now), nil
}

// Wire 基于 models.DB 组装仓库与服务；外部资源由调用方提供
func Wire(cfg *config.Config, store storage.BlobStore, queueClient *queue.Client, clock service.Clock) *Container {
	if clock == nil {
		clock = time.Now
	}
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		Store:       store,
		Clock:       clock,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.RouteRepo = repository.NewRouteRepository(db)
	c.IndustryRepo = repository.NewIndustryRepository(db)
	c.BookingRepo = repository.NewBookingRepository(db)
	c.PricingRuleRepo = repository.NewPricingRuleRepository(db)
	c.NotificationRepo = repository.NewNotificationDismissalRepository(db)
}

func (c *Container) initServices() {
	booking := c.Config.Booking
	c.TokenService = service.NewTokenService(c.Config.UserJWT, c.UserRepo, c.Clock)
	c.PricingService = service.NewPricingService(c.CampaignRepo, c.UserRepo, c.PricingRuleRepo, service.PricingDefaults{
		FirstSlot:       models.NewMoneyFromCents(booking.FirstSlotPriceCents),
		AdditionalSlot:  models.NewMoneyFromCents(booking.AdditionalSlotPriceCents),
		LoyaltyDiscount: models.NewMoneyFromCents(booking.LoyaltyDiscountCents),
	}, c.Clock)
	c.BookingService = service.NewBookingService(c.BookingRepo, c.CampaignRepo, c.UserRepo, c.PricingService, c.QueueClient, c.Store, service.BookingOptions{
		PendingTimeout: booking.PendingTimeout(),
		Refund: service.RefundPolicy{
			CutoffDays:    booking.RefundCutoffDays,
			ProcessingFee: models.NewMoneyFromCents(booking.RefundProcessingFeeCents),
		},
		LoyaltyThreshold: booking.LoyaltyThresholdSlots,
		Currency:         booking.Currency,
	}, c.Clock)
	c.ExpirationService = service.NewExpirationService(c.BookingRepo, c.BookingService, service.ExpirationOptions{
		PendingTimeout: booking.PendingTimeout(),
		IOTimeout:      booking.ReaperIOTimeout(),
		BatchSize:      booking.ReaperBatchSize,
	}, c.Clock)
	c.CampaignService = service.NewCampaignService(c.CampaignRepo, c.RouteRepo, c.IndustryRepo, c.BookingRepo)
	c.DimensionService = service.NewDimensionService(c.RouteRepo, c.IndustryRepo)
	c.PricingRuleService = service.NewPricingRuleService(c.PricingRuleRepo, c.CampaignRepo, c.UserRepo)
	c.NotificationService = service.NewNotificationService(c.BookingRepo, c.NotificationRepo, service.NotificationOptions{
		Window: time.Duration(booking.NotificationWindowDays) * 24 * time.Hour,
	}, c.Clock)
	c.UploadService = service.NewUploadService(c.Config.Upload, c.Store, c.BookingService)
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
