package router

import (
	"strings"

	"github.com/slotmail/internal/cache"
	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/constants"
	adminhandlers "github.com/slotmail/internal/http/handlers/admin"
	publichandlers "github.com/slotmail/internal/http/handlers/public"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/metrics"
	"github.com/slotmail/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	bookingRule := RateLimitRule{
		Name:          "booking_create",
		Prefix:        cache.Key("rate", "booking_create"),
		WindowSeconds: cfg.Security.BookingRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.BookingRateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// 本地存储时直接暴露上传文件
	if strings.EqualFold(strings.TrimSpace(cfg.Storage.Driver), constants.StorageDriverLocal) || strings.TrimSpace(cfg.Storage.Driver) == "" {
		r.Static(cfg.Storage.Local.URLPrefix, cfg.Storage.Local.Root)
	}

	apiV1 := r.Group("/api/v1")
	{
		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/campaigns", publicHandler.ListCampaigns)
			public.GET("/campaigns/:id", publicHandler.GetCampaign)
			public.GET("/campaigns/:id/slots", publicHandler.GetSlotGrid)
		}

		// 支付网关回调（签名校验）
		apiV1.POST("/payments/webhook", publicHandler.PaymentWebhook)

		// 用户接口
		user := apiV1.Group("", UserAuthMiddleware(c.TokenService))
		{
			user.POST("/bookings/quote", publicHandler.QuoteBooking)
			user.POST("/bookings", RateLimitMiddleware(cache.Client(), bookingRule, KeyByUser), publicHandler.CreateBooking)
			user.GET("/bookings", publicHandler.ListMyBookings)
			user.GET("/bookings/:id", publicHandler.GetMyBooking)
			user.POST("/bookings/:id/cancel", publicHandler.CancelMyBooking)
			user.POST("/bookings/:id/pay", publicHandler.InitiatePayment)
			user.POST("/bookings/:id/files", publicHandler.UploadBookingFile)
		}

		// 管理端接口
		admin := apiV1.Group("/admin", UserAuthMiddleware(c.TokenService), AdminOnlyMiddleware())
		{
			admin.GET("/campaigns", adminHandler.ListCampaigns)
			admin.POST("/campaigns", adminHandler.CreateCampaign)
			admin.GET("/campaigns/:id", adminHandler.GetCampaign)
			admin.PUT("/campaigns/:id", adminHandler.UpdateCampaign)
			admin.PUT("/campaigns/:id/status", adminHandler.AdvanceCampaignStatus)
			admin.PUT("/campaigns/:id/routes", adminHandler.SetCampaignRoutes)
			admin.PUT("/campaigns/:id/industries", adminHandler.SetCampaignIndustries)
			admin.GET("/campaigns/:id/slots", adminHandler.GetCampaignSlotGrid)

			admin.GET("/routes", adminHandler.ListRoutes)
			admin.POST("/routes", adminHandler.CreateRoute)
			admin.GET("/industries", adminHandler.ListIndustries)
			admin.POST("/industries", adminHandler.CreateIndustry)

			admin.GET("/pricing-rules", adminHandler.ListPricingRules)
			admin.POST("/pricing-rules", adminHandler.CreatePricingRule)
			admin.GET("/pricing-rules/:id", adminHandler.GetPricingRule)
			admin.PUT("/pricing-rules/:id", adminHandler.UpdatePricingRule)
			admin.PUT("/pricing-rules/:id/active", adminHandler.SetPricingRuleActive)
			admin.GET("/quote", adminHandler.QuoteForUser)

			admin.GET("/bookings", adminHandler.ListBookings)
			admin.GET("/bookings/:id", adminHandler.GetBooking)
			admin.DELETE("/bookings/:id", adminHandler.DeleteBooking)
			admin.POST("/bookings/:id/approve", adminHandler.ApproveBooking)
			admin.POST("/bookings/:id/reject", adminHandler.RejectBooking)
			admin.POST("/bookings/:id/artwork/approve", adminHandler.ApproveArtwork)
			admin.POST("/bookings/:id/artwork/reject", adminHandler.RejectArtwork)
			admin.PUT("/bookings/:id/price-override", adminHandler.SetPriceOverride)
			admin.POST("/bookings/:id/cancel", adminHandler.CancelBooking)
			admin.POST("/bookings/:id/mark-paid", adminHandler.MarkBookingPaid)
			admin.POST("/bookings/:id/mark-refunded", adminHandler.MarkBookingRefunded)

			admin.GET("/notifications", adminHandler.ListNotifications)
			admin.POST("/notifications/dismiss", adminHandler.DismissNotification)
			admin.POST("/reaper/run", adminHandler.RunReaper)
		}
	}

	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		status := gin.H{"status": "ok", "redis": cache.Enabled()}
		if err := cache.Ping(ctx.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["redis_error"] = err.Error()
		}
		ctx.JSON(200, status)
	})

	return r
}
