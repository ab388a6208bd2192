package main

import (
	"context"
	"time"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/provider"
	"github.com/slotmail/internal/service"
	"github.com/slotmail/internal/storage"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logOptions := cfg.Log.ToLoggerOptions()
	logOptions.Component = "seed"
	logger.Init(cfg.Server.Mode, logOptions)
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		stdLog.Fatalf("Failed to init storage: %v", err)
	}
	c := provider.Wire(cfg, store, nil, time.Now)

	// 路线
	routeSeeds := []service.RouteInput{
		{ZipCode: "94110", Name: "Mission North", Households: 5200},
		{ZipCode: "94114", Name: "Castro", Households: 4100},
		{ZipCode: "94117", Name: "Haight", Households: 3900},
	}
	var routeIDs []uint
	for _, seed := range routeSeeds {
		var existing models.Route
		if err := models.DB.Where("zip_code = ? AND name = ?", seed.ZipCode, seed.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Route already exists: %s %s", seed.ZipCode, seed.Name)
			routeIDs = append(routeIDs, existing.ID)
			continue
		}
		route, err := c.DimensionService.CreateRoute(ctx, seed)
		if err != nil {
			stdLog.Printf("Failed to create route %s: %v", seed.ZipCode, err)
			continue
		}
		stdLog.Printf("Created route: %s %s", route.ZipCode, route.Name)
		routeIDs = append(routeIDs, route.ID)
	}

	// 行业（“其他”不限量）
	industrySeeds := []service.IndustryInput{
		{Name: "Plumbing", SortOrder: 1},
		{Name: "Roofing", SortOrder: 2},
		{Name: "Dental", SortOrder: 3},
		{Name: "Real Estate", SortOrder: 4},
		{Name: "Other", Unlimited: true, SortOrder: 99},
	}
	var industryIDs []uint
	for _, seed := range industrySeeds {
		var existing models.Industry
		if err := models.DB.Where("name = ?", seed.Name).First(&existing).Error; err == nil {
			stdLog.Printf("Industry already exists: %s", seed.Name)
			industryIDs = append(industryIDs, existing.ID)
			continue
		}
		industry, err := c.DimensionService.CreateIndustry(ctx, seed)
		if err != nil {
			stdLog.Printf("Failed to create industry %s: %v", seed.Name, err)
			continue
		}
		stdLog.Printf("Created industry: %s", industry.Name)
		industryIDs = append(industryIDs, industry.ID)
	}

	// 投放期
	const campaignName = "Demo Mailer"
	var campaign models.Campaign
	if err := models.DB.Where("name = ?", campaignName).First(&campaign).Error; err == nil {
		stdLog.Printf("Campaign already exists: %s (%s)", campaign.Name, campaign.Status)
	} else {
		mailDate := time.Now().AddDate(0, 0, 45).Truncate(24 * time.Hour)
		created, err := c.CampaignService.CreateCampaign(ctx, service.CampaignInput{
			Name:          campaignName,
			MailDate:      mailDate,
			PrintDeadline: mailDate.AddDate(0, 0, -10),
			Notes:         "seeded for local development",
		})
		if err != nil {
			stdLog.Fatalf("Failed to create campaign: %v", err)
		}
		if _, err := c.CampaignService.SetRoutes(ctx, created.ID, routeIDs); err != nil {
			stdLog.Fatalf("Failed to set campaign routes: %v", err)
		}
		if _, err := c.CampaignService.SetIndustries(ctx, created.ID, industryIDs); err != nil {
			stdLog.Fatalf("Failed to set campaign industries: %v", err)
		}
		opened, err := c.CampaignService.AdvanceStatus(ctx, created.ID, constants.CampaignStatusBookingOpen)
		if err != nil {
			stdLog.Fatalf("Failed to open campaign: %v", err)
		}
		stdLog.Printf("Created campaign: %s with %d slots", opened.Name, opened.TotalSlots)
	}

	// 账号与开发令牌
	admin, err := models.EnsureAdminUser(models.DB, "admin@slotmail.local")
	if err != nil {
		stdLog.Fatalf("Failed to ensure admin: %v", err)
	}
	var customer models.User
	if err := models.DB.Where("email = ?", "demo@slotmail.local").First(&customer).Error; err != nil {
		customer = models.User{Email: "demo@slotmail.local", BusinessName: "Demo Plumbing Co", Status: constants.UserStatusActive}
		if err := models.DB.Create(&customer).Error; err != nil {
			stdLog.Fatalf("Failed to create demo customer: %v", err)
		}
	}
	for _, user := range []*models.User{admin, &customer} {
		token, expiresAt, err := c.TokenService.IssueUserToken(user)
		if err != nil {
			stdLog.Printf("Failed to issue token for %s: %v", user.Email, err)
			continue
		}
		stdLog.Printf("Token for %s (expires %s): %s", user.Email, expiresAt.Format(time.RFC3339), token)
	}

	stdLog.Printf("Seed completed")
}
