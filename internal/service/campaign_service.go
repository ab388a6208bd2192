package service

import (
	"context"
	"strings"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"

	"gorm.io/gorm"
)

// CampaignService 投放期管理服务
type CampaignService struct {
	campaignRepo repository.CampaignRepository
	routeRepo    repository.RouteRepository
	industryRepo repository.IndustryRepository
	bookingRepo  repository.BookingRepository
}

// NewCampaignService 创建投放期服务
func NewCampaignService(campaignRepo repository.CampaignRepository, routeRepo repository.RouteRepository, industryRepo repository.IndustryRepository, bookingRepo repository.BookingRepository) *CampaignService {
	return &CampaignService{
		campaignRepo: campaignRepo,
		routeRepo:    routeRepo,
		industryRepo: industryRepo,
		bookingRepo:  bookingRepo,
	}
}

// CampaignInput 创建/更新投放期输入
type CampaignInput struct {
	Name                string
	MailDate            time.Time
	PrintDeadline       time.Time
	BaseSlotPrice       *models.Money
	AdditionalSlotPrice *models.Money
	Notes               string
}

func (in CampaignInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrCampaignNameRequired
	}
	if in.MailDate.IsZero() || in.PrintDeadline.IsZero() || !in.PrintDeadline.Before(in.MailDate) {
		return ErrCampaignDatesInvalid
	}
	for _, price := range []*models.Money{in.BaseSlotPrice, in.AdditionalSlotPrice} {
		if price != nil && price.IsNegative() {
			return ErrInvalidArgument
		}
	}
	return nil
}

// CreateCampaign 创建投放期，初始为 planning
func (s *CampaignService) CreateCampaign(ctx context.Context, input CampaignInput) (*models.Campaign, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	campaign := &models.Campaign{
		Name:                strings.TrimSpace(input.Name),
		MailDate:            input.MailDate,
		PrintDeadline:       input.PrintDeadline,
		Status:              constants.CampaignStatusPlanning,
		Revenue:             models.NewMoneyFromCents(0),
		BaseSlotPrice:       input.BaseSlotPrice,
		AdditionalSlotPrice: input.AdditionalSlotPrice,
		Notes:               strings.TrimSpace(input.Notes),
	}
	if err := s.campaignRepo.WithContext(ctx).Create(campaign); err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	logger.Infow("campaign_created", "campaign_id", campaign.ID, "mail_date", campaign.MailDate)
	return campaign, nil
}

// UpdateCampaign 更新名称、日期与价格；booking_open 之后不可修改
func (s *CampaignService) UpdateCampaign(ctx context.Context, id uint, input CampaignInput) (*models.Campaign, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if !campaignEditable(campaign) {
		return nil, ErrCampaignLocked
	}
	campaign.Name = strings.TrimSpace(input.Name)
	campaign.MailDate = input.MailDate
	campaign.PrintDeadline = input.PrintDeadline
	campaign.BaseSlotPrice = input.BaseSlotPrice
	campaign.AdditionalSlotPrice = input.AdditionalSlotPrice
	campaign.Notes = strings.TrimSpace(input.Notes)
	if err := s.campaignRepo.WithContext(ctx).Update(campaign); err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return s.GetCampaign(ctx, id)
}

// AdvanceStatus 推进投放期状态（只能向前）
func (s *CampaignService) AdvanceStatus(ctx context.Context, id uint, target string) (*models.Campaign, error) {
	target = strings.TrimSpace(target)
	if !isValidCampaignStatus(target) {
		return nil, ErrCampaignStatusUnknown
	}
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAdvanceCampaign(campaign.Status, target) {
		return nil, ErrCampaignStatusInvalid
	}
	ok, err := s.campaignRepo.WithContext(ctx).UpdateStatus(campaign.ID, campaign.Status, target)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if !ok {
		return nil, ErrCampaignStatusInvalid
	}
	logger.Infow("campaign_status_advanced", "campaign_id", campaign.ID, "from", campaign.Status, "to", target)
	return s.GetCampaign(ctx, id)
}

// SetRoutes 替换投放期路线并重算总槽位
func (s *CampaignService) SetRoutes(ctx context.Context, id uint, routeIDs []uint) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if !campaignEditable(campaign) {
		return nil, ErrCampaignLocked
	}
	ids := uniqueIDs(routeIDs)
	routes, err := s.routeRepo.ListByIDs(ids)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if len(routes) != len(ids) {
		return nil, ErrRouteNotFound
	}
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.campaignRepo.WithTx(tx)
		if err := repo.ReplaceRoutes(campaign, routes); err != nil {
			return err
		}
		return repo.UpdateTotalSlots(campaign.ID, len(routes)*len(campaign.Industries))
	})
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return s.GetCampaign(ctx, id)
}

// SetIndustries 替换投放期行业并重算总槽位
func (s *CampaignService) SetIndustries(ctx context.Context, id uint, industryIDs []uint) (*models.Campaign, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	if !campaignEditable(campaign) {
		return nil, ErrCampaignLocked
	}
	ids := uniqueIDs(industryIDs)
	industries, err := s.industryRepo.ListByIDs(ids)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if len(industries) != len(ids) {
		return nil, ErrIndustryNotFound
	}
	err = models.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.campaignRepo.WithTx(tx)
		if err := repo.ReplaceIndustries(campaign, industries); err != nil {
			return err
		}
		return repo.UpdateTotalSlots(campaign.ID, len(campaign.Routes)*len(industries))
	})
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return s.GetCampaign(ctx, id)
}

// GetCampaign 获取投放期
func (s *CampaignService) GetCampaign(ctx context.Context, id uint) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// ListCampaigns 分页查询投放期
func (s *CampaignService) ListCampaigns(ctx context.Context, filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	campaigns, total, err := s.campaignRepo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, upstream(ErrUpstreamFailure, err)
	}
	return campaigns, total, nil
}

// GetSlotGrid 计算投放期槽位视图
func (s *CampaignService) GetSlotGrid(ctx context.Context, id uint) (*SlotGrid, error) {
	campaign, err := s.GetCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingRepo.WithContext(ctx).ListActiveByCampaign(campaign.ID)
	if err != nil {
		return nil, upstream(ErrBookingFetchFailed, err)
	}
	grid := BuildSlotGrid(campaign, campaign.Routes, campaign.Industries, bookings)
	return &grid, nil
}

// campaignEditable 仅 planning 与 booking_open 可修改
func campaignEditable(campaign *models.Campaign) bool {
	return campaign.Status == constants.CampaignStatusPlanning || campaign.Status == constants.CampaignStatusBookingOpen
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
