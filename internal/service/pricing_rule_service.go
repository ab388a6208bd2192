package service

import (
	"context"
	"strings"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/logger"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"

	"github.com/shopspring/decimal"
)

var maxPercentValue = decimal.NewFromInt(100)

// PricingRuleService 定价规则管理
type PricingRuleService struct {
	ruleRepo     repository.PricingRuleRepository
	campaignRepo repository.CampaignRepository
	userRepo     repository.UserRepository
}

// NewPricingRuleService 创建定价规则管理服务
func NewPricingRuleService(ruleRepo repository.PricingRuleRepository, campaignRepo repository.CampaignRepository, userRepo repository.UserRepository) *PricingRuleService {
	return &PricingRuleService{ruleRepo: ruleRepo, campaignRepo: campaignRepo, userRepo: userRepo}
}

// PricingRuleInput 创建/更新定价规则输入
type PricingRuleInput struct {
	Name        string
	Scope       string
	CampaignID  *uint
	UserID      *uint
	Type        string
	Value       models.Money
	Priority    int
	UsageLimit  *int
	Description string
	Active      bool
}

// validatePricingRuleInput 校验作用域与类型组合
func validatePricingRuleInput(in PricingRuleInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrPricingRuleInvalid
	}
	switch in.Scope {
	case constants.PricingRuleScopeGlobal:
		if in.CampaignID != nil || in.UserID != nil {
			return ErrPricingRuleInvalid
		}
	case constants.PricingRuleScopeCampaign:
		if in.CampaignID == nil || *in.CampaignID == 0 || in.UserID != nil {
			return ErrPricingRuleInvalid
		}
	case constants.PricingRuleScopeUser:
		if in.UserID == nil || *in.UserID == 0 || in.CampaignID != nil {
			return ErrPricingRuleInvalid
		}
	default:
		return ErrPricingRuleInvalid
	}
	switch in.Type {
	case constants.PricingRuleTypeFixedPrice:
		if in.Scope != constants.PricingRuleScopeUser {
			return ErrPricingRuleInvalid
		}
	case constants.PricingRuleTypeDiscountAmount:
	case constants.PricingRuleTypeDiscountPercent:
		if in.Value.Decimal.GreaterThan(maxPercentValue) {
			return ErrPricingRuleInvalid
		}
	default:
		return ErrPricingRuleInvalid
	}
	if in.Value.IsNegative() {
		return ErrPricingRuleInvalid
	}
	if in.UsageLimit != nil && *in.UsageLimit < 1 {
		return ErrPricingRuleInvalid
	}
	return nil
}

func (s *PricingRuleService) checkReferences(ctx context.Context, in PricingRuleInput) error {
	if in.CampaignID != nil {
		campaign, err := s.campaignRepo.WithContext(ctx).GetByID(*in.CampaignID)
		if err != nil {
			return upstream(ErrUpstreamFailure, err)
		}
		if campaign == nil {
			return ErrCampaignNotFound
		}
	}
	if in.UserID != nil {
		user, err := s.userRepo.WithContext(ctx).GetByID(*in.UserID)
		if err != nil {
			return upstream(ErrUpstreamFailure, err)
		}
		if user == nil {
			return ErrUserNotFound
		}
	}
	return nil
}

func applyPricingRuleInput(rule *models.PricingRule, in PricingRuleInput) {
	rule.Name = strings.TrimSpace(in.Name)
	rule.Scope = in.Scope
	rule.CampaignID = in.CampaignID
	rule.UserID = in.UserID
	rule.Type = in.Type
	rule.Value = models.NewMoneyFromDecimal(in.Value.Decimal)
	rule.Priority = in.Priority
	rule.UsageLimit = in.UsageLimit
	rule.Description = strings.TrimSpace(in.Description)
	rule.Status = constants.PricingRuleStatusInactive
	if in.Active {
		rule.Status = constants.PricingRuleStatusActive
	}
}

// CreateRule 创建定价规则
func (s *PricingRuleService) CreateRule(ctx context.Context, input PricingRuleInput) (*models.PricingRule, error) {
	if err := validatePricingRuleInput(input); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}
	rule := &models.PricingRule{}
	applyPricingRuleInput(rule, input)
	if err := s.ruleRepo.WithContext(ctx).Create(rule); err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	logger.Infow("pricing_rule_created", "rule_id", rule.ID, "scope", rule.Scope, "type", rule.Type)
	return rule, nil
}

// UpdateRule 更新定价规则，已使用次数保持不变
func (s *PricingRuleService) UpdateRule(ctx context.Context, id uint, input PricingRuleInput) (*models.PricingRule, error) {
	if err := validatePricingRuleInput(input); err != nil {
		return nil, err
	}
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input); err != nil {
		return nil, err
	}
	applyPricingRuleInput(rule, input)
	if err := s.ruleRepo.WithContext(ctx).Update(rule); err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return rule, nil
}

// SetActive 启用/停用规则
func (s *PricingRuleService) SetActive(ctx context.Context, id uint, active bool) (*models.PricingRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	status := constants.PricingRuleStatusInactive
	if active {
		status = constants.PricingRuleStatusActive
	}
	if rule.Status == status {
		return rule, nil
	}
	rule.Status = status
	if err := s.ruleRepo.WithContext(ctx).Update(rule); err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	logger.Infow("pricing_rule_status_changed", "rule_id", rule.ID, "status", status)
	return rule, nil
}

// GetRule 获取规则
func (s *PricingRuleService) GetRule(ctx context.Context, id uint) (*models.PricingRule, error) {
	rule, err := s.ruleRepo.WithContext(ctx).GetByID(id)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if rule == nil {
		return nil, ErrPricingRuleNotFound
	}
	return rule, nil
}

// ListRules 分页查询规则
func (s *PricingRuleService) ListRules(ctx context.Context, filter repository.PricingRuleListFilter) ([]models.PricingRule, int64, error) {
	rules, total, err := s.ruleRepo.WithContext(ctx).List(filter)
	if err != nil {
		return nil, 0, upstream(ErrUpstreamFailure, err)
	}
	return rules, total, nil
}
