package service

import (
	"context"
	"sort"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	minBookingQuantity = 1
	maxBookingQuantity = 4
)

// PricingDefaults 默认价格与忠诚度折扣
type PricingDefaults struct {
	FirstSlot       models.Money
	AdditionalSlot  models.Money
	LoyaltyDiscount models.Money
}

// PriceBreakdown 报价明细
type PriceBreakdown struct {
	BasePrice      models.Money `json:"base_price"`
	DiscountAmount models.Money `json:"discount_amount"`
	FinalPrice     models.Money `json:"final_price"`
}

// AppliedRule 报价命中的定价规则
type AppliedRule struct {
	RuleID         uint         `json:"rule_id"`
	Name           string       `json:"name"`
	Scope          string       `json:"scope"`
	Type           string       `json:"type"`
	Value          models.Money `json:"value"`
	DiscountAmount models.Money `json:"discount_amount"`
}

// Quote 报价结果
type Quote struct {
	CampaignID   uint           `json:"campaign_id"`
	UserID       uint           `json:"user_id"`
	Quantity     int            `json:"quantity"`
	TotalPrice   models.Money   `json:"total_price"`
	Breakdown    PriceBreakdown `json:"breakdown"`
	AppliedRules []AppliedRule  `json:"applied_rules"`
	PriceSource  string         `json:"price_source"`
}

// PricingService 报价服务
type PricingService struct {
	campaignRepo repository.CampaignRepository
	userRepo     repository.UserRepository
	ruleRepo     repository.PricingRuleRepository
	defaults     PricingDefaults
	clock        Clock
}

// NewPricingService 创建报价服务
func NewPricingService(campaignRepo repository.CampaignRepository, userRepo repository.UserRepository, ruleRepo repository.PricingRuleRepository, defaults PricingDefaults, clock Clock) *PricingService {
	return &PricingService{
		campaignRepo: campaignRepo,
		userRepo:     userRepo,
		ruleRepo:     ruleRepo,
		defaults:     defaults,
		clock:        clock,
	}
}

// Quote 计算 (投放期, 用户, 数量) 的唯一报价
func (s *PricingService) Quote(ctx context.Context, campaignID, userID uint, quantity int) (*Quote, error) {
	if quantity < minBookingQuantity || quantity > maxBookingQuantity {
		return nil, ErrQuantityInvalid
	}
	campaign, err := s.campaignRepo.WithContext(ctx).GetByID(campaignID)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	user, err := s.userRepo.WithContext(ctx).GetByID(userID)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.quoteFor(ctx, campaign, user, quantity)
}

func (s *PricingService) quoteFor(ctx context.Context, campaign *models.Campaign, user *models.User, quantity int) (*Quote, error) {
	ruleRepo := s.ruleRepo.WithContext(ctx)
	rules, err := ruleRepo.ListActiveForQuote(campaign.ID, user.ID)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	userRuleIDs := make([]uint, 0)
	for _, rule := range rules {
		if rule.Scope == constants.PricingRuleScopeUser && rule.UsageLimit != nil {
			userRuleIDs = append(userRuleIDs, rule.ID)
		}
	}
	applications, err := ruleRepo.CountUserApplications(userRuleIDs, user.ID)
	if err != nil {
		return nil, upstream(ErrUpstreamFailure, err)
	}
	return resolveQuote(pricingInput{
		campaign:         campaign,
		user:             user,
		quantity:         quantity,
		rules:            rules,
		userApplications: applications,
		defaults:         s.defaults,
		now:              s.clock.now(),
	}), nil
}

// RecordApplication 在预订创建事务内记录规则使用；同一预订重复记录被忽略
func (s *PricingService) RecordApplication(tx *gorm.DB, quote *Quote, bookingID uint) error {
	if quote == nil {
		return nil
	}
	ruleRepo := s.ruleRepo.WithTx(tx)
	for _, applied := range quote.AppliedRules {
		created, err := ruleRepo.CreateApplication(&models.PricingRuleApplication{
			PricingRuleID:  applied.RuleID,
			BookingID:      bookingID,
			UserID:         quote.UserID,
			DiscountAmount: applied.DiscountAmount,
		})
		if err != nil {
			return err
		}
		if !created {
			continue
		}
		ok, err := ruleRepo.IncrementUsage(applied.RuleID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPricingRuleExhausted
		}
	}
	return nil
}

// campaignBasePrice 投放期生效的默认价：首个槽位 + (数量-1) × 追加槽位
func campaignBasePrice(campaign *models.Campaign, defaults PricingDefaults, quantity int) decimal.Decimal {
	first := defaults.FirstSlot.Decimal
	additional := defaults.AdditionalSlot.Decimal
	if campaign != nil && campaign.BaseSlotPrice != nil {
		first = campaign.BaseSlotPrice.Decimal
	}
	if campaign != nil && campaign.AdditionalSlotPrice != nil {
		additional = campaign.AdditionalSlotPrice.Decimal
	}
	if quantity < 1 {
		quantity = 1
	}
	return first.Add(additional.Mul(decimal.NewFromInt(int64(quantity - 1))))
}

type pricingInput struct {
	campaign         *models.Campaign
	user             *models.User
	quantity         int
	rules            []models.PricingRule
	userApplications map[uint]int
	defaults         PricingDefaults
	now              time.Time
}

// pricingOutcome 单个策略命中后的结果
type pricingOutcome struct {
	final decimal.Decimal
	rule  *models.PricingRule
}

type pricingStrategy struct {
	source string
	apply  func(in pricingInput, base decimal.Decimal) (pricingOutcome, bool)
}

// pricingStrategies 按顺序匹配，首个命中即为报价来源
var pricingStrategies = []pricingStrategy{
	{source: constants.PriceSourceUserFixedPrice, apply: applyUserFixedPrice},
	{source: constants.PriceSourceLoyaltyDiscount, apply: applyLoyaltyDiscount},
	{source: constants.PriceSourceUserRule, apply: discountRuleStrategy(constants.PricingRuleScopeUser)},
	{source: constants.PriceSourceCampaignRule, apply: discountRuleStrategy(constants.PricingRuleScopeCampaign)},
	{source: constants.PriceSourceGlobalRule, apply: discountRuleStrategy(constants.PricingRuleScopeGlobal)},
}

func resolveQuote(in pricingInput) *Quote {
	base := campaignBasePrice(in.campaign, in.defaults, in.quantity)
	quote := &Quote{
		Quantity:     in.quantity,
		AppliedRules: []AppliedRule{},
		PriceSource:  constants.PriceSourceDefault,
	}
	if in.campaign != nil {
		quote.CampaignID = in.campaign.ID
	}
	if in.user != nil {
		quote.UserID = in.user.ID
	}
	final := base
	for _, strategy := range pricingStrategies {
		outcome, ok := strategy.apply(in, base)
		if !ok {
			continue
		}
		final = outcome.final
		quote.PriceSource = strategy.source
		if outcome.rule != nil {
			quote.AppliedRules = append(quote.AppliedRules, AppliedRule{
				RuleID:         outcome.rule.ID,
				Name:           outcome.rule.Name,
				Scope:          outcome.rule.Scope,
				Type:           outcome.rule.Type,
				Value:          outcome.rule.Value,
				DiscountAmount: models.NewMoneyFromDecimal(discountOf(base, final)),
			})
		}
		break
	}
	quote.TotalPrice = models.NewMoneyFromDecimal(final)
	quote.Breakdown = PriceBreakdown{
		BasePrice:      models.NewMoneyFromDecimal(base),
		DiscountAmount: models.NewMoneyFromDecimal(discountOf(base, final)),
		FinalPrice:     models.NewMoneyFromDecimal(final),
	}
	return quote
}

// discountOf 优惠额不为负；固定价高于默认价时总价照收但不记为优惠
func discountOf(base, final decimal.Decimal) decimal.Decimal {
	if final.GreaterThan(base) {
		return decimal.Zero
	}
	return base.Sub(final)
}

func applyUserFixedPrice(in pricingInput, base decimal.Decimal) (pricingOutcome, bool) {
	rule := topRule(in, constants.PricingRuleScopeUser, func(rule *models.PricingRule) bool {
		return rule.Type == constants.PricingRuleTypeFixedPrice
	})
	if rule == nil {
		return pricingOutcome{}, false
	}
	return pricingOutcome{final: rule.Value.Decimal.Mul(decimal.NewFromInt(int64(in.quantity))), rule: rule}, true
}

func applyLoyaltyDiscount(in pricingInput, base decimal.Decimal) (pricingOutcome, bool) {
	if !loyaltyAvailable(in.user, in.now) {
		return pricingOutcome{}, false
	}
	final := base.Sub(in.defaults.LoyaltyDiscount.Decimal)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return pricingOutcome{final: final}, true
}

// loyaltyAvailable 本年度计数且仍有可用折扣
func loyaltyAvailable(user *models.User, now time.Time) bool {
	return user != nil && user.LoyaltyResetYear == now.Year() && user.LoyaltyDiscountsAvailable > 0
}

func discountRuleStrategy(scope string) func(in pricingInput, base decimal.Decimal) (pricingOutcome, bool) {
	return func(in pricingInput, base decimal.Decimal) (pricingOutcome, bool) {
		rule := topRule(in, scope, func(rule *models.PricingRule) bool {
			return rule.Type == constants.PricingRuleTypeDiscountAmount || rule.Type == constants.PricingRuleTypeDiscountPercent
		})
		if rule == nil {
			return pricingOutcome{}, false
		}
		return pricingOutcome{final: base.Sub(ruleDiscount(rule, base)), rule: rule}, true
	}
}

// ruleDiscount 计算折扣金额；百分比折扣向下取整到分，且不超过基础价
func ruleDiscount(rule *models.PricingRule, base decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch rule.Type {
	case constants.PricingRuleTypeDiscountAmount:
		discount = rule.Value.Decimal
	case constants.PricingRuleTypeDiscountPercent:
		discount = base.Mul(rule.Value.Decimal).Div(decimal.NewFromInt(100)).RoundFloor(2)
	default:
		return decimal.Zero
	}
	if discount.IsNegative() {
		return decimal.Zero
	}
	if discount.GreaterThan(base) {
		return base
	}
	return discount
}

// topRule 在作用域内挑选未用尽、优先级最高（同级取 ID 最小）的规则
func topRule(in pricingInput, scope string, match func(rule *models.PricingRule) bool) *models.PricingRule {
	candidates := make([]*models.PricingRule, 0)
	for i := range in.rules {
		rule := &in.rules[i]
		if rule.Scope != scope || rule.Status != constants.PricingRuleStatusActive || !match(rule) {
			continue
		}
		if !ruleInScope(rule, in) || !ruleHasCapacity(rule, in) {
			continue
		}
		candidates = append(candidates, rule)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Priority != candidates[j].Priority {
			return candidates[i].Priority > candidates[j].Priority
		}
		return candidates[i].ID < candidates[j].ID
	})
	return candidates[0]
}

func ruleInScope(rule *models.PricingRule, in pricingInput) bool {
	switch rule.Scope {
	case constants.PricingRuleScopeGlobal:
		return true
	case constants.PricingRuleScopeCampaign:
		return rule.CampaignID != nil && in.campaign != nil && *rule.CampaignID == in.campaign.ID
	case constants.PricingRuleScopeUser:
		return rule.UserID != nil && in.user != nil && *rule.UserID == in.user.ID
	default:
		return false
	}
}

func ruleHasCapacity(rule *models.PricingRule, in pricingInput) bool {
	if rule.UsageLimit == nil {
		return true
	}
	limit := *rule.UsageLimit
	if rule.UsageCount >= limit {
		return false
	}
	if rule.Scope == constants.PricingRuleScopeUser && in.userApplications[rule.ID] >= limit {
		return false
	}
	return true
}
