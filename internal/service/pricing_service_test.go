package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"

	"gorm.io/gorm"
)

var testPricingDefaults = PricingDefaults{
	FirstSlot:       models.NewMoneyFromCents(60000),
	AdditionalSlot:  models.NewMoneyFromCents(50000),
	LoyaltyDiscount: models.NewMoneyFromCents(15000),
}

func uintPtr(v uint) *uint { return &v }
func intPtr(v int) *int    { return &v }

func activeRule(id uint, scope, ruleType string, cents int64, priority int) models.PricingRule {
	return models.PricingRule{
		ID:       id,
		Name:     scope + "-" + ruleType,
		Scope:    scope,
		Type:     ruleType,
		Value:    models.NewMoneyFromCents(cents),
		Priority: priority,
		Status:   constants.PricingRuleStatusActive,
	}
}

func TestResolveQuoteDefaultPrice(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1},
		user:     &models.User{ID: 2},
		quantity: 3,
		defaults: testPricingDefaults,
		now:      now,
	})
	if quote.TotalPrice.Cents() != 160000 {
		t.Fatalf("quote(3) want 160000 got %d", quote.TotalPrice.Cents())
	}
	if quote.PriceSource != constants.PriceSourceDefault || len(quote.AppliedRules) != 0 {
		t.Fatalf("unexpected source %s rules %v", quote.PriceSource, quote.AppliedRules)
	}
}

func TestResolveQuoteCampaignOverrideBase(t *testing.T) {
	base := models.NewMoneyFromCents(40000)
	additional := models.NewMoneyFromCents(30000)
	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1, BaseSlotPrice: &base, AdditionalSlotPrice: &additional},
		user:     &models.User{ID: 2},
		quantity: 2,
		defaults: testPricingDefaults,
		now:      time.Now(),
	})
	if quote.Breakdown.BasePrice.Cents() != 70000 {
		t.Fatalf("base price want 70000 got %d", quote.Breakdown.BasePrice.Cents())
	}
}

func TestResolveQuoteHierarchy(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	campaign := &models.Campaign{ID: 10}
	loyal := &models.User{ID: 20, LoyaltyResetYear: 2026, LoyaltyDiscountsAvailable: 1}
	staleLoyal := &models.User{ID: 20, LoyaltyResetYear: 2025, LoyaltyDiscountsAvailable: 2}
	plain := &models.User{ID: 20}

	userFixed := activeRule(1, constants.PricingRuleScopeUser, constants.PricingRuleTypeFixedPrice, 45000, 0)
	userFixed.UserID = uintPtr(20)
	userPercent := activeRule(2, constants.PricingRuleScopeUser, constants.PricingRuleTypeDiscountPercent, 1000, 0)
	userPercent.UserID = uintPtr(20)
	campaignAmount := activeRule(3, constants.PricingRuleScopeCampaign, constants.PricingRuleTypeDiscountAmount, 5000, 0)
	campaignAmount.CampaignID = uintPtr(10)
	global := activeRule(4, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountAmount, 1000, 0)

	cases := []struct {
		name       string
		user       *models.User
		rules      []models.PricingRule
		wantSource string
		wantCents  int64
	}{
		{name: "fixed price beats loyalty", user: loyal, rules: []models.PricingRule{userFixed, campaignAmount}, wantSource: constants.PriceSourceUserFixedPrice, wantCents: 45000},
		{name: "loyalty beats campaign rule", user: loyal, rules: []models.PricingRule{campaignAmount, global}, wantSource: constants.PriceSourceLoyaltyDiscount, wantCents: 45000},
		{name: "stale loyalty year ignored", user: staleLoyal, rules: []models.PricingRule{campaignAmount}, wantSource: constants.PriceSourceCampaignRule, wantCents: 55000},
		{name: "user rule beats campaign rule", user: plain, rules: []models.PricingRule{userPercent, campaignAmount}, wantSource: constants.PriceSourceUserRule, wantCents: 54000},
		{name: "global rule last", user: plain, rules: []models.PricingRule{global}, wantSource: constants.PriceSourceGlobalRule, wantCents: 59000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quote := resolveQuote(pricingInput{campaign: campaign, user: tc.user, quantity: 1, rules: tc.rules, defaults: testPricingDefaults, now: now})
			if quote.PriceSource != tc.wantSource || quote.TotalPrice.Cents() != tc.wantCents {
				t.Fatalf("want %s/%d got %s/%d", tc.wantSource, tc.wantCents, quote.PriceSource, quote.TotalPrice.Cents())
			}
		})
	}
}

func TestResolveQuoteFixedPriceMultipliesQuantity(t *testing.T) {
	rule := activeRule(1, constants.PricingRuleScopeUser, constants.PricingRuleTypeFixedPrice, 45000, 0)
	rule.UserID = uintPtr(5)
	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1},
		user:     &models.User{ID: 5},
		quantity: 2,
		rules:    []models.PricingRule{rule},
		defaults: testPricingDefaults,
		now:      time.Now(),
	})
	if quote.TotalPrice.Cents() != 90000 {
		t.Fatalf("fixed price x2 want 90000 got %d", quote.TotalPrice.Cents())
	}
	if len(quote.AppliedRules) != 1 || quote.AppliedRules[0].RuleID != 1 {
		t.Fatalf("expected applied fixed rule, got %+v", quote.AppliedRules)
	}
}

func TestResolveQuoteFixedPriceAboveDefaultHasNoDiscount(t *testing.T) {
	rule := activeRule(1, constants.PricingRuleScopeUser, constants.PricingRuleTypeFixedPrice, 70000, 0)
	rule.UserID = uintPtr(5)
	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1},
		user:     &models.User{ID: 5},
		quantity: 1,
		rules:    []models.PricingRule{rule},
		defaults: testPricingDefaults,
		now:      time.Now(),
	})
	if quote.TotalPrice.Cents() != 70000 || quote.PriceSource != constants.PriceSourceUserFixedPrice {
		t.Fatalf("fixed price want 70000 got %s/%d", quote.PriceSource, quote.TotalPrice.Cents())
	}
	if quote.Breakdown.DiscountAmount.Cents() != 0 {
		t.Fatalf("breakdown discount want 0 got %d", quote.Breakdown.DiscountAmount.Cents())
	}
	if len(quote.AppliedRules) != 1 || quote.AppliedRules[0].DiscountAmount.Cents() != 0 {
		t.Fatalf("applied rule discount want 0, got %+v", quote.AppliedRules)
	}
}

func TestResolveQuotePercentFloorsToCent(t *testing.T) {
	base := models.NewMoneyFromCents(33333)
	rule := activeRule(1, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountPercent, 1000, 0) // 10.00%
	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1, BaseSlotPrice: &base},
		user:     &models.User{ID: 1},
		quantity: 1,
		rules:    []models.PricingRule{rule},
		defaults: testPricingDefaults,
		now:      time.Now(),
	})
	// 333.33 * 10% = 33.333 -> 33.33
	if quote.Breakdown.DiscountAmount.Cents() != 3333 {
		t.Fatalf("discount want 3333 got %d", quote.Breakdown.DiscountAmount.Cents())
	}
	if quote.TotalPrice.Cents() != 30000 {
		t.Fatalf("total want 30000 got %d", quote.TotalPrice.Cents())
	}
}

func TestResolveQuoteUsageLimitsAndRanking(t *testing.T) {
	exhausted := activeRule(1, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountAmount, 9000, 50)
	exhausted.UsageLimit = intPtr(2)
	exhausted.UsageCount = 2
	low := activeRule(2, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountAmount, 1000, 1)
	tieA := activeRule(3, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountAmount, 3000, 5)
	tieB := activeRule(4, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountAmount, 4000, 5)

	quote := resolveQuote(pricingInput{
		campaign: &models.Campaign{ID: 1},
		user:     &models.User{ID: 1},
		quantity: 1,
		rules:    []models.PricingRule{tieB, low, exhausted, tieA},
		defaults: testPricingDefaults,
		now:      time.Now(),
	})
	if len(quote.AppliedRules) != 1 || quote.AppliedRules[0].RuleID != 3 {
		t.Fatalf("expected rule 3 (priority tie, lowest id), got %+v", quote.AppliedRules)
	}

	perUser := activeRule(5, constants.PricingRuleScopeUser, constants.PricingRuleTypeDiscountAmount, 2000, 0)
	perUser.UserID = uintPtr(1)
	perUser.UsageLimit = intPtr(1)
	quote = resolveQuote(pricingInput{
		campaign:         &models.Campaign{ID: 1},
		user:             &models.User{ID: 1},
		quantity:         1,
		rules:            []models.PricingRule{perUser},
		userApplications: map[uint]int{5: 1},
		defaults:         testPricingDefaults,
		now:              time.Now(),
	})
	if quote.PriceSource != constants.PriceSourceDefault {
		t.Fatalf("user rule used up by this user should be skipped, got %s", quote.PriceSource)
	}
}

func TestResolveQuoteIsDeterministic(t *testing.T) {
	in := pricingInput{
		campaign: &models.Campaign{ID: 1},
		user:     &models.User{ID: 1},
		quantity: 4,
		rules:    []models.PricingRule{activeRule(1, constants.PricingRuleScopeGlobal, constants.PricingRuleTypeDiscountPercent, 1500, 0)},
		defaults: testPricingDefaults,
		now:      time.Now(),
	}
	first := resolveQuote(in)
	second := resolveQuote(in)
	if first.TotalPrice.Cents() != second.TotalPrice.Cents() || first.PriceSource != second.PriceSource {
		t.Fatalf("quote should be pure")
	}
}

func TestPricingServiceQuote(t *testing.T) {
	db := setupServiceTestDB(t)
	fx := seedServiceFixture(t, db)
	svc := NewPricingService(
		repository.NewCampaignRepository(db),
		repository.NewUserRepository(db),
		repository.NewPricingRuleRepository(db),
		testPricingDefaults,
		fixedClock(fx.now),
	)
	ctx := context.Background()

	if _, err := svc.Quote(ctx, fx.campaign.ID, fx.user.ID, 5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("quantity 5 should be invalid, got %v", err)
	}
	if _, err := svc.Quote(ctx, 9999, fx.user.ID, 1); !errors.Is(err, ErrCampaignNotFound) {
		t.Fatalf("missing campaign should be not found, got %v", err)
	}
	if _, err := svc.Quote(ctx, fx.campaign.ID, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user should be not found, got %v", err)
	}

	rule := &models.PricingRule{
		Name:       "spring",
		Scope:      constants.PricingRuleScopeCampaign,
		CampaignID: uintPtr(fx.campaign.ID),
		Type:       constants.PricingRuleTypeDiscountAmount,
		Value:      models.NewMoneyFromCents(10000),
		Status:     constants.PricingRuleStatusActive,
	}
	if err := db.Create(rule).Error; err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	quote, err := svc.Quote(ctx, fx.campaign.ID, fx.user.ID, 1)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceCampaignRule || quote.TotalPrice.Cents() != 50000 {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordApplication(tx, quote, 77)
	}); err != nil {
		t.Fatalf("record application failed: %v", err)
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordApplication(tx, quote, 77)
	}); err != nil {
		t.Fatalf("second record should be a no-op, got %v", err)
	}
	var reloaded models.PricingRule
	if err := db.First(&reloaded, rule.ID).Error; err != nil {
		t.Fatalf("reload rule failed: %v", err)
	}
	if reloaded.UsageCount != 1 {
		t.Fatalf("usage count want 1 got %d", reloaded.UsageCount)
	}
}
