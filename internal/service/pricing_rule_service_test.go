package service

import (
	"context"
	"errors"
	"testing"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
)

func TestValidatePricingRuleInput(t *testing.T) {
	campaignID := uint(1)
	userID := uint(2)
	limit := 0
	cases := []struct {
		name  string
		input PricingRuleInput
		ok    bool
	}{
		{"global percent", PricingRuleInput{Name: "spring", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountPercent, Value: models.NewMoneyFromCents(1000)}, true},
		{"campaign amount", PricingRuleInput{Name: "c", Scope: constants.PricingRuleScopeCampaign, CampaignID: &campaignID, Type: constants.PricingRuleTypeDiscountAmount, Value: models.NewMoneyFromCents(5000)}, true},
		{"user fixed", PricingRuleInput{Name: "vip", Scope: constants.PricingRuleScopeUser, UserID: &userID, Type: constants.PricingRuleTypeFixedPrice, Value: models.NewMoneyFromCents(40000)}, true},
		{"missing name", PricingRuleInput{Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountAmount}, false},
		{"global with user", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeGlobal, UserID: &userID, Type: constants.PricingRuleTypeDiscountAmount}, false},
		{"campaign without id", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeCampaign, Type: constants.PricingRuleTypeDiscountAmount}, false},
		{"fixed outside user scope", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeCampaign, CampaignID: &campaignID, Type: constants.PricingRuleTypeFixedPrice}, false},
		{"percent above 100", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountPercent, Value: models.NewMoneyFromCents(10001)}, false},
		{"negative", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountAmount, Value: models.NewMoneyFromCents(-1)}, false},
		{"zero usage limit", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountAmount, UsageLimit: &limit}, false},
		{"unknown type", PricingRuleInput{Name: "x", Scope: constants.PricingRuleScopeGlobal, Type: "bogo"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePricingRuleInput(tc.input)
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, ErrPricingRuleInvalid) {
				t.Fatalf("expected invalid, got %v", err)
			}
		})
	}
}

func TestPricingRuleLifecycleAffectsQuote(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()
	svc := NewPricingRuleService(
		repository.NewPricingRuleRepository(env.db),
		repository.NewCampaignRepository(env.db),
		repository.NewUserRepository(env.db),
	)

	missing := uint(9999)
	_, err := svc.CreateRule(ctx, PricingRuleInput{Name: "ghost", Scope: constants.PricingRuleScopeUser, UserID: &missing, Type: constants.PricingRuleTypeFixedPrice, Value: models.NewMoneyFromCents(1)})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}

	campaignID := env.fx.campaign.ID
	rule, err := svc.CreateRule(ctx, PricingRuleInput{
		Name:       "April promo",
		Scope:      constants.PricingRuleScopeCampaign,
		CampaignID: &campaignID,
		Type:       constants.PricingRuleTypeDiscountAmount,
		Value:      models.NewMoneyFromCents(10000),
		Priority:   5,
	})
	if err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	if rule.Status != constants.PricingRuleStatusInactive {
		t.Fatalf("rule should start inactive, got %s", rule.Status)
	}

	quote, err := env.pricing.Quote(ctx, env.fx.campaign.ID, env.fx.user.ID, 1)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceDefault {
		t.Fatalf("inactive rule applied: %s", quote.PriceSource)
	}

	if _, err := svc.SetActive(ctx, rule.ID, true); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	quote, err = env.pricing.Quote(ctx, env.fx.campaign.ID, env.fx.user.ID, 1)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.PriceSource != constants.PriceSourceCampaignRule || quote.TotalPrice.Cents() != 50000 {
		t.Fatalf("expected campaign rule price 50000, got %s %d", quote.PriceSource, quote.TotalPrice.Cents())
	}

	if _, err := svc.UpdateRule(ctx, rule.ID, PricingRuleInput{
		Name:       "April promo",
		Scope:      constants.PricingRuleScopeCampaign,
		CampaignID: &campaignID,
		Type:       constants.PricingRuleTypeDiscountPercent,
		Value:      models.NewMoneyFromCents(2500),
		Active:     true,
	}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	quote, err = env.pricing.Quote(ctx, env.fx.campaign.ID, env.fx.user.ID, 1)
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if quote.TotalPrice.Cents() != 45000 {
		t.Fatalf("expected 25%% off 60000, got %d", quote.TotalPrice.Cents())
	}

	rules, total, err := svc.ListRules(ctx, repository.PricingRuleListFilter{Page: 1, PageSize: 10, Scope: constants.PricingRuleScopeCampaign})
	if err != nil || total != 1 || len(rules) != 1 {
		t.Fatalf("list rules = %d/%d, %v", len(rules), total, err)
	}
	if _, err := svc.GetRule(ctx, 9999); !errors.Is(err, ErrPricingRuleNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
