package repository

import (
	"testing"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
)

func TestPricingRuleUsageLimit(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPricingRuleRepository(db)
	limit := 1
	rule := &models.PricingRule{
		Name:       "launch",
		Scope:      constants.PricingRuleScopeGlobal,
		Type:       constants.PricingRuleTypeDiscountAmount,
		Value:      models.NewMoneyFromCents(5000),
		UsageLimit: &limit,
		Status:     constants.PricingRuleStatusActive,
	}
	if err := repo.Create(rule); err != nil {
		t.Fatalf("create rule failed: %v", err)
	}
	ok, err := repo.IncrementUsage(rule.ID)
	if err != nil || !ok {
		t.Fatalf("first increment should succeed, ok=%v err=%v", ok, err)
	}
	ok, err = repo.IncrementUsage(rule.ID)
	if err != nil || ok {
		t.Fatalf("increment beyond limit should be rejected, ok=%v err=%v", ok, err)
	}
}

func TestPricingRuleApplicationIdempotent(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPricingRuleRepository(db)
	app := &models.PricingRuleApplication{PricingRuleID: 7, BookingID: 11, UserID: 3, DiscountAmount: models.NewMoneyFromCents(100)}
	created, err := repo.CreateApplication(app)
	if err != nil || !created {
		t.Fatalf("first application should be created, created=%v err=%v", created, err)
	}
	dup := &models.PricingRuleApplication{PricingRuleID: 7, BookingID: 11, UserID: 3}
	created, err = repo.CreateApplication(dup)
	if err != nil || created {
		t.Fatalf("duplicate application should be ignored, created=%v err=%v", created, err)
	}
	counts, err := repo.CountUserApplications([]uint{7}, 3)
	if err != nil || counts[7] != 1 {
		t.Fatalf("expected one application, got %v err=%v", counts, err)
	}
}

func TestListActiveForQuoteScopes(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPricingRuleRepository(db)
	campaignID, otherCampaign, userID := uint(1), uint(2), uint(9)
	rules := []*models.PricingRule{
		{Name: "global", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountAmount, Status: constants.PricingRuleStatusActive},
		{Name: "campaign", Scope: constants.PricingRuleScopeCampaign, CampaignID: &campaignID, Type: constants.PricingRuleTypeDiscountAmount, Status: constants.PricingRuleStatusActive},
		{Name: "other campaign", Scope: constants.PricingRuleScopeCampaign, CampaignID: &otherCampaign, Type: constants.PricingRuleTypeDiscountAmount, Status: constants.PricingRuleStatusActive},
		{Name: "user", Scope: constants.PricingRuleScopeUser, UserID: &userID, Type: constants.PricingRuleTypeFixedPrice, Status: constants.PricingRuleStatusActive},
		{Name: "inactive", Scope: constants.PricingRuleScopeGlobal, Type: constants.PricingRuleTypeDiscountAmount, Status: constants.PricingRuleStatusInactive},
	}
	for _, rule := range rules {
		if err := repo.Create(rule); err != nil {
			t.Fatalf("create rule failed: %v", err)
		}
	}
	got, err := repo.ListActiveForQuote(campaignID, userID)
	if err != nil {
		t.Fatalf("list rules failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 applicable rules, got %d", len(got))
	}
}
