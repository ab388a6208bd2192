package admin

import (
	"strings"

	handlershared "github.com/slotmail/internal/http/handlers/shared"
	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// PricingRuleRequest 创建/更新定价规则请求
type PricingRuleRequest struct {
	Name        string       `json:"name" binding:"required"`
	Scope       string       `json:"scope" binding:"required"`
	CampaignID  *uint        `json:"campaign_id"`
	UserID      *uint        `json:"user_id"`
	Type        string       `json:"type" binding:"required"`
	Value       models.Money `json:"value"`
	Priority    int          `json:"priority"`
	UsageLimit  *int         `json:"usage_limit"`
	Description string       `json:"description"`
	Active      bool         `json:"active"`
}

// PricingRuleActiveRequest 启停定价规则请求
type PricingRuleActiveRequest struct {
	Active bool `json:"active"`
}

func (req PricingRuleRequest) toInput() service.PricingRuleInput {
	return service.PricingRuleInput{
		Name:        strings.TrimSpace(req.Name),
		Scope:       strings.TrimSpace(req.Scope),
		CampaignID:  req.CampaignID,
		UserID:      req.UserID,
		Type:        strings.TrimSpace(req.Type),
		Value:       req.Value,
		Priority:    req.Priority,
		UsageLimit:  req.UsageLimit,
		Description: req.Description,
		Active:      req.Active,
	}
}

// CreatePricingRule 创建定价规则
func (h *Handler) CreatePricingRule(c *gin.Context) {
	var req PricingRuleRequest
	if !bindJSON(c, &req) {
		return
	}
	rule, err := h.PricingRuleService.CreateRule(c.Request.Context(), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// UpdatePricingRule 更新定价规则
func (h *Handler) UpdatePricingRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PricingRuleRequest
	if !bindJSON(c, &req) {
		return
	}
	rule, err := h.PricingRuleService.UpdateRule(c.Request.Context(), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// SetPricingRuleActive 启用/停用定价规则
func (h *Handler) SetPricingRuleActive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PricingRuleActiveRequest
	if !bindJSON(c, &req) {
		return
	}
	rule, err := h.PricingRuleService.SetActive(c.Request.Context(), id, req.Active)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// GetPricingRule 获取定价规则详情
func (h *Handler) GetPricingRule(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rule, err := h.PricingRuleService.GetRule(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, rule)
}

// ListPricingRules 获取定价规则列表
func (h *Handler) ListPricingRules(c *gin.Context) {
	page, pageSize := pagination(c)
	rules, total, err := h.PricingRuleService.ListRules(c.Request.Context(), repository.PricingRuleListFilter{
		Page:       page,
		PageSize:   pageSize,
		Scope:      strings.TrimSpace(c.Query("scope")),
		CampaignID: handlershared.QueryUint(c, "campaign_id"),
		UserID:     handlershared.QueryUint(c, "user_id"),
		Status:     strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rules, page, pageSize, total)
}

// QuoteForUser 以指定用户身份试算报价
func (h *Handler) QuoteForUser(c *gin.Context) {
	campaignID := handlershared.QueryUint(c, "campaign_id")
	userID := handlershared.QueryUint(c, "user_id")
	quantity := handlershared.QueryInt(c, "quantity", 1)
	if campaignID == 0 || userID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	quote, err := h.PricingService.Quote(c.Request.Context(), campaignID, userID, quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, quote)
}
