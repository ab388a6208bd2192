package admin

import (
	"strings"

	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/repository"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// CampaignRequest 创建/更新投放期请求
type CampaignRequest struct {
	Name                string        `json:"name" binding:"required"`
	MailDate            string        `json:"mail_date" binding:"required"`
	PrintDeadline       string        `json:"print_deadline" binding:"required"`
	BaseSlotPrice       *models.Money `json:"base_slot_price"`
	AdditionalSlotPrice *models.Money `json:"additional_slot_price"`
	Notes               string        `json:"notes"`
}

// CampaignStatusRequest 推进投放期状态请求
type CampaignStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CampaignDimensionRequest 设置投放期路线/行业请求
type CampaignDimensionRequest struct {
	IDs []uint `json:"ids"`
}

func (req CampaignRequest) toInput(c *gin.Context) (service.CampaignInput, bool) {
	mailDate, err := parseDate(strings.TrimSpace(req.MailDate))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.campaign_dates_invalid", nil)
		return service.CampaignInput{}, false
	}
	deadline, err := parseDate(strings.TrimSpace(req.PrintDeadline))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.campaign_dates_invalid", nil)
		return service.CampaignInput{}, false
	}
	return service.CampaignInput{
		Name:                req.Name,
		MailDate:            mailDate,
		PrintDeadline:       deadline,
		BaseSlotPrice:       req.BaseSlotPrice,
		AdditionalSlotPrice: req.AdditionalSlotPrice,
		Notes:               req.Notes,
	}, true
}

// CreateCampaign 创建投放期
func (h *Handler) CreateCampaign(c *gin.Context) {
	var req CampaignRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}
	campaign, err := h.CampaignService.CreateCampaign(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// UpdateCampaign 更新投放期
func (h *Handler) UpdateCampaign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CampaignRequest
	if !bindJSON(c, &req) {
		return
	}
	input, ok := req.toInput(c)
	if !ok {
		return
	}
	campaign, err := h.CampaignService.UpdateCampaign(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// GetCampaign 获取投放期详情
func (h *Handler) GetCampaign(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	campaign, err := h.CampaignService.GetCampaign(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// ListCampaigns 获取投放期列表，status 可逗号分隔多个
func (h *Handler) ListCampaigns(c *gin.Context) {
	page, pageSize := pagination(c)
	filter := repository.CampaignListFilter{Page: page, PageSize: pageSize}
	for _, status := range strings.Split(c.Query("status"), ",") {
		if status = strings.TrimSpace(status); status != "" {
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	campaigns, total, err := h.CampaignService.ListCampaigns(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, campaigns, page, pageSize, total)
}

// AdvanceCampaignStatus 推进投放期状态（只能向前）
func (h *Handler) AdvanceCampaignStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CampaignStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.CampaignService.AdvanceStatus(c.Request.Context(), id, strings.TrimSpace(req.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_campaign_status_advanced", "campaign_id", id, "status", campaign.Status)
	response.Success(c, campaign)
}

// SetCampaignRoutes 设置投放期覆盖路线
func (h *Handler) SetCampaignRoutes(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CampaignDimensionRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.CampaignService.SetRoutes(c.Request.Context(), id, req.IDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// SetCampaignIndustries 设置投放期开放行业
func (h *Handler) SetCampaignIndustries(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req CampaignDimensionRequest
	if !bindJSON(c, &req) {
		return
	}
	campaign, err := h.CampaignService.SetIndustries(c.Request.Context(), id, req.IDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, campaign)
}

// GetCampaignSlotGrid 获取投放期槽位矩阵
func (h *Handler) GetCampaignSlotGrid(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	grid, err := h.CampaignService.GetSlotGrid(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, grid)
}
