package public

import (
	"github.com/slotmail/internal/constants"
	handlershared "github.com/slotmail/internal/http/handlers/shared"
	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListCampaigns 获取开放预订的投放期
func (h *Handler) ListCampaigns(c *gin.Context) {
	page, pageSize := handlershared.PageFromQuery(c)
	campaigns, total, err := h.CampaignService.ListCampaigns(c.Request.Context(), repository.CampaignListFilter{
		Page:     page,
		PageSize: pageSize,
		Statuses: []string{constants.CampaignStatusBookingOpen},
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, campaigns, page, pageSize, total)
}

// GetCampaign 获取投放期详情（含路线与行业）
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

// GetSlotGrid 获取投放期槽位占用情况
func (h *Handler) GetSlotGrid(c *gin.Context) {
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
