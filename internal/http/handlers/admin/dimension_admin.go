package admin

import (
	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// RouteRequest 创建路线请求
type RouteRequest struct {
	ZipCode    string `json:"zip_code" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Households int    `json:"households"`
}

// IndustryRequest 创建行业请求
type IndustryRequest struct {
	Name      string `json:"name" binding:"required"`
	Unlimited bool   `json:"unlimited"`
	SortOrder int    `json:"sort_order"`
}

// CreateRoute 创建路线
func (h *Handler) CreateRoute(c *gin.Context) {
	var req RouteRequest
	if !bindJSON(c, &req) {
		return
	}
	route, err := h.DimensionService.CreateRoute(c.Request.Context(), service.RouteInput{
		ZipCode:    req.ZipCode,
		Name:       req.Name,
		Households: req.Households,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, route)
}

// ListRoutes 获取路线列表
func (h *Handler) ListRoutes(c *gin.Context) {
	routes, err := h.DimensionService.ListRoutes(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, routes)
}

// CreateIndustry 创建行业
func (h *Handler) CreateIndustry(c *gin.Context) {
	var req IndustryRequest
	if !bindJSON(c, &req) {
		return
	}
	industry, err := h.DimensionService.CreateIndustry(c.Request.Context(), service.IndustryInput{
		Name:      req.Name,
		Unlimited: req.Unlimited,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, industry)
}

// ListIndustries 获取行业列表
func (h *Handler) ListIndustries(c *gin.Context) {
	industries, err := h.DimensionService.ListIndustries(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, industries)
}
