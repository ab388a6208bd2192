package public

import (
	"strings"

	handlershared "github.com/slotmail/internal/http/handlers/shared"
	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/repository"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// QuoteRequest 报价请求
type QuoteRequest struct {
	CampaignID uint `json:"campaign_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required"`
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	CampaignID          uint   `json:"campaign_id" binding:"required"`
	RouteID             uint   `json:"route_id" binding:"required"`
	IndustryID          uint   `json:"industry_id" binding:"required"`
	IndustrySubcategory string `json:"industry_subcategory"`
	Quantity            int    `json:"quantity" binding:"required"`
}

// QuoteBooking 预订金额预览
func (h *Handler) QuoteBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	quote, err := h.PricingService.Quote(c.Request.Context(), req.CampaignID, uid, req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, quote)
}

// CreateBooking 创建待支付预订
func (h *Handler) CreateBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	booking, quote, err := h.BookingService.CreateBooking(c.Request.Context(), service.CreateBookingInput{
		UserID:              uid,
		CampaignID:          req.CampaignID,
		RouteID:             req.RouteID,
		IndustryID:          req.IndustryID,
		IndustrySubcategory: strings.TrimSpace(req.IndustrySubcategory),
		Quantity:            req.Quantity,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"booking": booking,
		"quote":   quote,
	})
}

// ListMyBookings 获取当前用户的预订列表
func (h *Handler) ListMyBookings(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageFromQuery(c)
	bookings, total, err := h.BookingService.ListBookings(c.Request.Context(), repository.BookingListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uid,
		CampaignID:    handlershared.QueryUint(c, "campaign_id"),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		WithRelations: true,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, bookings, page, pageSize, total)
}

// GetMyBooking 获取当前用户的预订详情
func (h *Handler) GetMyBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.GetUserBooking(c.Request.Context(), id, uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, booking)
}

// CancelMyBooking 用户取消预订（按退款规则计算退款）
func (h *Handler) CancelMyBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.CancelBooking(c.Request.Context(), id, uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, booking)
}

// InitiatePayment 发起支付，返回应付金额
func (h *Handler) InitiatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	intent, err := h.BookingService.InitiatePayment(c.Request.Context(), id, uid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, intent)
}

// UploadBookingFile 上传设计稿、Logo 或图片
func (h *Handler) UploadBookingFile(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.file_missing", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.upload_invalid", err)
		return
	}
	defer file.Close()

	result, err := h.UploadService.UploadBookingFile(c.Request.Context(), service.UploadInput{
		BookingID: id,
		UserID:    uid,
		Kind:      strings.TrimSpace(c.PostForm("kind")),
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		File:      file,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}
