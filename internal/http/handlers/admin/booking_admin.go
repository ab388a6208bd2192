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

// BookingNoteRequest 驳回预订/设计稿请求
type BookingNoteRequest struct {
	Note string `json:"note"`
}

// PriceOverrideRequest 改价请求；price_override 为空表示清除改价
type PriceOverrideRequest struct {
	PriceOverride *models.Money `json:"price_override"`
	Note          string        `json:"note"`
}

// AdminCancelRequest 管理端取消请求；refund_amount 为空时按退款规则计算
type AdminCancelRequest struct {
	RefundAmount *models.Money `json:"refund_amount"`
}

// PaymentReferenceRequest 线下确认支付/退款请求
type PaymentReferenceRequest struct {
	Amount    *models.Money `json:"amount"`
	Reference string        `json:"reference" binding:"required"`
}

// ListBookings 获取预订列表
func (h *Handler) ListBookings(c *gin.Context) {
	page, pageSize := pagination(c)
	bookings, total, err := h.BookingService.ListBookings(c.Request.Context(), repository.BookingListFilter{
		Page:           page,
		PageSize:       pageSize,
		UserID:         handlershared.QueryUint(c, "user_id"),
		CampaignID:     handlershared.QueryUint(c, "campaign_id"),
		BookingNo:      strings.TrimSpace(c.Query("booking_no")),
		Status:         strings.TrimSpace(c.Query("status")),
		PaymentStatus:  strings.TrimSpace(c.Query("payment_status")),
		ApprovalStatus: strings.TrimSpace(c.Query("approval_status")),
		ArtworkStatus:  strings.TrimSpace(c.Query("artwork_status")),
		RefundStatus:   strings.TrimSpace(c.Query("refund_status")),
		WithRelations:  true,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, bookings, page, pageSize, total)
}

// GetBooking 获取预订详情
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	booking, err := h.BookingService.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, booking)
}

// ApproveBooking 审核通过
func (h *Handler) ApproveBooking(c *gin.Context) {
	h.applyBookingAction(c, "admin_booking_approved", func(id uint) (*models.Booking, error) {
		return h.BookingService.ApproveBooking(c.Request.Context(), id)
	})
}

// RejectBooking 审核驳回（必须填写原因）
func (h *Handler) RejectBooking(c *gin.Context) {
	var req BookingNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	h.applyBookingAction(c, "admin_booking_rejected", func(id uint) (*models.Booking, error) {
		return h.BookingService.RejectBooking(c.Request.Context(), id, req.Note)
	})
}

// ApproveArtwork 设计稿通过
func (h *Handler) ApproveArtwork(c *gin.Context) {
	h.applyBookingAction(c, "admin_artwork_approved", func(id uint) (*models.Booking, error) {
		return h.BookingService.ApproveArtwork(c.Request.Context(), id)
	})
}

// RejectArtwork 设计稿驳回（必须填写原因）
func (h *Handler) RejectArtwork(c *gin.Context) {
	var req BookingNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	h.applyBookingAction(c, "admin_artwork_rejected", func(id uint) (*models.Booking, error) {
		return h.BookingService.RejectArtwork(c.Request.Context(), id, req.Note)
	})
}

// SetPriceOverride 管理员改价
func (h *Handler) SetPriceOverride(c *gin.Context) {
	var req PriceOverrideRequest
	if !bindJSON(c, &req) {
		return
	}
	h.applyBookingAction(c, "admin_booking_price_overridden", func(id uint) (*models.Booking, error) {
		return h.BookingService.SetPriceOverride(c.Request.Context(), id, req.PriceOverride, req.Note)
	})
}

// CancelBooking 管理端取消预订
func (h *Handler) CancelBooking(c *gin.Context) {
	var req AdminCancelRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	h.applyBookingAction(c, "admin_booking_cancelled", func(id uint) (*models.Booking, error) {
		return h.BookingService.AdminCancelBooking(c.Request.Context(), service.AdminCancelInput{
			BookingID:    id,
			RefundAmount: req.RefundAmount,
		})
	})
}

// MarkBookingPaid 线下确认收款
func (h *Handler) MarkBookingPaid(c *gin.Context) {
	var req PaymentReferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Amount == nil {
		respondError(c, response.CodeBadRequest, "error.payment_amount_mismatch", nil)
		return
	}
	h.applyBookingAction(c, "admin_booking_marked_paid", func(id uint) (*models.Booking, error) {
		return h.BookingService.MarkPaid(c.Request.Context(), service.PaymentConfirmation{
			BookingID: id,
			Amount:    *req.Amount,
			Reference: strings.TrimSpace(req.Reference),
		})
	})
}

// MarkBookingRefunded 确认退款完成
func (h *Handler) MarkBookingRefunded(c *gin.Context) {
	var req PaymentReferenceRequest
	if !bindJSON(c, &req) {
		return
	}
	h.applyBookingAction(c, "admin_booking_marked_refunded", func(id uint) (*models.Booking, error) {
		return h.BookingService.MarkRefunded(c.Request.Context(), id, strings.TrimSpace(req.Reference))
	})
}

// DeleteBooking 删除已取消的预订
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.BookingService.DeleteBooking(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_booking_deleted", "booking_id", id)
	response.Success(c, gin.H{"deleted": true})
}

func (h *Handler) applyBookingAction(c *gin.Context, event string, action func(id uint) (*models.Booking, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	booking, err := action(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	adminID, _ := c.Get("admin_id")
	requestLog(c).Infow(event, "booking_id", id, "admin_id", adminID)
	response.Success(c, booking)
}
