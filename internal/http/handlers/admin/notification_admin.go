package admin

import (
	"strings"

	"github.com/slotmail/internal/http/response"

	"github.com/gin-gonic/gin"
)

// DismissNotificationRequest 忽略通知请求
type DismissNotificationRequest struct {
	Kind      string `json:"kind" binding:"required"`
	BookingID uint   `json:"booking_id" binding:"required"`
}

// ListNotifications 获取待处理通知
func (h *Handler) ListNotifications(c *gin.Context) {
	items, err := h.NotificationService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// DismissNotification 忽略一条通知
func (h *Handler) DismissNotification(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	var req DismissNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.NotificationService.Dismiss(c.Request.Context(), strings.TrimSpace(req.Kind), req.BookingID, adminID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"dismissed": true})
}
