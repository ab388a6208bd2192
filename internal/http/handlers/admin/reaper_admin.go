package admin

import (
	"github.com/slotmail/internal/http/response"

	"github.com/gin-gonic/gin"
)

// RunReaper 立即执行一次超时预订回收
func (h *Handler) RunReaper(c *gin.Context) {
	summary, err := h.ExpirationService.ReapStale(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_reaper_run",
		"scanned", summary.Scanned,
		"reaped", summary.Reaped,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	response.Success(c, summary)
}
