package public

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	handlershared "github.com/slotmail/internal/http/handlers/shared"
	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentSignatureHeader 网关回调签名头，值为请求体的 HMAC-SHA256 十六进制
const PaymentSignatureHeader = "X-Slotmail-Signature"

const maxWebhookBodyBytes = 64 << 10

// PaymentWebhook 支付网关回调：校验签名后推进预订支付状态
func (h *Handler) PaymentWebhook(c *gin.Context) {
	log := requestLog(c)
	secret := ""
	if h.Config != nil {
		secret = strings.TrimSpace(h.Config.PaymentWebhook.Secret)
	}
	if secret == "" {
		log.Errorw("payment_webhook_secret_missing")
		respondWebhookError(c, http.StatusServiceUnavailable, response.CodeServiceUnavailable, "error.webhook_secret_missing")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		log.Warnw("payment_webhook_body_read_failed", "error", err)
		respondWebhookError(c, http.StatusBadRequest, response.CodeBadRequest, "error.bad_request")
		return
	}
	if !VerifyPaymentSignature(secret, body, c.GetHeader(PaymentSignatureHeader)) {
		log.Warnw("payment_webhook_signature_invalid", "client_ip", c.ClientIP(), "body_size", len(body))
		respondWebhookError(c, http.StatusUnauthorized, response.CodeUnauthorized, "error.webhook_signature_invalid")
		return
	}
	var event service.PaymentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Warnw("payment_webhook_payload_invalid", "error", err)
		respondWebhookError(c, http.StatusBadRequest, response.CodeBadRequest, "error.bad_request")
		return
	}
	log.Infow("payment_webhook_received",
		"type", event.Type,
		"booking_id", event.BookingID,
		"booking_no", event.BookingNo,
		"reference", event.Reference,
	)

	booking, err := h.BookingService.HandlePaymentEvent(c.Request.Context(), event)
	if err != nil {
		code, msg, _ := handlershared.ResolveServiceError(err)
		log.Warnw("payment_webhook_handle_failed", "type", event.Type, "code", code, "error", err)
		response.ErrorWithStatus(c, webhookHTTPStatus(code), code, msg)
		return
	}
	response.Success(c, gin.H{
		"accepted":       true,
		"booking_id":     booking.ID,
		"payment_status": booking.PaymentStatus,
		"refund_status":  booking.RefundStatus,
	})
}

// VerifyPaymentSignature 校验回调签名
func VerifyPaymentSignature(secret string, body []byte, signature string) bool {
	signature = strings.TrimSpace(signature)
	if secret == "" || signature == "" {
		return false
	}
	given, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(signature), "sha256="))
	if err != nil {
		return false
	}
	return hmac.Equal(given, SignPaymentPayload(secret, body))
}

// SignPaymentPayload 计算回调签名
func SignPaymentPayload(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

func respondWebhookError(c *gin.Context, httpStatus, code int, key string) {
	response.ErrorWithStatus(c, httpStatus, code, handlershared.Message(key))
}

// webhookHTTPStatus 上游失败返回 503 让网关重试，其余业务错误不重试
func webhookHTTPStatus(code int) int {
	switch code {
	case response.CodeBadRequest:
		return http.StatusBadRequest
	case response.CodeNotFound:
		return http.StatusNotFound
	case response.CodeConflict:
		return http.StatusConflict
	case response.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
