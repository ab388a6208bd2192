package shared

import (
	"errors"

	"github.com/slotmail/internal/http/response"
	"github.com/slotmail/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedError 定义业务错误到接口错误响应的映射关系。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// specificErrorRules 具体错误优先匹配
var specificErrorRules = []MappedError{
	{Target: service.ErrCampaignNotFound, Code: response.CodeNotFound, Key: "error.campaign_not_found"},
	{Target: service.ErrBookingNotFound, Code: response.CodeNotFound, Key: "error.booking_not_found"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrRouteNotFound, Code: response.CodeNotFound, Key: "error.route_not_found"},
	{Target: service.ErrIndustryNotFound, Code: response.CodeNotFound, Key: "error.industry_not_found"},
	{Target: service.ErrPricingRuleNotFound, Code: response.CodeNotFound, Key: "error.pricing_rule_not_found"},
	{Target: service.ErrQuantityInvalid, Code: response.CodeBadRequest, Key: "error.quantity_invalid"},
	{Target: service.ErrCampaignDatesInvalid, Code: response.CodeBadRequest, Key: "error.campaign_dates_invalid"},
	{Target: service.ErrRouteNotInCampaign, Code: response.CodeBadRequest, Key: "error.route_not_in_campaign"},
	{Target: service.ErrIndustryNotInCampaign, Code: response.CodeBadRequest, Key: "error.industry_not_in_campaign"},
	{Target: service.ErrBookingFileKindInvalid, Code: response.CodeBadRequest, Key: "error.file_kind_invalid"},
	{Target: service.ErrPaymentAmountMismatch, Code: response.CodeBadRequest, Key: "error.payment_amount_mismatch"},
	{Target: service.ErrPricingRuleInvalid, Code: response.CodeBadRequest, Key: "error.pricing_rule_invalid"},
	{Target: service.ErrCampaignNotOpen, Code: response.CodeConflict, Key: "error.campaign_not_open"},
	{Target: service.ErrCampaignLocked, Code: response.CodeConflict, Key: "error.campaign_locked"},
	{Target: service.ErrBookingCancelled, Code: response.CodeConflict, Key: "error.booking_cancelled"},
	{Target: service.ErrBookingCampaignLocked, Code: response.CodeConflict, Key: "error.booking_cancel_locked"},
	{Target: service.ErrBookingStateChanged, Code: response.CodeConflict, Key: "error.booking_state_changed"},
	{Target: service.ErrLoyaltyUnavailable, Code: response.CodeConflict, Key: "error.loyalty_unavailable"},
	{Target: service.ErrPricingRuleExhausted, Code: response.CodeConflict, Key: "error.pricing_rule_exhausted"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
}

// categoryErrorRules 五类错误的兜底映射
var categoryErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrSlotTaken, Code: response.CodeConflict, Key: "error.slot_taken"},
	{Target: service.ErrInvalidState, Code: response.CodeConflict, Key: "error.invalid_state"},
	{Target: service.ErrUpstreamFailure, Code: response.CodeServiceUnavailable, Key: "error.upstream_unavailable"},
}

// ResolveServiceError 返回业务错误对应的响应码与文案；参数类错误直接透出具体原因
func ResolveServiceError(err error) (int, string, bool) {
	for _, rule := range specificErrorRules {
		if errors.Is(err, rule.Target) {
			return rule.Code, Message(rule.Key), true
		}
	}
	if errors.Is(err, service.ErrInvalidArgument) {
		return response.CodeBadRequest, err.Error(), true
	}
	for _, rule := range categoryErrorRules {
		if errors.Is(err, rule.Target) {
			return rule.Code, Message(rule.Key), true
		}
	}
	return response.CodeInternal, Message("error.internal"), false
}

// RespondServiceError 按错误类别返回响应；上游失败与未知错误记录日志
func RespondServiceError(c *gin.Context, err error) {
	code, msg, known := ResolveServiceError(err)
	if !known || code == response.CodeServiceUnavailable {
		RespondErrorWithMsg(c, code, msg, err)
		return
	}
	RequestLog(c).Debugw("handler_business_error", "code", code, "error", err)
	response.Error(c, code, msg)
}
