package shared

import "strings"

// messages 接口错误提示文案
var messages = map[string]string{
	"error.bad_request":               "invalid request",
	"error.unauthorized":              "unauthorized",
	"error.forbidden":                 "forbidden",
	"error.not_found":                 "resource not found",
	"error.internal":                  "internal server error",
	"error.too_many_requests":         "too many requests, please retry later",
	"error.auth_header_missing":       "authorization header is missing",
	"error.auth_header_invalid":       "authorization header is invalid",
	"error.token_invalid":             "token is invalid or expired",
	"error.user_disabled":             "user is disabled",
	"error.user_id_invalid":           "user id is invalid",
	"error.user_id_type_invalid":      "user id has an unexpected type",
	"error.admin_id_invalid":          "admin id is invalid",
	"error.admin_id_type_invalid":     "admin id has an unexpected type",
	"error.id_invalid":                "id is invalid",
	"error.user_not_found":            "user not found",
	"error.campaign_not_found":        "campaign not found",
	"error.booking_not_found":         "booking not found",
	"error.route_not_found":           "route not found",
	"error.industry_not_found":        "industry not found",
	"error.pricing_rule_not_found":    "pricing rule not found",
	"error.invalid_argument":          "invalid argument",
	"error.quantity_invalid":          "quantity must be between 1 and 4",
	"error.campaign_dates_invalid":    "print deadline must be before mail date",
	"error.route_not_in_campaign":     "route is not part of the campaign",
	"error.industry_not_in_campaign":  "industry is not open in the campaign",
	"error.upload_invalid":            "file was rejected",
	"error.file_kind_invalid":         "unknown file kind",
	"error.payment_amount_mismatch":   "paid amount does not match the booking",
	"error.pricing_rule_invalid":      "pricing rule is invalid",
	"error.slot_taken":                "this slot has already been booked",
	"error.invalid_state":             "the current status does not allow this action",
	"error.campaign_not_open":         "campaign is not open for booking",
	"error.campaign_locked":           "campaign can no longer be edited",
	"error.booking_cancel_locked":     "campaign has progressed past cancellation",
	"error.booking_cancelled":         "booking is cancelled",
	"error.booking_state_changed":     "booking changed, please reload",
	"error.loyalty_unavailable":       "loyalty discount is no longer available",
	"error.pricing_rule_exhausted":    "pricing rule usage limit reached",
	"error.upstream_unavailable":      "service temporarily unavailable, please retry",
	"error.webhook_secret_missing":    "webhook secret is not configured",
	"error.webhook_signature_invalid": "webhook signature is invalid",
	"error.file_missing":              "file is required",
}

// Message 根据文案 key 返回提示，未知 key 原样返回
func Message(key string) string {
	key = strings.TrimSpace(key)
	if msg, ok := messages[key]; ok {
		return msg
	}
	return key
}
