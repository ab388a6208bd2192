package service

import (
	"errors"
	"fmt"
)

// 错误分类，调用方用 errors.Is 判断类别或具体错误
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrSlotTaken       = errors.New("slot taken")
	ErrInvalidState    = errors.New("invalid state")
	ErrUpstreamFailure = errors.New("upstream failure")
)

// NotFound
var (
	ErrCampaignNotFound    = fmt.Errorf("campaign %w", ErrNotFound)
	ErrBookingNotFound     = fmt.Errorf("booking %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrRouteNotFound       = fmt.Errorf("route %w", ErrNotFound)
	ErrIndustryNotFound    = fmt.Errorf("industry %w", ErrNotFound)
	ErrPricingRuleNotFound = fmt.Errorf("pricing rule %w", ErrNotFound)
)

// InvalidArgument
var (
	ErrQuantityInvalid          = fmt.Errorf("%w: quantity must be between 1 and 4", ErrInvalidArgument)
	ErrCampaignNameRequired     = fmt.Errorf("%w: campaign name is required", ErrInvalidArgument)
	ErrCampaignDatesInvalid     = fmt.Errorf("%w: print deadline must be before mail date", ErrInvalidArgument)
	ErrRejectionNoteRequired    = fmt.Errorf("%w: rejection note is required", ErrInvalidArgument)
	ErrArtworkReasonRequired    = fmt.Errorf("%w: artwork rejection reason is required", ErrInvalidArgument)
	ErrPricingRuleInvalid       = fmt.Errorf("%w: pricing rule is invalid", ErrInvalidArgument)
	ErrPriceOverrideInvalid     = fmt.Errorf("%w: price override must not be negative", ErrInvalidArgument)
	ErrPaymentAmountMismatch    = fmt.Errorf("%w: paid amount does not match booking amount", ErrInvalidArgument)
	ErrUploadInvalid            = fmt.Errorf("%w: upload rejected", ErrInvalidArgument)
	ErrRouteNotInCampaign       = fmt.Errorf("%w: route is not part of the campaign", ErrInvalidArgument)
	ErrIndustryNotInCampaign    = fmt.Errorf("%w: industry is not open in the campaign", ErrInvalidArgument)
	ErrNotificationKindInvalid  = fmt.Errorf("%w: unknown notification kind", ErrInvalidArgument)
	ErrDimensionNameRequired    = fmt.Errorf("%w: name is required", ErrInvalidArgument)
	ErrCampaignStatusUnknown    = fmt.Errorf("%w: unknown campaign status", ErrInvalidArgument)
	ErrBookingFileKindInvalid   = fmt.Errorf("%w: unknown booking file kind", ErrInvalidArgument)
	ErrPaymentEventUnsupported  = fmt.Errorf("%w: unsupported payment event", ErrInvalidArgument)
	ErrBookingReferenceRequired = fmt.Errorf("%w: booking reference is required", ErrInvalidArgument)
)

// InvalidState
var (
	ErrCampaignNotOpen       = fmt.Errorf("%w: campaign is not open for booking", ErrInvalidState)
	ErrCampaignLocked        = fmt.Errorf("%w: campaign can no longer be edited", ErrInvalidState)
	ErrCampaignStatusInvalid = fmt.Errorf("%w: campaign status can only move forward", ErrInvalidState)
	ErrBookingCancelled      = fmt.Errorf("%w: booking is cancelled", ErrInvalidState)
	ErrBookingNotCancelled   = fmt.Errorf("%w: booking is not cancelled", ErrInvalidState)
	ErrPaymentStatusInvalid  = fmt.Errorf("%w: payment status does not allow this action", ErrInvalidState)
	ErrApprovalStatusInvalid = fmt.Errorf("%w: approval status does not allow this action", ErrInvalidState)
	ErrArtworkStatusInvalid  = fmt.Errorf("%w: artwork status does not allow this action", ErrInvalidState)
	ErrRefundStatusInvalid   = fmt.Errorf("%w: refund status does not allow this action", ErrInvalidState)
	ErrLoyaltyUnavailable    = fmt.Errorf("%w: loyalty discount is no longer available", ErrInvalidState)
	ErrBookingStateChanged   = fmt.Errorf("%w: booking changed concurrently", ErrInvalidState)
	ErrBookingCampaignLocked = fmt.Errorf("%w: campaign has progressed past cancellation", ErrInvalidState)
	ErrPricingRuleExhausted  = fmt.Errorf("%w: pricing rule usage limit reached", ErrInvalidState)
	ErrUserDisabled          = fmt.Errorf("%w: user is disabled", ErrInvalidState)
)

// UpstreamFailure
var (
	ErrBookingFetchFailed  = fmt.Errorf("%w: booking fetch failed", ErrUpstreamFailure)
	ErrBookingUpdateFailed = fmt.Errorf("%w: booking update failed", ErrUpstreamFailure)
	ErrStorageFailure      = fmt.Errorf("%w: storage failure", ErrUpstreamFailure)
	ErrQueueUnavailable    = fmt.Errorf("%w: queue unavailable", ErrUpstreamFailure)
)

// upstream 把底层错误包装为上游失败，保留具体哨兵
func upstream(sentinel error, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
