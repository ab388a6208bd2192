package service

import (
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
)

// RefundPolicy 退款规则：距印刷截止不少于 CutoffDays 天的已支付预订退还实付减手续费
type RefundPolicy struct {
	CutoffDays    int
	ProcessingFee models.Money
}

// RefundDecision 退款计算结果
type RefundDecision struct {
	Amount models.Money
	Status string
}

// ComputeRefund 计算取消时的退款
func ComputeRefund(booking *models.Booking, campaign *models.Campaign, now time.Time, policy RefundPolicy) RefundDecision {
	none := RefundDecision{Amount: models.NewMoneyFromCents(0), Status: constants.RefundStatusNoRefund}
	if booking == nil || campaign == nil || !booking.IsPaid() {
		return none
	}
	cutoff := campaign.PrintDeadline.Add(-time.Duration(policy.CutoffDays) * 24 * time.Hour)
	if now.After(cutoff) {
		return none
	}
	amount := booking.EffectiveAmount().Decimal.Sub(policy.ProcessingFee.Decimal)
	if !amount.IsPositive() {
		return none
	}
	return RefundDecision{Amount: models.NewMoneyFromDecimal(amount), Status: constants.RefundStatusPending}
}
