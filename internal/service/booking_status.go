package service

import "github.com/slotmail/internal/constants"

// 三个状态轴各自维护迁移表，彼此独立
var paymentTransitions = map[string]map[string]bool{
	constants.PaymentStatusPending: {
		constants.PaymentStatusPaid:   true,
		constants.PaymentStatusFailed: true,
	},
	constants.PaymentStatusFailed: {
		constants.PaymentStatusPending: true,
		constants.PaymentStatusPaid:    true,
	},
	constants.PaymentStatusPaid: {},
}

var approvalTransitions = map[string]map[string]bool{
	constants.ApprovalStatusPending: {
		constants.ApprovalStatusApproved: true,
		constants.ApprovalStatusRejected: true,
	},
	constants.ApprovalStatusRejected: {
		constants.ApprovalStatusApproved: true,
	},
	constants.ApprovalStatusApproved: {},
}

var artworkTransitions = map[string]map[string]bool{
	constants.ArtworkStatusPendingUpload: {
		constants.ArtworkStatusUnderReview: true,
	},
	constants.ArtworkStatusUnderReview: {
		constants.ArtworkStatusApproved: true,
		constants.ArtworkStatusRejected: true,
	},
	constants.ArtworkStatusRejected: {
		constants.ArtworkStatusUnderReview: true,
	},
	constants.ArtworkStatusApproved: {
		// 已通过的设计稿重新上传后回到审核
		constants.ArtworkStatusUnderReview: true,
	},
}

func canTransition(table map[string]map[string]bool, from, to string) bool {
	targets, ok := table[from]
	if !ok {
		return false
	}
	return targets[to]
}

// sourcesFor 返回可迁移到 to 的全部来源状态，用于条件更新
func sourcesFor(table map[string]map[string]bool, to string) []string {
	sources := make([]string, 0, len(table))
	for from, targets := range table {
		if targets[to] {
			sources = append(sources, from)
		}
	}
	return sources
}

func canTransitionPayment(from, to string) bool {
	return canTransition(paymentTransitions, from, to)
}

func canTransitionApproval(from, to string) bool {
	return canTransition(approvalTransitions, from, to)
}

func canTransitionArtwork(from, to string) bool {
	return canTransition(artworkTransitions, from, to)
}

// isValidCampaignStatus 判断投放期状态是否合法
func isValidCampaignStatus(status string) bool {
	return campaignStatusRank(status) >= 0
}

func campaignStatusRank(status string) int {
	for i, item := range constants.CampaignStatusOrder {
		if item == status {
			return i
		}
	}
	return -1
}

// canAdvanceCampaign 投放期状态只能向前推进
func canAdvanceCampaign(from, to string) bool {
	fromRank := campaignStatusRank(from)
	toRank := campaignStatusRank(to)
	return fromRank >= 0 && toRank > fromRank
}
