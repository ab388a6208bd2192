package service

import (
	"sort"
	"testing"

	"github.com/slotmail/internal/constants"
)

func TestPaymentTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{constants.PaymentStatusPending, constants.PaymentStatusPaid, true},
		{constants.PaymentStatusPending, constants.PaymentStatusFailed, true},
		{constants.PaymentStatusFailed, constants.PaymentStatusPending, true},
		{constants.PaymentStatusFailed, constants.PaymentStatusPaid, true},
		{constants.PaymentStatusPaid, constants.PaymentStatusPending, false},
		{constants.PaymentStatusPaid, constants.PaymentStatusFailed, false},
		{"unknown", constants.PaymentStatusPaid, false},
	}
	for _, tc := range cases {
		if got := canTransitionPayment(tc.from, tc.to); got != tc.want {
			t.Fatalf("payment %s -> %s want %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestApprovalAndArtworkTransitions(t *testing.T) {
	if !canTransitionApproval(constants.ApprovalStatusRejected, constants.ApprovalStatusApproved) {
		t.Fatalf("rejected booking should be approvable")
	}
	if canTransitionApproval(constants.ApprovalStatusApproved, constants.ApprovalStatusRejected) {
		t.Fatalf("approved booking should not be rejectable")
	}
	if canTransitionArtwork(constants.ArtworkStatusPendingUpload, constants.ArtworkStatusApproved) {
		t.Fatalf("artwork cannot be approved before review")
	}
	if !canTransitionArtwork(constants.ArtworkStatusRejected, constants.ArtworkStatusUnderReview) {
		t.Fatalf("rejected artwork should go back to review on re-upload")
	}
}

func TestSourcesFor(t *testing.T) {
	got := sourcesFor(approvalTransitions, constants.ApprovalStatusApproved)
	sort.Strings(got)
	if len(got) != 2 || got[0] != constants.ApprovalStatusPending || got[1] != constants.ApprovalStatusRejected {
		t.Fatalf("unexpected approval sources: %v", got)
	}
}

func TestCanAdvanceCampaign(t *testing.T) {
	if !canAdvanceCampaign(constants.CampaignStatusPlanning, constants.CampaignStatusBookingOpen) {
		t.Fatalf("planning -> booking_open should be allowed")
	}
	if !canAdvanceCampaign(constants.CampaignStatusBookingOpen, constants.CampaignStatusPrinting) {
		t.Fatalf("skipping forward should be allowed")
	}
	if canAdvanceCampaign(constants.CampaignStatusPrinting, constants.CampaignStatusBookingOpen) {
		t.Fatalf("moving backward should be rejected")
	}
	if canAdvanceCampaign(constants.CampaignStatusMailed, constants.CampaignStatusMailed) {
		t.Fatalf("same status should be rejected")
	}
}
