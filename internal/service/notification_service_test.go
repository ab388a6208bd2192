package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/repository"
)

func TestNotificationListDerivesAndDismisses(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()
	svc := NewNotificationService(
		repository.NewBookingRepository(env.db),
		repository.NewNotificationDismissalRepository(env.db),
		NotificationOptions{Window: 30 * 24 * time.Hour},
		env.clock.Now,
	)

	approval := env.pay(t, env.create(t, env.fx.user.ID, 0, env.fx.plumbing, 1))
	if _, _, err := env.booking.AttachFile(ctx, approval.ID, env.fx.user.ID, constants.BookingFileArtwork, "/uploads/a.png"); err != nil {
		t.Fatalf("attach artwork failed: %v", err)
	}
	failed := env.create(t, env.fx.rival.ID, 1, env.fx.plumbing, 1)
	if _, err := env.booking.MarkPaymentFailed(ctx, failed.ID, "pi_declined"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	expired := env.create(t, env.fx.user.ID, 0, env.fx.other, 1)
	if _, err := env.booking.Cancel(ctx, expired.ID, CancelOptions{Reason: constants.CancelReasonExpired, RequirePaymentPending: true}); err != nil {
		t.Fatalf("expire cancel failed: %v", err)
	}
	refunded := env.pay(t, env.create(t, env.fx.rival.ID, 1, env.fx.other, 1))
	if _, err := env.booking.CancelBooking(ctx, refunded.ID, env.fx.rival.ID); err != nil {
		t.Fatalf("customer cancel failed: %v", err)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list notifications failed: %v", err)
	}
	got := make(map[string]bool, len(items))
	for _, item := range items {
		got[repository.DismissalKey(item.Kind, item.BookingID)] = true
	}
	want := []string{
		repository.DismissalKey(constants.NotificationBookingAwaitingApproval, approval.ID),
		repository.DismissalKey(constants.NotificationArtworkAwaitingReview, approval.ID),
		repository.DismissalKey(constants.NotificationPaymentFailed, failed.ID),
		repository.DismissalKey(constants.NotificationBookingExpired, expired.ID),
		repository.DismissalKey(constants.NotificationRefundPending, refunded.ID),
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d: %+v", len(want), len(items), items)
	}
	for _, key := range want {
		if !got[key] {
			t.Fatalf("missing notification %s in %+v", key, items)
		}
	}

	for i := 0; i < 2; i++ {
		if err := svc.Dismiss(ctx, constants.NotificationBookingAwaitingApproval, approval.ID, env.fx.admin.ID); err != nil {
			t.Fatalf("dismiss failed: %v", err)
		}
	}
	items, err = svc.List(ctx)
	if err != nil {
		t.Fatalf("list after dismiss failed: %v", err)
	}
	if len(items) != len(want)-1 {
		t.Fatalf("expected %d items after dismiss, got %d", len(want)-1, len(items))
	}
	for _, item := range items {
		if item.Kind == constants.NotificationBookingAwaitingApproval {
			t.Fatalf("dismissed item still listed: %+v", item)
		}
	}

	if err := svc.Dismiss(ctx, "unknown", approval.ID, env.fx.admin.ID); !errors.Is(err, ErrNotificationKindInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestNotificationWindowExcludesOldItems(t *testing.T) {
	env := newBookingTestEnv(t)
	ctx := context.Background()
	svc := NewNotificationService(
		repository.NewBookingRepository(env.db),
		repository.NewNotificationDismissalRepository(env.db),
		NotificationOptions{Window: 24 * time.Hour},
		env.clock.Now,
	)

	expired := env.create(t, env.fx.user.ID, 0, env.fx.plumbing, 1)
	if _, err := env.booking.Cancel(ctx, expired.ID, CancelOptions{Reason: constants.CancelReasonExpired}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	env.clock.Advance(48 * time.Hour)

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, item := range items {
		if item.BookingID == expired.ID {
			t.Fatalf("item outside window listed: %+v", item)
		}
	}
}
