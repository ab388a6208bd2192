package repository

import (
	"testing"

	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
)

func TestReserveLoyaltyDiscount(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	user := &models.User{Email: "loyal@example.com", Status: constants.UserStatusActive, LoyaltyDiscountsAvailable: 1}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	ok, err := repo.ReserveLoyaltyDiscount(user.ID)
	if err != nil || !ok {
		t.Fatalf("first reserve should succeed, ok=%v err=%v", ok, err)
	}
	ok, err = repo.ReserveLoyaltyDiscount(user.ID)
	if err != nil || ok {
		t.Fatalf("reserve without balance should fail, ok=%v err=%v", ok, err)
	}
	if err := repo.ReleaseLoyaltyDiscount(user.ID); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	got, err := repo.GetByID(user.ID)
	if err != nil || got == nil || got.LoyaltyDiscountsAvailable != 1 {
		t.Fatalf("expected one available discount after release, got %+v err=%v", got, err)
	}
}
