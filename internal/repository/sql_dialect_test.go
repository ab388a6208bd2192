package repository

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "gorm translated", err: fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), want: true},
		{name: "sqlite", err: errors.New("constraint failed: UNIQUE constraint failed: bookings.campaign_id (2067)"), want: true},
		{name: "postgres", err: errors.New(`ERROR: duplicate key value violates unique constraint "uniq_bookings_active_paid_cell" (SQLSTATE 23505)`), want: true},
		{name: "other", err: errors.New("connection refused"), want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err); got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestFlooredDecrementExpr(t *testing.T) {
	expr := flooredDecrementExpr("booked_slots", 2)
	want := "CASE WHEN booked_slots > ? THEN booked_slots - ? ELSE 0 END"
	if expr.SQL != want {
		t.Fatalf("sql want %s got %s", want, expr.SQL)
	}
	if len(expr.Vars) != 2 {
		t.Fatalf("vars want 2 got %d", len(expr.Vars))
	}
}
