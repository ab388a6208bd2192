package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyCentsRoundTrip(t *testing.T) {
	m := NewMoneyFromCents(160000)
	if m.String() != "1600.00" {
		t.Fatalf("string want 1600.00 got %s", m.String())
	}
	if m.Cents() != 160000 {
		t.Fatalf("cents want 160000 got %d", m.Cents())
	}
	if NewMoneyFromDecimal(decimal.RequireFromString("12.345")).Cents() != 1235 {
		t.Fatalf("expected half-up rounding to 1235 cents")
	}
}

func TestMoneyJSON(t *testing.T) {
	body, err := json.Marshal(NewMoneyFromCents(2500))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(body) != `"25.00"` {
		t.Fatalf("json want \"25.00\" got %s", string(body))
	}

	var fromString Money
	if err := json.Unmarshal([]byte(`"450.5"`), &fromString); err != nil {
		t.Fatalf("unmarshal string failed: %v", err)
	}
	if fromString.Cents() != 45050 {
		t.Fatalf("cents want 45050 got %d", fromString.Cents())
	}

	var fromNumber Money
	if err := json.Unmarshal([]byte(`99.99`), &fromNumber); err != nil {
		t.Fatalf("unmarshal number failed: %v", err)
	}
	if fromNumber.Cents() != 9999 {
		t.Fatalf("cents want 9999 got %d", fromNumber.Cents())
	}

	var invalid Money
	if err := json.Unmarshal([]byte(`true`), &invalid); err == nil {
		t.Fatalf("expected error for boolean money value")
	}
}

func TestBookingEffectiveAmountAndFiles(t *testing.T) {
	artwork := "/uploads/booking/a.png"
	empty := ""
	b := &Booking{Amount: NewMoneyFromCents(60000), ArtworkPath: &artwork, LogoPath: &empty}
	if b.EffectiveAmount().Cents() != 60000 {
		t.Fatalf("effective amount should fall back to quoted amount")
	}
	b.PriceOverride = NewMoneyFromCents(45000).Ptr()
	if b.EffectiveAmount().Cents() != 45000 {
		t.Fatalf("override should win, got %s", b.EffectiveAmount().String())
	}
	paths := b.FilePaths()
	if len(paths) != 1 || paths[0] != artwork {
		t.Fatalf("unexpected file paths: %+v", paths)
	}
}
