package enums

import "testing"

func TestParseCourier(t *testing.T) {
	got, err := ParseCourier("  RedX ")
	if err != nil {
		t.Fatalf("parse courier: %v", err)
	}
	if got != CourierRedX {
		t.Fatalf("expected redx, got %q", got)
	}
	if _, err := ParseCourier("dhl"); err == nil {
		t.Fatal("expected unknown courier to fail")
	}
	if !DefaultCourier.IsValid() {
		t.Fatal("default courier must be valid")
	}
}

func TestParseSortOption(t *testing.T) {
	got, err := ParseSortOption("")
	if err != nil || got != SortDefault {
		t.Fatalf("expected default sort, got %q err=%v", got, err)
	}
	got, err = ParseSortOption("price-high")
	if err != nil || got != SortPriceHigh {
		t.Fatalf("expected price-high, got %q err=%v", got, err)
	}
	if _, err := ParseSortOption("random"); err == nil {
		t.Fatal("expected invalid sort option to fail")
	}
}
