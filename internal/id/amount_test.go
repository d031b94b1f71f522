package id

import "testing"

func TestNormalizeAmountBaseUnits(t *testing.T) {
	base, decimal, err := NormalizeAmount("1000000", "", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != "1000000" {
		t.Fatalf("base = %q, want 1000000", base)
	}
	if decimal != "1" {
		t.Fatalf("decimal = %q, want 1", decimal)
	}
}

func TestNormalizeAmountDecimal(t *testing.T) {
	base, decimal, err := NormalizeAmount("", "1.5", 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != "1500000" {
		t.Fatalf("base = %q, want 1500000", base)
	}
	if decimal != "1.5" {
		t.Fatalf("decimal = %q, want 1.5", decimal)
	}
}

func TestNormalizeAmountRejectsBoth(t *testing.T) {
	if _, _, err := NormalizeAmount("1", "1", 6); err == nil {
		t.Fatal("expected error when both forms supplied")
	}
}

func TestNormalizeAmountRejectsNeither(t *testing.T) {
	if _, _, err := NormalizeAmount("", "", 6); err == nil {
		t.Fatal("expected error when no amount supplied")
	}
}

func TestNormalizeAmountRejectsExcessPrecision(t *testing.T) {
	if _, _, err := NormalizeAmount("", "1.1234567", 6); err == nil {
		t.Fatal("expected error when decimal precision exceeds token decimals")
	}
}

func TestNormalizeAmountRejectsNonInteger(t *testing.T) {
	if _, _, err := NormalizeAmount("1.5", "", 6); err == nil {
		t.Fatal("expected error for non-integer base units")
	}
}

func TestFormatDecimal(t *testing.T) {
	cases := []struct {
		base     string
		decimals int
		want     string
	}{
		{"1000000", 6, "1"},
		{"1500000", 6, "1.5"},
		{"1", 6, "0.000001"},
		{"123456789", 0, "123456789"},
		{"0", 6, "0"},
	}
	for _, tc := range cases {
		if got := FormatDecimal(tc.base, tc.decimals); got != tc.want {
			t.Fatalf("FormatDecimal(%q, %d) = %q, want %q", tc.base, tc.decimals, got, tc.want)
		}
	}
}
