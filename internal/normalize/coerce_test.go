package normalize

import (
	"testing"
	"time"
)

func TestCoerceNumeric(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 42.5 ", 42.5, true},
		{"-3.25", -3.25, true},
		{"$1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"(123)", -123, true},
		{"85%", 85, true},
		{"EUR 99", 99, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
	}
	for _, tc := range cases {
		got, ok := coerceNumeric(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("coerceNumeric(%q) = (%v, %v), want (%v, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestCoerceTimeLayouts(t *testing.T) {
	cases := []string{
		"2026-08-22",
		"2026-08-22T10:30:00Z",
		"2026-08-22 10:30:00",
		"08/22/2026",
		"22-Aug-2026",
		"Aug 22, 2026",
	}
	want := time.Date(2026, 8, 22, 0, 0, 0, 0, time.UTC)
	for _, raw := range cases {
		got, ok := coerceTime(raw)
		if !ok {
			t.Errorf("coerceTime(%q) failed", raw)
			continue
		}
		if got.Year() != want.Year() || got.Month() != want.Month() || got.Day() != want.Day() {
			t.Errorf("coerceTime(%q) = %v, want date %v", raw, got, want)
		}
	}
}

func TestCoerceTimeAmbiguousDatesResolveMonthFirst(t *testing.T) {
	got, ok := coerceTime("03/04/2026")
	if !ok {
		t.Fatal("parse failed")
	}
	if got.Month() != time.March || got.Day() != 4 {
		t.Errorf("03/04/2026 parsed as %v, want March 4", got)
	}
}

func TestCoerceTimeUnixTimestamp(t *testing.T) {
	got, ok := coerceTime("1755856800")
	if !ok {
		t.Fatal("unix timestamp parse failed")
	}
	if got.Year() != 2025 {
		t.Errorf("unix timestamp parsed into year %d", got.Year())
	}
}

func TestCoerceTimeUnparsable(t *testing.T) {
	for _, raw := range []string{"", "soon", "32/13/2026"} {
		if _, ok := coerceTime(raw); ok {
			t.Errorf("coerceTime(%q) should fail", raw)
		}
	}
}
