package timeutil

import (
	"testing"
	"time"
)

func TestParseDateRoundTrips(t *testing.T) {
	parsed, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if got := FormatDate(parsed); got != "2026-03-10" {
		t.Fatalf("expected formatted date to round-trip, got %s", got)
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDate("10.03.2026"); err == nil {
		t.Fatal("expected error for non-canonical layout")
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("test", -5*60*60)
	value := time.Date(2026, 3, 10, 23, 0, 0, 0, loc)
	if got := FormatDate(value); got != "2026-03-10" {
		t.Fatalf("expected formatted date, got %s", got)
	}
}
