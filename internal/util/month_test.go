package util

import (
	"testing"
	"time"
)

func TestNewMonthKey_ZeroPads(t *testing.T) {
	key := NewMonthKey(2024, 4)
	if key.String() != "2024-04" {
		t.Errorf("Expected 2024-04, got %s", key)
	}
}

func TestParseMonthKey_Valid(t *testing.T) {
	key, err := ParseMonthKey("2024-12")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	year, month := key.YearMonth()
	if year != 2024 || month != 12 {
		t.Errorf("Expected 2024-12, got %d-%d", year, month)
	}
}

func TestParseMonthKey_Invalid(t *testing.T) {
	for _, input := range []string{"2024", "2024-13", "24-01", "January 2024"} {
		if _, err := ParseMonthKey(input); err == nil {
			t.Errorf("Expected error for %q", input)
		}
	}
}

func TestMonthKey_Previous_YearWrap(t *testing.T) {
	if prev := NewMonthKey(2024, 1).Previous(); prev != NewMonthKey(2023, 12) {
		t.Errorf("Expected 2023-12, got %s", prev)
	}
}

func TestMonthKey_Next_YearWrap(t *testing.T) {
	if next := NewMonthKey(2024, 12).Next(); next != NewMonthKey(2025, 1) {
		t.Errorf("Expected 2025-01, got %s", next)
	}
}

func TestMonthKey_Before_MatchesChronology(t *testing.T) {
	earlier := NewMonthKey(2024, 9)
	later := NewMonthKey(2024, 10)
	if !earlier.Before(later) {
		t.Error("Expected 2024-09 < 2024-10")
	}
	if later.Before(earlier) {
		t.Error("Expected 2024-10 not before 2024-09")
	}
}

func TestMonthKey_LastDay_LeapFebruary(t *testing.T) {
	got := NewMonthKey(2024, 2).LastDay()
	want := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestMonthsBetween_Inclusive(t *testing.T) {
	months := MonthsBetween(NewMonthKey(2024, 11), NewMonthKey(2025, 2))
	want := []MonthKey{"2024-11", "2024-12", "2025-01", "2025-02"}
	if len(months) != len(want) {
		t.Fatalf("Expected %d months, got %d", len(want), len(months))
	}
	for i, m := range months {
		if m != want[i] {
			t.Errorf("Expected %s at index %d, got %s", want[i], i, m)
		}
	}
}

func TestMonthsBetween_EmptyWhenReversed(t *testing.T) {
	if months := MonthsBetween(NewMonthKey(2025, 1), NewMonthKey(2024, 1)); months != nil {
		t.Errorf("Expected nil, got %v", months)
	}
}
