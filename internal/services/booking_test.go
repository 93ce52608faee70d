package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRefundFraction(t *testing.T) {
	tests := []struct {
		name       string
		hoursUntil float64
		want       string
	}{
		{"two days before", 48, "1"},
		{"just over 24h", 24.01, "1"},
		{"exactly 24h", 24, "0.5"},
		{"afternoon before", 12, "0.5"},
		{"just over 1h", 1.01, "0.5"},
		{"exactly 1h", 1, "0"},
		{"half hour before", 0.5, "0"},
		{"already started", -2, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RefundFraction(tt.hoursUntil)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("RefundFraction(%v) = %s, want %s", tt.hoursUntil, got, want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd time.Time
		want                       bool
	}{
		{"identical", at(0), at(2), at(0), at(2), true},
		{"partial overlap", at(0), at(2), at(1), at(3), true},
		{"contained", at(0), at(4), at(1), at(2), true},
		{"back to back", at(0), at(2), at(2), at(4), false},
		{"back to back reversed", at(2), at(4), at(0), at(2), false},
		{"disjoint", at(0), at(1), at(3), at(4), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriceFor(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	rate := decimal.NewFromInt(120000)

	tests := []struct {
		name  string
		hours float64
		want  string
	}{
		{"one hour", 1, "120000"},
		{"ninety minutes", 1.5, "180000"},
		{"two hours", 2, "240000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			end := start.Add(time.Duration(tt.hours * float64(time.Hour)))
			got := PriceFor(start, end, rate)
			want := decimal.RequireFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("PriceFor(%v h) = %s, want %s", tt.hours, got, want)
			}
		})
	}
}

func TestExpandRecurrence(t *testing.T) {
	start := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) // A Monday evening
	end := start.Add(2 * time.Hour)

	t.Run("weekly four times", func(t *testing.T) {
		intervals, err := ExpandRecurrence(start, end, "weekly;4")
		if err != nil {
			t.Fatalf("ExpandRecurrence: %v", err)
		}
		if len(intervals) != 4 {
			t.Fatalf("got %d intervals, want 4", len(intervals))
		}
		if !intervals[0][0].Equal(start) {
			t.Errorf("first occurrence starts at %v, want %v", intervals[0][0], start)
		}
		for i := 1; i < len(intervals); i++ {
			gap := intervals[i][0].Sub(intervals[i-1][0])
			if gap != 7*24*time.Hour {
				t.Errorf("gap between occurrence %d and %d is %v, want 168h", i-1, i, gap)
			}
		}
	})

	t.Run("invalid rules", func(t *testing.T) {
		for _, rule := range []string{"daily;4", "weekly", "weekly;0", "weekly;13", "weekly;x"} {
			if _, err := ExpandRecurrence(start, end, rule); err == nil {
				t.Errorf("ExpandRecurrence(%q) succeeded, want error", rule)
			}
		}
	})
}

func TestIsExclusionViolation(t *testing.T) {
	if isExclusionViolation(nil) {
		t.Error("nil error reported as exclusion violation")
	}
	err := errString(`ERROR: conflicting key value violates exclusion constraint "bookings_no_overlap" (SQLSTATE 23P01)`)
	if !isExclusionViolation(err) {
		t.Error("constraint error not recognized")
	}
}

type errString string

func (e errString) Error() string { return string(e) }
