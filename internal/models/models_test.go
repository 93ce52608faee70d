package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierFor(t *testing.T) {
	tests := []struct {
		name       string
		totalSpent int64
		want       MemberTier
	}{
		{"zero", 0, TierStandard},
		{"below silver", 4_999_999, TierStandard},
		{"exactly silver", 5_000_000, TierSilver},
		{"below gold", 19_999_999, TierSilver},
		{"exactly gold", 20_000_000, TierGold},
		{"below diamond", 49_999_999, TierGold},
		{"exactly diamond", 50_000_000, TierDiamond},
		{"well above diamond", 120_000_000, TierDiamond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TierFor(decimal.NewFromInt(tt.totalSpent))
			if got != tt.want {
				t.Errorf("TierFor(%d) = %s, want %s", tt.totalSpent, got, tt.want)
			}
		})
	}
}

func TestTransactionStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TxPending, TxCompleted, true},
		{TxPending, TxRejected, true},
		{TxPending, TxFailed, true},
		{TxCompleted, TxRejected, false},
		{TxCompleted, TxCompleted, false},
		{TxRejected, TxCompleted, false},
		{TxFailed, TxPending, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingPendingPayment, BookingConfirmed, true},
		{BookingPendingPayment, BookingCancelled, true},
		{BookingHold, BookingConfirmed, true},
		{BookingHold, BookingCancelled, true},
		{BookingConfirmed, BookingCancelled, true},
		{BookingConfirmed, BookingCompleted, true},
		{BookingCancelled, BookingConfirmed, false},
		{BookingCompleted, BookingCancelled, false},
		{BookingHold, BookingCompleted, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBookingStatusOccupying(t *testing.T) {
	occupying := []BookingStatus{BookingConfirmed, BookingHold}
	for _, s := range occupying {
		if !s.Occupying() {
			t.Errorf("%s should occupy its slot", s)
		}
	}
	free := []BookingStatus{BookingPendingPayment, BookingCancelled, BookingCompleted}
	for _, s := range free {
		if s.Occupying() {
			t.Errorf("%s should not occupy its slot", s)
		}
	}
}

func TestTournamentAcceptsRegistrations(t *testing.T) {
	open := []TournamentStatus{TournamentOpen, TournamentRegistering}
	for _, s := range open {
		if !s.AcceptsRegistrations() {
			t.Errorf("%s should accept registrations", s)
		}
	}
	closed := []TournamentStatus{TournamentDrawCompleted, TournamentOngoing, TournamentFinished}
	for _, s := range closed {
		if s.AcceptsRegistrations() {
			t.Errorf("%s should not accept registrations", s)
		}
	}
}
