// Package services implements the club's transactional core: the wallet
// ledger, the booking lifecycle, and tournament registration. Every
// multi-step mutation in this package runs inside a single database
// transaction — a failure at any step rolls the whole operation back, so a
// booking can never exist without its payment, and a balance can never drift
// from the ledger that backs it.
package services

import "errors"

// Domain errors. These are the expected, recoverable outcomes of core
// operations. Services return them directly (or wrapped with %w) so handlers
// can map them to HTTP statuses with errors.Is; anything else that comes out
// of a service is an unexpected storage failure and surfaces as a 500.
var (
	// ErrNotFound means a referenced entity (member, court, booking,
	// transaction, tournament) does not exist or is not visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState means the operation is not valid for the entity's
	// current lifecycle state, e.g. cancelling a booking that isn't confirmed.
	ErrInvalidState = errors.New("invalid state for this operation")

	// ErrSlotConflict means the requested court interval overlaps an existing
	// confirmed or held booking.
	ErrSlotConflict = errors.New("time slot already booked")

	// ErrInsufficientFunds means the member's wallet balance cannot cover the
	// charge. The charge is not applied and no ledger entry is created.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrInvalidAmount means a monetary input was zero or negative where a
	// positive amount is required.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidInterval means a requested time range is empty or inverted.
	ErrInvalidInterval = errors.New("end time must be after start time")

	// ErrAlreadyProcessed is the idempotency guard: the transaction has
	// already left the Pending state and cannot be processed again.
	ErrAlreadyProcessed = errors.New("transaction already processed")

	// ErrTournamentFull means the tournament has reached MaxParticipants.
	ErrTournamentFull = errors.New("tournament is full")

	// ErrRegistrationClosed means the tournament is not in a status that
	// accepts registrations.
	ErrRegistrationClosed = errors.New("tournament is not accepting registrations")

	// ErrAlreadyRegistered means the member already has a participant row in
	// this tournament.
	ErrAlreadyRegistered = errors.New("already registered for this tournament")
)
