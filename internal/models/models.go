// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model represents a pickleball club where:
//   - Members hold a prepaid wallet and a loyalty tier
//   - Courts are booked by the hour; bookings debit the wallet
//   - Every wallet movement is a WalletTransaction row — the ledger
//   - Tournaments charge an entry fee and track participants and matches
//
// The one invariant that shapes everything here: a member's WalletBalance is a
// cache of the ledger. The sum of that member's Completed transactions must
// equal the balance after every operation, so balance and ledger are only ever
// written together, inside one database transaction.
package models

import (
	"time"

	// uuid provides universally unique identifiers for primary keys.
	// Using UUIDs instead of auto-incrementing integers makes IDs safe to generate
	// client-side and avoids leaking record counts to end users.
	"github.com/google/uuid"
	// decimal gives us exact base-10 arithmetic for money. float64 rounding is
	// not acceptable in a ledger that must reconcile to the cent.
	"github.com/shopspring/decimal"
)

// --- Enums ---
// Go doesn't have a built-in enum keyword, so we simulate them using a named string type
// plus constants. This gives us type safety — you can't accidentally pass a
// BookingStatus where a TransactionStatus is expected — while keeping the values
// human-readable in the database.

// MemberRole represents a member's permission level across the platform.
type MemberRole string

const (
	MemberRoleAdmin     MemberRole = "admin"     // Full access: manage courts, tournaments, news, deposits
	MemberRoleTreasurer MemberRole = "treasurer" // Can approve and reject deposit requests
	MemberRoleMember    MemberRole = "member"    // Regular club member
)

// MemberTier is the loyalty classification derived from cumulative completed
// deposits (TotalSpent). It is never set directly — TierFor recomputes it
// every time TotalSpent changes.
type MemberTier string

const (
	TierStandard MemberTier = "standard"
	TierSilver   MemberTier = "silver"
	TierGold     MemberTier = "gold"
	TierDiamond  MemberTier = "diamond"
)

// Tier thresholds in VND. Inclusive lower bounds, checked highest first.
var (
	tierDiamondMin = decimal.NewFromInt(50_000_000)
	tierGoldMin    = decimal.NewFromInt(20_000_000)
	tierSilverMin  = decimal.NewFromInt(5_000_000)
)

// TierFor maps cumulative completed deposits to a loyalty tier.
// Pure function: same input, same output, no side effects — which also makes
// tier monotonic in TotalSpent, since TotalSpent only ever grows.
func TierFor(totalSpent decimal.Decimal) MemberTier {
	switch {
	case totalSpent.GreaterThanOrEqual(tierDiamondMin):
		return TierDiamond
	case totalSpent.GreaterThanOrEqual(tierGoldMin):
		return TierGold
	case totalSpent.GreaterThanOrEqual(tierSilverMin):
		return TierSilver
	default:
		return TierStandard
	}
}

// TransactionType describes why money moved.
type TransactionType string

const (
	TxDeposit  TransactionType = "deposit"  // Member tops up the wallet (bank transfer, manually approved)
	TxWithdraw TransactionType = "withdraw" // Member withdraws wallet funds
	TxPayment  TransactionType = "payment"  // Court booking or tournament entry fee (negative amount)
	TxRefund   TransactionType = "refund"   // Money returned after a cancellation (positive amount)
	TxReward   TransactionType = "reward"   // Tournament prize credit
)

// TransactionStatus is the ledger entry lifecycle. A transaction is immutable
// once it reaches a terminal status (Completed, Rejected, Failed).
type TransactionStatus string

const (
	TxPending   TransactionStatus = "pending"
	TxCompleted TransactionStatus = "completed"
	TxRejected  TransactionStatus = "rejected"
	TxFailed    TransactionStatus = "failed"
)

// txTransitions is the exhaustive transition table for TransactionStatus.
// Pending is the only non-terminal state; everything not listed is rejected.
var txTransitions = map[TransactionStatus][]TransactionStatus{
	TxPending: {TxCompleted, TxRejected, TxFailed},
}

// CanTransitionTo reports whether moving from s to target is a legal
// lifecycle step. Terminal statuses allow no transitions at all — this is the
// idempotency guard behind "a deposit can only be approved once".
func (s TransactionStatus) CanTransitionTo(target TransactionStatus) bool {
	for _, allowed := range txTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// BookingStatus is the booking lifecycle.
type BookingStatus string

const (
	BookingPendingPayment BookingStatus = "pending_payment"
	BookingConfirmed      BookingStatus = "confirmed"
	BookingCancelled      BookingStatus = "cancelled"
	BookingCompleted      BookingStatus = "completed"
	// BookingHold is a time-boxed reservation. It occupies the slot exactly
	// like a confirmed booking until HoldUntil passes and the reaper cancels it.
	BookingHold BookingStatus = "hold"
)

// bookingTransitions is the exhaustive transition table for BookingStatus.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPendingPayment: {BookingConfirmed, BookingCancelled},
	BookingHold:           {BookingConfirmed, BookingCancelled},
	BookingConfirmed:      {BookingCancelled, BookingCompleted},
}

// CanTransitionTo reports whether moving from s to target is a legal
// lifecycle step. Cancelled and Completed are terminal.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Occupying reports whether a booking in this status blocks its time slot.
// Only Confirmed and Hold bookings make a court unavailable; cancelled,
// completed and unpaid bookings do not.
func (s BookingStatus) Occupying() bool {
	return s == BookingConfirmed || s == BookingHold
}

// TournamentFormat describes how a tournament's bracket is organized.
type TournamentFormat string

const (
	FormatRoundRobin TournamentFormat = "round_robin"
	FormatKnockout   TournamentFormat = "knockout"
	FormatHybrid     TournamentFormat = "hybrid" // Group stage then knockout
)

// TournamentStatus tracks the tournament lifecycle.
// Registration is only possible while Open or Registering.
type TournamentStatus string

const (
	TournamentOpen          TournamentStatus = "open"
	TournamentRegistering   TournamentStatus = "registering"
	TournamentDrawCompleted TournamentStatus = "draw_completed"
	TournamentOngoing       TournamentStatus = "ongoing"
	TournamentFinished      TournamentStatus = "finished"
)

// AcceptsRegistrations reports whether members may still join.
func (s TournamentStatus) AcceptsRegistrations() bool {
	return s == TournamentOpen || s == TournamentRegistering
}

// MatchStatus tracks a single match.
type MatchStatus string

const (
	MatchScheduled  MatchStatus = "scheduled"
	MatchInProgress MatchStatus = "in_progress"
	MatchFinished   MatchStatus = "finished"
)

// WinningSide records which team won a finished match.
type WinningSide string

const (
	WinNone  WinningSide = "none"
	WinTeam1 WinningSide = "team1"
	WinTeam2 WinningSide = "team2"
)

// NotificationType colors a notification in the client UI.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
)

// --- Models ---
// Each struct below maps to a database table. GORM uses the struct name
// (snake_cased and pluralized) as the table name: Member -> members, etc.

// Member is a registered club member. The wallet fields are the cached side
// of the ledger: WalletBalance must always equal the sum of this member's
// Completed wallet transactions, and TotalSpent only ever grows (it is driven
// exclusively by completed deposits, and in turn drives Tier).
//
// Members are never hard-deleted; IsActive is flipped off instead so the
// ledger history stays reconcilable.
type Member struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FullName      string          `gorm:"not null"`
	Email         string          `gorm:"uniqueIndex;not null"`
	Phone         *string         // Optional; pointer means it can be NULL in the DB
	AvatarURL     *string         // Optional profile picture URL
	PasswordHash  string          `gorm:"not null"` // bcrypt hash; never serialized to JSON
	Role          MemberRole      `gorm:"type:member_role;not null;default:'member'"`
	JoinDate      time.Time       `gorm:"not null"`
	RankLevel     float64         `gorm:"not null;default:3.0"` // DUPR rating, 2.0–6.0+
	IsActive      bool            `gorm:"not null;default:true"`
	WalletBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Cache of the ledger; >= 0 after every operation
	TotalSpent    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"` // Cumulative completed deposits; monotonically non-decreasing
	Tier          MemberTier      `gorm:"type:member_tier;not null;default:'standard'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Transactions  []WalletTransaction `gorm:"foreignKey:MemberID"`
	Bookings      []Booking           `gorm:"foreignKey:MemberID"`
	Notifications []Notification      `gorm:"foreignKey:MemberID"`
}

// Court is a bookable resource. Static reference data, read-mostly — this is
// the only entity the API ever serves from cache.
type Court struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string          `gorm:"not null"` // "Court 1", "Court 2", ...
	Description  *string
	PricePerHour decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsActive     bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Bookings []Booking `gorm:"foreignKey:CourtID"`
}

// Booking is an interval [StartTime, EndTime) on one court, owned by one
// member. TotalPrice is computed once at creation (hours × PricePerHour) and
// never changes afterward. TransactionID links the booking to the ledger
// entry that paid for it.
//
// Recurring bookings form a tree: generated child bookings point at their
// parent via ParentBookingID. Children can be cancelled independently.
type Booking struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CourtID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Court         Court           `gorm:"foreignKey:CourtID"`
	MemberID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Member        Member          `gorm:"foreignKey:MemberID"`
	StartTime     time.Time       `gorm:"not null;index"`
	EndTime       time.Time       `gorm:"not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TransactionID *uuid.UUID      `gorm:"type:uuid"` // The payment ledger entry; set when the booking is confirmed
	Status        BookingStatus   `gorm:"type:booking_status;not null;default:'pending_payment';index"`

	// Recurring booking metadata
	IsRecurring     bool       `gorm:"not null;default:false"`
	RecurrenceRule  *string    // e.g. "weekly;4" — weekly for 4 occurrences
	ParentBookingID *uuid.UUID `gorm:"type:uuid"`
	ParentBooking   *Booking   `gorm:"foreignKey:ParentBookingID"`

	// Hold slot: a Hold booking occupies the slot until this instant,
	// after which the reaper cancels it.
	HoldUntil *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// WalletTransaction is one ledger entry. Amount is signed: positive credits
// the wallet (deposit, refund, reward), negative debits it (payment,
// withdrawal). Once a transaction reaches a terminal status it is never
// mutated again — corrections are new entries.
type WalletTransaction struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Member        Member            `gorm:"foreignKey:MemberID"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Type          TransactionType   `gorm:"type:transaction_type;not null"`
	Status        TransactionStatus `gorm:"type:transaction_status;not null;default:'pending';index"`
	RelatedID     *string           // ID of the booking or tournament this entry paid for
	Description   *string
	ProofImageURL *string           // Bank-transfer screenshot backing a deposit request
	CreatedAt     time.Time
	ProcessedAt   *time.Time  // When an admin approved/rejected it (or instantly, for payments)
	ProcessedBy   *uuid.UUID  `gorm:"type:uuid"` // Which admin/treasurer processed it
}

// Tournament is a capacity-bounded competition with an entry fee.
type Tournament struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string           `gorm:"not null"`
	StartDate       time.Time        `gorm:"not null"`
	EndDate         time.Time        `gorm:"not null"`
	Format          TournamentFormat `gorm:"type:tournament_format;not null;default:'knockout'"`
	EntryFee        decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	PrizePool       decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0"`
	Status          TournamentStatus `gorm:"type:tournament_status;not null;default:'open'"`
	Settings        *string          // JSON blob: group count, advancement rules, ...
	Description     *string
	ImageURL        *string
	MaxParticipants int              `gorm:"not null;default:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Participants []TournamentParticipant `gorm:"foreignKey:TournamentID"`
	Matches      []Match                 `gorm:"foreignKey:TournamentID"`
}

// TournamentParticipant is a roster row. The composite unique index
// (idx_tournament_member) is what makes "already registered" a database
// guarantee instead of just an application check.
type TournamentParticipant struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tournament_member"`
	Tournament       Tournament `gorm:"foreignKey:TournamentID"`
	MemberID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tournament_member"`
	Member           Member     `gorm:"foreignKey:MemberID"`
	TeamName         *string    // Team name for doubles
	PartnerID        *uuid.UUID `gorm:"type:uuid"` // Doubles partner
	Partner          *Member    `gorm:"foreignKey:PartnerID"`
	PaymentCompleted bool       `gorm:"not null;default:false"`
	Seed             *int       // Bracket seeding position
	RegisteredAt     time.Time  `gorm:"autoCreateTime"`
}

// Match is a single game, optionally inside a tournament. Doubles matches
// fill all four player slots; singles fill one per side.
type Match struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TournamentID *uuid.UUID  `gorm:"type:uuid;index"`
	Tournament   *Tournament `gorm:"foreignKey:TournamentID"`
	RoundName    *string     // "Group A", "Quarter Final", "Semi Final", "Final"
	Date         time.Time   `gorm:"not null"`

	Team1Player1ID *uuid.UUID `gorm:"type:uuid"`
	Team1Player1   *Member    `gorm:"foreignKey:Team1Player1ID"`
	Team1Player2ID *uuid.UUID `gorm:"type:uuid"`
	Team1Player2   *Member    `gorm:"foreignKey:Team1Player2ID"`
	Team2Player1ID *uuid.UUID `gorm:"type:uuid"`
	Team2Player1   *Member    `gorm:"foreignKey:Team2Player1ID"`
	Team2Player2ID *uuid.UUID `gorm:"type:uuid"`
	Team2Player2   *Member    `gorm:"foreignKey:Team2Player2ID"`

	Score1      int         `gorm:"not null;default:0"`
	Score2      int         `gorm:"not null;default:0"`
	Details     *string     // Per-set scores, e.g. "11-9, 5-11, 11-8"
	WinningSide WinningSide `gorm:"type:winning_side;not null;default:'none'"`
	IsRanked    bool        `gorm:"not null;default:true"` // Counts toward DUPR rating
	Status      MatchStatus `gorm:"type:match_status;not null;default:'scheduled'"`

	CourtID *uuid.UUID `gorm:"type:uuid"`
	Court   *Court     `gorm:"foreignKey:CourtID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Notification is a per-member message created by the core operations
// (deposit approved/rejected, refund issued) and read by clients.
type Notification struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MemberID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Member    Member           `gorm:"foreignKey:MemberID"`
	Message   string           `gorm:"not null"`
	Type      NotificationType `gorm:"type:notification_type;not null;default:'info'"`
	LinkURL   *string
	IsRead    bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
}

// News is a club announcement written by an admin.
type News struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string     `gorm:"not null"`
	Content   string     `gorm:"not null"`
	IsPinned  bool       `gorm:"not null;default:false"`
	ImageURL  *string
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
	Author    *Member    `gorm:"foreignKey:CreatedBy"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
