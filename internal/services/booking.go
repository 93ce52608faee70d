package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HuyNG25/pcm-backend/internal/logger"
	"github.com/HuyNG25/pcm-backend/internal/models"
	"github.com/HuyNG25/pcm-backend/internal/notify"
)

// HoldWindow is how long a held slot stays reserved before the reaper
// releases it.
const HoldWindow = 5 * time.Minute

// maxRecurrences caps how many child bookings a weekly recurrence rule may
// generate in one request.
const maxRecurrences = 12

// BookingService orchestrates the booking lifecycle against the availability
// check and the wallet. Creation, cancellation and hold confirmation each run
// as one atomic transaction: no partial booking, no partial ledger entry.
type BookingService struct {
	db       *gorm.DB
	wallet   *WalletService
	notifier *notify.Notifier
}

// NewBookingService constructs a BookingService.
func NewBookingService(db *gorm.DB, wallet *WalletService, notifier *notify.Notifier) *BookingService {
	return &BookingService{db: db, wallet: wallet, notifier: notifier}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Open intervals: back-to-back bookings, where one ends exactly when the
// other starts, do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// RefundFraction returns the refunded share of a booking's price given how
// many hours remain until it starts. The boundaries are strictly
// greater-than: exactly 24h falls into the 50% bracket and exactly 1h into
// the 0% bracket.
func RefundFraction(hoursUntilStart float64) decimal.Decimal {
	switch {
	case hoursUntilStart > 24:
		return decimal.NewFromInt(1)
	case hoursUntilStart > 1:
		return decimal.NewFromFloat(0.5)
	default:
		return decimal.Zero
	}
}

// PriceFor computes hours(start, end) × pricePerHour.
func PriceFor(start, end time.Time, pricePerHour decimal.Decimal) decimal.Decimal {
	hours := decimal.NewFromFloat(end.Sub(start).Hours())
	return pricePerHour.Mul(hours)
}

// IsAvailable reports whether the court is free for [start, end). This is the
// read-only check callers use to render availability; it takes no locks. The
// authoritative check happens again inside the creation transaction, because
// an answer given outside the transaction can be stale by the time the
// booking is inserted.
func (s *BookingService) IsAvailable(ctx context.Context, courtID uuid.UUID, start, end time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("court_id = ? AND status IN ?", courtID, occupyingStatuses()).
		Where("start_time < ? AND end_time > ?", end, start).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	return count == 0, nil
}

func occupyingStatuses() []models.BookingStatus {
	return []models.BookingStatus{models.BookingConfirmed, models.BookingHold}
}

// guardSlot locks any occupying booking that would overlap [start, end) on
// the court and returns ErrSlotConflict if one exists. Locking the candidate
// rows FOR UPDATE means two concurrent requests for the same slot serialize:
// the second blocks until the first commits, then sees its booking and fails.
// A brand-new conflicting insert that this query cannot see yet is caught by
// the bookings_no_overlap exclusion constraint at commit.
func guardSlot(tx *gorm.DB, courtID uuid.UUID, start, end time.Time) error {
	var existing models.Booking
	err := tx.Model(&models.Booking{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("court_id = ? AND status IN ?", courtID, occupyingStatuses()).
		Where("start_time < ? AND end_time > ?", end, start).
		Take(&existing).Error
	if err == nil {
		return ErrSlotConflict
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("lock overlap candidates: %w", err)
	}
	return nil
}

// isExclusionViolation recognizes the Postgres exclusion-constraint error
// raised when two transactions insert overlapping bookings concurrently.
func isExclusionViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "bookings_no_overlap")
}

// CreateBookingInput is what a member submits to book a court.
type CreateBookingInput struct {
	MemberID       uuid.UUID
	CourtID        uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	IsRecurring    bool
	RecurrenceRule *string // e.g. "weekly;4"
}

// CreateBooking books [start, end) on a court, paying from the member's
// wallet. Inside one transaction it: validates member and court, locks and
// checks the slot, computes the price, debits the wallet, and inserts the
// Confirmed booking linked to its payment entry. For a recurring rule, every
// occurrence is checked and charged the same way — any conflict or shortfall
// rolls back all of them.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, ErrInvalidInterval
	}

	intervals := [][2]time.Time{{in.StartTime, in.EndTime}}
	if in.IsRecurring && in.RecurrenceRule != nil {
		expanded, err := ExpandRecurrence(in.StartTime, in.EndTime, *in.RecurrenceRule)
		if err != nil {
			return nil, err
		}
		intervals = expanded
	}

	var parent *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.Member
		if err := tx.First(&member, "id = ? AND is_active", in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find member: %w", err)
		}

		var court models.Court
		if err := tx.First(&court, "id = ? AND is_active", in.CourtID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find court: %w", err)
		}

		for _, interval := range intervals {
			booking, err := s.createOne(tx, &member, &court, interval[0], interval[1], parent, in.RecurrenceRule)
			if err != nil {
				return err
			}
			if parent == nil {
				parent = booking
			}
		}
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"bookingID": parent.ID,
		"courtID":   in.CourtID,
		"memberID":  in.MemberID,
	}).Info("booking confirmed")
	return parent, nil
}

// createOne inserts a single confirmed, paid occurrence inside tx.
func (s *BookingService) createOne(tx *gorm.DB, member *models.Member, court *models.Court, start, end time.Time, parent *models.Booking, rule *string) (*models.Booking, error) {
	if err := guardSlot(tx, court.ID, start, end); err != nil {
		return nil, err
	}

	price := PriceFor(start, end, court.PricePerHour)

	booking := &models.Booking{
		CourtID:    court.ID,
		MemberID:   member.ID,
		StartTime:  start,
		EndTime:    end,
		TotalPrice: price,
		Status:     models.BookingConfirmed,
	}
	if parent != nil {
		booking.ParentBookingID = &parent.ID
	} else if rule != nil {
		booking.IsRecurring = true
		booking.RecurrenceRule = rule
	}
	if err := tx.Create(booking).Error; err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	description := fmt.Sprintf("Court booking %s: %s - %s",
		court.Name, start.Format("02/01/2006 15:04"), end.Format("15:04"))
	relatedID := booking.ID.String()
	transaction, err := charge(tx, member.ID, price, description, &relatedID)
	if err != nil {
		return nil, err
	}

	booking.TransactionID = &transaction.ID
	if err := tx.Model(booking).Update("transaction_id", transaction.ID).Error; err != nil {
		return nil, fmt.Errorf("link payment: %w", err)
	}
	return booking, nil
}

// HoldSlot reserves [start, end) without charging. The hold occupies the slot
// like a confirmed booking until HoldUntil passes; the reaper then releases
// it. Confirming the hold (ConfirmHold) performs the actual payment.
func (s *BookingService) HoldSlot(ctx context.Context, memberID, courtID uuid.UUID, start, end time.Time) (*models.Booking, error) {
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var court models.Court
		if err := tx.First(&court, "id = ? AND is_active", courtID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find court: %w", err)
		}
		var member models.Member
		if err := tx.First(&member, "id = ? AND is_active", memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find member: %w", err)
		}

		if err := guardSlot(tx, courtID, start, end); err != nil {
			return err
		}

		holdUntil := time.Now().UTC().Add(HoldWindow)
		booking = &models.Booking{
			CourtID:    courtID,
			MemberID:   memberID,
			StartTime:  start,
			EndTime:    end,
			TotalPrice: PriceFor(start, end, court.PricePerHour),
			Status:     models.BookingHold,
			HoldUntil:  &holdUntil,
		}
		if err := tx.Create(booking).Error; err != nil {
			if isExclusionViolation(err) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create hold: %w", err)
		}
		return nil
	})
	if err != nil {
		if isExclusionViolation(err) {
			return nil, ErrSlotConflict
		}
		return nil, err
	}
	return booking, nil
}

// ConfirmHold pays for a held slot and promotes it to Confirmed. Fails with
// ErrInvalidState if the hold has lapsed or the booking isn't a hold.
func (s *BookingService) ConfirmHold(ctx context.Context, bookingID, memberID uuid.UUID) (*models.Booking, error) {
	var booking *models.Booking
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := lockBooking(tx, bookingID, memberID)
		if err != nil {
			return err
		}
		if b.Status != models.BookingHold || !b.Status.CanTransitionTo(models.BookingConfirmed) {
			return ErrInvalidState
		}
		if b.HoldUntil != nil && b.HoldUntil.Before(time.Now().UTC()) {
			return ErrInvalidState
		}

		var court models.Court
		if err := tx.First(&court, "id = ?", b.CourtID).Error; err != nil {
			return fmt.Errorf("find court: %w", err)
		}

		description := fmt.Sprintf("Court booking %s: %s - %s",
			court.Name, b.StartTime.Format("02/01/2006 15:04"), b.EndTime.Format("15:04"))
		relatedID := b.ID.String()
		transaction, err := charge(tx, memberID, b.TotalPrice, description, &relatedID)
		if err != nil {
			return err
		}

		b.Status = models.BookingConfirmed
		b.TransactionID = &transaction.ID
		b.HoldUntil = nil
		if err := tx.Save(b).Error; err != nil {
			return fmt.Errorf("confirm hold: %w", err)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CancelResult reports what a cancellation refunded.
type CancelResult struct {
	RefundAmount  decimal.Decimal
	RefundPercent decimal.Decimal // 1, 0.5 or 0
}

// CancelBooking cancels a member's confirmed booking and refunds according to
// the time-based policy: more than 24 hours before start refunds everything,
// more than 1 hour refunds half, anything later refunds nothing. Status
// change, refund and notification commit together.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, memberID uuid.UUID) (*CancelResult, error) {
	var result *CancelResult
	var message string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID, memberID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingConfirmed {
			return ErrInvalidState
		}

		hoursUntil := time.Until(booking.StartTime).Hours()
		fraction := RefundFraction(hoursUntil)
		refundAmount := booking.TotalPrice.Mul(fraction)

		booking.Status = models.BookingCancelled
		if err := tx.Save(booking).Error; err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		if refundAmount.IsPositive() {
			description := fmt.Sprintf("Refund for cancelled booking: %s%% of %sđ",
				fraction.Mul(decimal.NewFromInt(100)).StringFixed(0), booking.TotalPrice.StringFixed(0))
			if _, err := refund(tx, memberID, refundAmount, description); err != nil {
				return err
			}

			message = fmt.Sprintf("Booking cancelled. Refunded %sđ", refundAmount.StringFixed(0))
			if _, err := s.notifier.Record(tx, memberID, message, models.NotifyInfo); err != nil {
				return fmt.Errorf("record notification: %w", err)
			}
		}

		result = &CancelResult{RefundAmount: refundAmount, RefundPercent: fraction}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if message != "" {
		s.notifier.Push(memberID, message, models.NotifyInfo)
	}
	return result, nil
}

// lockBooking loads the member's booking FOR UPDATE. A booking owned by
// someone else is reported as not found, not as forbidden — callers learn
// nothing about other members' bookings.
func lockBooking(tx *gorm.DB, bookingID, memberID uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "id = ? AND member_id = ?", bookingID, memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return &booking, nil
}

// ExpireHolds releases every hold whose window has lapsed. Returns how many
// were released.
func (s *BookingService) ExpireHolds(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND hold_until < ?", models.BookingHold, time.Now().UTC()).
		Update("status", models.BookingCancelled)
	if res.Error != nil {
		return 0, fmt.Errorf("expire holds: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RunHoldReaper sweeps expired holds every interval until ctx is cancelled.
// Run it in a goroutine from main.
func (s *BookingService) RunHoldReaper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			released, err := s.ExpireHolds(ctx)
			if err != nil {
				logger.Errorf("hold reaper: %v", err)
				continue
			}
			if released > 0 {
				logger.Infof("hold reaper released %d expired hold(s)", released)
			}
		}
	}
}

// ExpandRecurrence turns a weekly rule into the list of [start, end)
// intervals it covers, the first being the requested interval itself.
// Rule format: "weekly;<count>" with 1 <= count <= maxRecurrences.
func ExpandRecurrence(start, end time.Time, rule string) ([][2]time.Time, error) {
	parts := strings.SplitN(rule, ";", 2)
	if len(parts) != 2 || parts[0] != "weekly" {
		return nil, fmt.Errorf("unsupported recurrence rule %q", rule)
	}
	count, err := strconv.Atoi(parts[1])
	if err != nil || count < 1 || count > maxRecurrences {
		return nil, fmt.Errorf("recurrence count must be between 1 and %d", maxRecurrences)
	}

	intervals := make([][2]time.Time, 0, count)
	for i := 0; i < count; i++ {
		offset := time.Duration(i) * 7 * 24 * time.Hour
		intervals = append(intervals, [2]time.Time{start.Add(offset), end.Add(offset)})
	}
	return intervals, nil
}

// CalendarSlot is one hour on one court in the public calendar grid.
type CalendarSlot struct {
	CourtID    uuid.UUID  `json:"court_id"`
	CourtName  string     `json:"court_name"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    time.Time  `json:"end_time"`
	Booked     bool       `json:"booked"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	MemberName *string    `json:"member_name,omitempty"`
	IsHold     bool       `json:"is_hold"`
}

// Calendar renders the hourly grid (opening hours 06:00–22:00) for every
// active court between from and to, marking slots covered by a confirmed or
// held booking.
func (s *BookingService) Calendar(ctx context.Context, from, to time.Time, courtID *uuid.UUID) ([]CalendarSlot, error) {
	query := s.db.WithContext(ctx).
		Preload("Member").
		Where("start_time >= ? AND end_time <= ?", from, to).
		Where("status IN ?", occupyingStatuses())
	if courtID != nil {
		query = query.Where("court_id = ?", *courtID)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	var courts []models.Court
	courtQuery := s.db.WithContext(ctx).Where("is_active")
	if courtID != nil {
		courtQuery = courtQuery.Where("id = ?", *courtID)
	}
	if err := courtQuery.Find(&courts).Error; err != nil {
		return nil, fmt.Errorf("load courts: %w", err)
	}

	var slots []CalendarSlot
	for _, court := range courts {
		day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
		for !day.After(to) {
			for hour := 6; hour < 22; hour++ {
				slotStart := day.Add(time.Duration(hour) * time.Hour)
				slotEnd := slotStart.Add(time.Hour)

				slot := CalendarSlot{
					CourtID:   court.ID,
					CourtName: court.Name,
					StartTime: slotStart,
					EndTime:   slotEnd,
				}
				for i := range bookings {
					b := &bookings[i]
					if b.CourtID == court.ID && Overlaps(b.StartTime, b.EndTime, slotStart, slotEnd) {
						slot.Booked = true
						slot.BookingID = &b.ID
						slot.MemberName = &b.Member.FullName
						slot.IsHold = b.Status == models.BookingHold
						break
					}
				}
				slots = append(slots, slot)
			}
			day = day.AddDate(0, 0, 1)
		}
	}
	return slots, nil
}
