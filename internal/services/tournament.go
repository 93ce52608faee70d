package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/HuyNG25/pcm-backend/internal/models"
	"github.com/HuyNG25/pcm-backend/internal/notify"
)

// TournamentService handles tournament registration and administration.
// Joining mirrors booking payment: eligibility checks, an entry-fee debit and
// the participant insert all commit together or not at all.
type TournamentService struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

// NewTournamentService constructs a TournamentService.
func NewTournamentService(db *gorm.DB, notifier *notify.Notifier) *TournamentService {
	return &TournamentService{db: db, notifier: notifier}
}

// JoinInput is what a member submits to enter a tournament.
type JoinInput struct {
	MemberID     uuid.UUID
	TournamentID uuid.UUID
	TeamName     *string
	PartnerID    *uuid.UUID
}

// Join registers the member, charging the entry fee from their wallet.
// The tournament row is locked FOR UPDATE for the duration of the
// transaction, so the capacity check and the insert are race-free: two
// members fighting for the last spot serialize, and the loser sees a full
// roster. The (tournament, member) unique index backstops the duplicate check.
func (s *TournamentService) Join(ctx context.Context, in JoinInput) (*models.TournamentParticipant, error) {
	var participant *models.TournamentParticipant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tournament models.Tournament
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&tournament, "id = ?", in.TournamentID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock tournament: %w", err)
		}

		var member models.Member
		if err := tx.First(&member, "id = ? AND is_active", in.MemberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("find member: %w", err)
		}

		if !tournament.Status.AcceptsRegistrations() {
			return ErrRegistrationClosed
		}

		var registered int64
		if err := tx.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ?", tournament.ID).
			Count(&registered).Error; err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if registered >= int64(tournament.MaxParticipants) {
			return ErrTournamentFull
		}

		var duplicate int64
		if err := tx.Model(&models.TournamentParticipant{}).
			Where("tournament_id = ? AND member_id = ?", tournament.ID, in.MemberID).
			Count(&duplicate).Error; err != nil {
			return fmt.Errorf("check registration: %w", err)
		}
		if duplicate > 0 {
			return ErrAlreadyRegistered
		}

		paid := false
		if tournament.EntryFee.IsPositive() {
			description := fmt.Sprintf("Tournament entry fee: %s", tournament.Name)
			relatedID := tournament.ID.String()
			if _, err := charge(tx, in.MemberID, tournament.EntryFee, description, &relatedID); err != nil {
				return err
			}
			paid = true
		}

		participant = &models.TournamentParticipant{
			TournamentID:     tournament.ID,
			MemberID:         in.MemberID,
			TeamName:         in.TeamName,
			PartnerID:        in.PartnerID,
			PaymentCompleted: paid || tournament.EntryFee.IsZero(),
		}
		if err := tx.Create(participant).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyRegistered
			}
			return fmt.Errorf("create participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// CreateTournamentInput is the admin-facing tournament definition.
type CreateTournamentInput struct {
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	Format          models.TournamentFormat
	EntryFee        decimal.Decimal
	PrizePool       decimal.Decimal
	MaxParticipants int
	Description     *string
}

// Create opens a new tournament for registration.
func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	if in.EntryFee.IsNegative() || in.PrizePool.IsNegative() {
		return nil, ErrInvalidAmount
	}
	if in.MaxParticipants <= 0 {
		in.MaxParticipants = 32
	}

	tournament := &models.Tournament{
		Name:            in.Name,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Format:          in.Format,
		EntryFee:        in.EntryFee,
		PrizePool:       in.PrizePool,
		Status:          models.TournamentOpen,
		Description:     in.Description,
		MaxParticipants: in.MaxParticipants,
	}
	if err := s.db.WithContext(ctx).Create(tournament).Error; err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return tournament, nil
}

// RecordResultInput finalizes a match.
type RecordResultInput struct {
	MatchID     uuid.UUID
	Score1      int
	Score2      int
	Details     *string // Per-set scores, e.g. "11-9, 5-11, 11-8"
	WinningSide models.WinningSide
}

// RecordResult writes the final score of a match and marks it finished.
// A finished match cannot be re-scored.
func (s *TournamentService) RecordResult(ctx context.Context, in RecordResultInput) (*models.Match, error) {
	var match models.Match
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&match, "id = ?", in.MatchID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("lock match: %w", err)
		}
		if match.Status == models.MatchFinished {
			return ErrInvalidState
		}

		match.Score1 = in.Score1
		match.Score2 = in.Score2
		match.Details = in.Details
		match.WinningSide = in.WinningSide
		match.Status = models.MatchFinished
		if err := tx.Save(&match).Error; err != nil {
			return fmt.Errorf("record result: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &match, nil
}
