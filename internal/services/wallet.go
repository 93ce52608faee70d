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

// WalletService owns every mutation of member balances. The invariant it
// protects: a member's WalletBalance always equals the sum of that member's
// Completed wallet transactions. Balance and ledger are therefore only ever
// written together, with the member row locked FOR UPDATE so concurrent
// charges serialize instead of both reading a stale balance.
type WalletService struct {
	db       *gorm.DB
	notifier *notify.Notifier
}

// NewWalletService constructs a WalletService.
func NewWalletService(db *gorm.DB, notifier *notify.Notifier) *WalletService {
	return &WalletService{db: db, notifier: notifier}
}

// DepositDecision is the result of approving a deposit: the processed ledger
// entry plus the member's new cached balance and recomputed tier.
type DepositDecision struct {
	Transaction *models.WalletTransaction
	NewBalance  decimal.Decimal
	NewTier     models.MemberTier
}

// lockMember loads a member row FOR UPDATE inside tx. Every balance mutation
// goes through this so concurrent operations on the same wallet queue up
// behind each other at the database.
func lockMember(tx *gorm.DB, memberID uuid.UUID) (*models.Member, error) {
	var member models.Member
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&member, "id = ? AND is_active", memberID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock member: %w", err)
	}
	return &member, nil
}

// RequestDeposit creates a Pending deposit transaction for the member.
// It does not touch the balance — only an approval does that.
func (s *WalletService) RequestDeposit(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal, proofImageURL *string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, "id = ? AND is_active", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}

	description := fmt.Sprintf("Deposit request of %sđ", amount.StringFixed(0))
	transaction := &models.WalletTransaction{
		MemberID:      memberID,
		Amount:        amount,
		Type:          models.TxDeposit,
		Status:        models.TxPending,
		Description:   &description,
		ProofImageURL: proofImageURL,
	}
	if err := s.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("create deposit request: %w", err)
	}
	return transaction, nil
}

// ApproveDeposit moves a pending deposit to Completed and, in the same
// transaction: credits the balance, grows TotalSpent, recomputes the tier,
// and records a notification. The Pending-status check doubles as the
// idempotency guard — approving twice fails with ErrAlreadyProcessed and
// leaves the balance untouched.
func (s *WalletService) ApproveDeposit(ctx context.Context, transactionID, approverID uuid.UUID) (*DepositDecision, error) {
	var decision *DepositDecision
	var memberID uuid.UUID
	var message string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := lockTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		if !transaction.Status.CanTransitionTo(models.TxCompleted) {
			return ErrAlreadyProcessed
		}

		member, err := lockMember(tx, transaction.MemberID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		transaction.Status = models.TxCompleted
		transaction.ProcessedAt = &now
		transaction.ProcessedBy = &approverID
		if err := tx.Save(transaction).Error; err != nil {
			return fmt.Errorf("complete transaction: %w", err)
		}

		member.WalletBalance = member.WalletBalance.Add(transaction.Amount)
		member.TotalSpent = member.TotalSpent.Add(transaction.Amount)
		member.Tier = models.TierFor(member.TotalSpent)
		if err := tx.Save(member).Error; err != nil {
			return fmt.Errorf("credit balance: %w", err)
		}

		message = fmt.Sprintf("Deposit approved: +%sđ. New balance: %sđ",
			transaction.Amount.StringFixed(0), member.WalletBalance.StringFixed(0))
		if _, err := s.notifier.Record(tx, member.ID, message, models.NotifySuccess); err != nil {
			return fmt.Errorf("record notification: %w", err)
		}

		memberID = member.ID
		decision = &DepositDecision{
			Transaction: transaction,
			NewBalance:  member.WalletBalance,
			NewTier:     member.Tier,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Push(memberID, message, models.NotifySuccess)
	return decision, nil
}

// RejectDeposit moves a pending deposit to Rejected. No balance change.
func (s *WalletService) RejectDeposit(ctx context.Context, transactionID, approverID uuid.UUID) error {
	var memberID uuid.UUID
	var message string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		transaction, err := lockTransaction(tx, transactionID)
		if err != nil {
			return err
		}
		if !transaction.Status.CanTransitionTo(models.TxRejected) {
			return ErrAlreadyProcessed
		}

		now := time.Now().UTC()
		transaction.Status = models.TxRejected
		transaction.ProcessedAt = &now
		transaction.ProcessedBy = &approverID
		if err := tx.Save(transaction).Error; err != nil {
			return fmt.Errorf("reject transaction: %w", err)
		}

		message = fmt.Sprintf("Deposit request of %sđ was rejected", transaction.Amount.StringFixed(0))
		if _, err := s.notifier.Record(tx, transaction.MemberID, message, models.NotifyWarning); err != nil {
			return fmt.Errorf("record notification: %w", err)
		}

		memberID = transaction.MemberID
		return nil
	})
	if err != nil {
		return err
	}

	s.notifier.Push(memberID, message, models.NotifyWarning)
	return nil
}

// Charge debits the member's wallet in its own transaction. Booking and
// tournament code does not call this — it calls charge directly with the
// enclosing transaction so the debit commits or rolls back with the rest of
// the operation.
func (s *WalletService) Charge(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal, description string, relatedID *string) (*models.WalletTransaction, error) {
	var transaction *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, err = charge(tx, memberID, amount, description, relatedID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// charge is the in-transaction debit. It locks the member row, checks
// sufficiency against the freshly-read balance, and writes the decrement and
// the Completed Payment ledger entry (with a negative amount) together.
func charge(tx *gorm.DB, memberID uuid.UUID, amount decimal.Decimal, description string, relatedID *string) (*models.WalletTransaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := lockMember(tx, memberID)
	if err != nil {
		return nil, err
	}
	if member.WalletBalance.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	member.WalletBalance = member.WalletBalance.Sub(amount)
	if err := tx.Save(member).Error; err != nil {
		return nil, fmt.Errorf("debit balance: %w", err)
	}

	now := time.Now().UTC()
	transaction := &models.WalletTransaction{
		MemberID:    memberID,
		Amount:      amount.Neg(),
		Type:        models.TxPayment,
		Status:      models.TxCompleted,
		RelatedID:   relatedID,
		Description: &description,
		ProcessedAt: &now,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("create payment entry: %w", err)
	}
	return transaction, nil
}

// Refund credits the member's wallet in its own transaction.
func (s *WalletService) Refund(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	var transaction *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		transaction, err = refund(tx, memberID, amount, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// refund is the in-transaction credit. A zero amount is a no-op that creates
// no ledger entry — a 0% refund bracket must not produce a zero-value row.
func refund(tx *gorm.DB, memberID uuid.UUID, amount decimal.Decimal, description string) (*models.WalletTransaction, error) {
	if amount.IsZero() {
		return nil, nil
	}
	if amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	member, err := lockMember(tx, memberID)
	if err != nil {
		return nil, err
	}

	member.WalletBalance = member.WalletBalance.Add(amount)
	if err := tx.Save(member).Error; err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}

	now := time.Now().UTC()
	transaction := &models.WalletTransaction{
		MemberID:    memberID,
		Amount:      amount,
		Type:        models.TxRefund,
		Status:      models.TxCompleted,
		Description: &description,
		ProcessedAt: &now,
	}
	if err := tx.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("create refund entry: %w", err)
	}
	return transaction, nil
}

// lockTransaction loads a wallet transaction FOR UPDATE so two admins
// approving the same deposit serialize; the loser sees a non-Pending status.
func lockTransaction(tx *gorm.DB, transactionID uuid.UUID) (*models.WalletTransaction, error) {
	var transaction models.WalletTransaction
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&transaction, "id = ?", transactionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock transaction: %w", err)
	}
	return &transaction, nil
}
