package handlers

// wallet.go — the member-facing wallet routes (balance, deposit requests,
// transaction history) and the admin routes that approve or reject pending
// deposits. Approval and rejection are the only paths that move a deposit out
// of Pending, and they go through services.WalletService so the balance, the
// ledger entry, the tier and the notification commit as one unit.

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
	"github.com/HuyNG25/pcm-backend/internal/services"
)

// TransactionResponse is the public shape of a ledger entry.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Amount      string  `json:"amount"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at"`
}

func transactionResponse(t *models.WalletTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Amount:      t.Amount.StringFixed(0),
		Type:        string(t.Type),
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
	}
	if t.ProcessedAt != nil {
		s := t.ProcessedAt.UTC().Format(time.RFC3339)
		resp.ProcessedAt = &s
	}
	return resp
}

// DepositRequest is the JSON body for POST /api/v1/wallet/deposit.
// Amount is a decimal string ("500000") to avoid float rounding in transit.
type DepositRequest struct {
	Amount        string  `json:"amount" validate:"required"`
	ProofImageURL *string `json:"proof_image_url"`
}

// GetBalance returns a handler for GET /api/v1/wallet/balance.
func GetBalance(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var member models.Member
		if err := db.First(&member, "id = ?", memberID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		return c.JSON(fiber.Map{
			"balance": member.WalletBalance.StringFixed(0),
			"tier":    string(member.Tier),
		})
	}
}

// RequestDeposit returns a handler for POST /api/v1/wallet/deposit.
// Creates a Pending deposit that an admin or treasurer later approves;
// the balance is untouched until then.
func RequestDeposit(wallet *services.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var req DepositRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a decimal number"})
		}

		transaction, err := wallet.RequestDeposit(c.Context(), memberID, amount, req.ProofImageURL)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(transactionResponse(transaction))
	}
}

// GetTransactions returns a handler for GET /api/v1/wallet/transactions.
// The caller's ledger history, newest first, paged.
func GetTransactions(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		offset, limit := pagination(c)

		var transactions []models.WalletTransaction
		err = db.Where("member_id = ?", memberID).
			Order("created_at DESC").
			Offset(offset).Limit(limit).
			Find(&transactions).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			response = append(response, transactionResponse(&transactions[i]))
		}
		return c.JSON(response)
	}
}

// GetPendingDeposits returns a handler for GET /api/v1/admin/wallet/pending.
// Admin/treasurer only: the approval queue, oldest first.
func GetPendingDeposits(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var transactions []models.WalletTransaction
		err := db.Where("type = ? AND status = ?", models.TxDeposit, models.TxPending).
			Order("created_at ASC").
			Find(&transactions).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]TransactionResponse, 0, len(transactions))
		for i := range transactions {
			response = append(response, transactionResponse(&transactions[i]))
		}
		return c.JSON(response)
	}
}

// ApproveDeposit returns a handler for PUT /api/v1/admin/wallet/:id/approve.
// Responds 409 when the deposit has already been processed — approving twice
// never credits twice.
func ApproveDeposit(wallet *services.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		approverID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		transactionID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction ID"})
		}

		decision, err := wallet.ApproveDeposit(c.Context(), transactionID, approverID)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"transaction": transactionResponse(decision.Transaction),
			"new_balance": decision.NewBalance.StringFixed(0),
			"new_tier":    string(decision.NewTier),
		})
	}
}

// RejectDeposit returns a handler for PUT /api/v1/admin/wallet/:id/reject.
func RejectDeposit(wallet *services.WalletService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		approverID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		transactionID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction ID"})
		}

		if err := wallet.RejectDeposit(c.Context(), transactionID, approverID); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "deposit rejected"})
	}
}
