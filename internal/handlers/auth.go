package handlers

// auth.go — registration, login, and the current-member endpoint.
// Passwords are stored as bcrypt hashes; successful authentication issues an
// HS256 session token carrying the member's ID and role.

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/config"
	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

// RegisterRequest is the JSON body for POST /api/v1/auth/register.
type RegisterRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Phone    *string `json:"phone"`
}

// LoginRequest is the JSON body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the session token plus the member it belongs to.
type AuthResponse struct {
	Token  string         `json:"token"`
	Member MemberResponse `json:"member"`
}

// MemberResponse is the public shape of a member. The password hash never
// appears here.
type MemberResponse struct {
	ID            string  `json:"id"`
	FullName      string  `json:"full_name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	AvatarURL     *string `json:"avatar_url"`
	Role          string  `json:"role"`
	JoinDate      string  `json:"join_date"`
	RankLevel     float64 `json:"rank_level"`
	WalletBalance string  `json:"wallet_balance"`
	TotalSpent    string  `json:"total_spent"`
	Tier          string  `json:"tier"`
}

func memberResponse(m *models.Member) MemberResponse {
	return MemberResponse{
		ID:            m.ID.String(),
		FullName:      m.FullName,
		Email:         m.Email,
		Phone:         m.Phone,
		AvatarURL:     m.AvatarURL,
		Role:          string(m.Role),
		JoinDate:      m.JoinDate.UTC().Format(time.RFC3339),
		RankLevel:     m.RankLevel,
		WalletBalance: m.WalletBalance.StringFixed(0),
		TotalSpent:    m.TotalSpent.StringFixed(0),
		Tier:          string(m.Tier),
	}
}

// Register returns a handler for POST /api/v1/auth/register.
// Creates the member profile with a zeroed wallet and issues a session token.
func Register(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req RegisterRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to hash password",
			})
		}

		member := models.Member{
			FullName:     req.FullName,
			Email:        req.Email,
			Phone:        req.Phone,
			PasswordHash: string(hash),
			Role:         models.MemberRoleMember,
			JoinDate:     time.Now().UTC(),
			Tier:         models.TierStandard,
		}
		if err := db.Create(&member).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "email already registered",
				})
			}
			return respondError(c, err)
		}

		token, err := middleware.IssueToken(cfg, &member)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(AuthResponse{Token: token, Member: memberResponse(&member)})
	}
}

// Login returns a handler for POST /api/v1/auth/login.
// The same generic message covers both an unknown email and a wrong
// password, so the endpoint can't be used to probe which emails exist.
func Login(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		var member models.Member
		if err := db.First(&member, "email = ? AND is_active", req.Email).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid email or password",
			})
		}

		if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(req.Password)) != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid email or password",
			})
		}

		token, err := middleware.IssueToken(cfg, &member)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(AuthResponse{Token: token, Member: memberResponse(&member)})
	}
}

// Me returns a handler for GET /api/v1/auth/me — the authenticated member's
// current profile, wallet balance included.
func Me(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var member models.Member
		if err := db.First(&member, "id = ?", memberID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		return c.JSON(memberResponse(&member))
	}
}
