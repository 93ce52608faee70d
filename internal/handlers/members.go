package handlers

// members.go — the member directory, public profiles, profile updates, and
// the per-member dashboard (wallet balance, upcoming bookings, recent
// matches, unread notifications).

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

// UpdateMemberRequest is the JSON body for PUT /api/v1/members/profile.
// All fields optional; only provided fields are changed.
type UpdateMemberRequest struct {
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
}

// DashboardResponse aggregates what the home screen shows.
type DashboardResponse struct {
	WalletBalance       string            `json:"wallet_balance"`
	Tier                string            `json:"tier"`
	UpcomingBookings    []BookingResponse `json:"upcoming_bookings"`
	RecentMatches       []MatchResponse   `json:"recent_matches"`
	UnreadNotifications int64             `json:"unread_notifications"`
	ActiveTournaments   int64             `json:"active_tournaments"`
}

// GetMembers returns a handler for GET /api/v1/members.
// Directory of active members, ranked by DUPR rating, paged.
// Optional query params: ?search= matches name or phone, ?tier= filters.
func GetMembers(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pagination(c)

		query := db.Where("is_active")
		if search := c.Query("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.Where("full_name ILIKE ? OR phone LIKE ?", pattern, pattern)
		}
		if tier := c.Query("tier"); tier != "" {
			query = query.Where("tier = ?", tier)
		}

		var members []models.Member
		err := query.Order("rank_level DESC").Offset(offset).Limit(limit).Find(&members).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]MemberResponse, 0, len(members))
		for i := range members {
			response = append(response, memberResponse(&members[i]))
		}
		return c.JSON(response)
	}
}

// GetProfile returns a handler for GET /api/v1/members/:id/profile.
func GetProfile(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var member models.Member
		if err := db.First(&member, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}
		return c.JSON(memberResponse(&member))
	}
}

// UpdateProfile returns a handler for PUT /api/v1/members/profile.
// Members can only update their own profile.
func UpdateProfile(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var req UpdateMemberRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		var member models.Member
		if err := db.First(&member, "id = ?", memberID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		if req.FullName != nil && *req.FullName != "" {
			member.FullName = *req.FullName
		}
		if req.Phone != nil {
			member.Phone = req.Phone
		}
		if req.AvatarURL != nil {
			member.AvatarURL = req.AvatarURL
		}
		if err := db.Save(&member).Error; err != nil {
			return respondError(c, err)
		}
		return c.JSON(memberResponse(&member))
	}
}

// GetDashboard returns a handler for GET /api/v1/members/dashboard.
func GetDashboard(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var member models.Member
		if err := db.First(&member, "id = ?", memberID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		now := time.Now().UTC()

		var upcoming []models.Booking
		if err := db.Preload("Court").Preload("Member").
			Where("member_id = ? AND start_time > ? AND status = ?", memberID, now, models.BookingConfirmed).
			Order("start_time ASC").Limit(5).
			Find(&upcoming).Error; err != nil {
			return respondError(c, err)
		}

		var recentMatches []models.Match
		if err := db.Preload("Team1Player1").Preload("Team1Player2").
			Preload("Team2Player1").Preload("Team2Player2").Preload("Court").
			Where("team1_player1_id = ? OR team1_player2_id = ? OR team2_player1_id = ? OR team2_player2_id = ?",
				memberID, memberID, memberID, memberID).
			Order("date DESC").Limit(5).
			Find(&recentMatches).Error; err != nil {
			return respondError(c, err)
		}

		var unread int64
		if err := db.Model(&models.Notification{}).
			Where("member_id = ? AND NOT is_read", memberID).
			Count(&unread).Error; err != nil {
			return respondError(c, err)
		}

		var activeTournaments int64
		if err := db.Model(&models.Tournament{}).
			Where("status IN ?", []models.TournamentStatus{
				models.TournamentOpen, models.TournamentRegistering, models.TournamentOngoing,
			}).
			Count(&activeTournaments).Error; err != nil {
			return respondError(c, err)
		}

		bookings := make([]BookingResponse, 0, len(upcoming))
		for i := range upcoming {
			bookings = append(bookings, bookingResponse(&upcoming[i]))
		}
		matches := make([]MatchResponse, 0, len(recentMatches))
		for i := range recentMatches {
			matches = append(matches, matchResponse(&recentMatches[i]))
		}

		return c.JSON(DashboardResponse{
			WalletBalance:       member.WalletBalance.StringFixed(0),
			Tier:                string(member.Tier),
			UpcomingBookings:    bookings,
			RecentMatches:       matches,
			UnreadNotifications: unread,
			ActiveTournaments:   activeTournaments,
		})
	}
}
