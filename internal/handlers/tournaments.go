package handlers

// tournaments.go — listing tournaments, joining them (which charges the entry
// fee through the wallet), the participant roster, match schedules, and the
// admin routes for creating tournaments and recording results.

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

// TournamentResponse is the public shape of a tournament.
type TournamentResponse struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	Format           string  `json:"format"`
	EntryFee         string  `json:"entry_fee"`
	PrizePool        string  `json:"prize_pool"`
	Status           string  `json:"status"`
	MaxParticipants  int     `json:"max_participants"`
	ParticipantCount int     `json:"participant_count"`
	Description      *string `json:"description"`
	ImageURL         *string `json:"image_url"`
}

func tournamentResponse(t *models.Tournament, participantCount int) TournamentResponse {
	return TournamentResponse{
		ID:               t.ID.String(),
		Name:             t.Name,
		StartDate:        t.StartDate.UTC().Format(time.RFC3339),
		EndDate:          t.EndDate.UTC().Format(time.RFC3339),
		Format:           string(t.Format),
		EntryFee:         t.EntryFee.StringFixed(0),
		PrizePool:        t.PrizePool.StringFixed(0),
		Status:           string(t.Status),
		MaxParticipants:  t.MaxParticipants,
		ParticipantCount: participantCount,
		Description:      t.Description,
		ImageURL:         t.ImageURL,
	}
}

// ParticipantResponse is one roster row.
type ParticipantResponse struct {
	ID               string  `json:"id"`
	MemberID         string  `json:"member_id"`
	MemberName       string  `json:"member_name"`
	TeamName         *string `json:"team_name"`
	PaymentCompleted bool    `json:"payment_completed"`
	Seed             *int    `json:"seed"`
	RegisteredAt     string  `json:"registered_at"`
}

// MatchResponse is the public shape of a match.
type MatchResponse struct {
	ID          string  `json:"id"`
	RoundName   *string `json:"round_name"`
	Date        string  `json:"date"`
	Team1       string  `json:"team1"`
	Team2       string  `json:"team2"`
	Score1      int     `json:"score1"`
	Score2      int     `json:"score2"`
	Details     *string `json:"details"`
	WinningSide string  `json:"winning_side"`
	Status      string  `json:"status"`
	CourtName   *string `json:"court_name"`
}

// JoinTournamentRequest is the JSON body for POST /api/v1/tournaments/:id/join.
type JoinTournamentRequest struct {
	TeamName  *string `json:"team_name"`
	PartnerID *string `json:"partner_id"`
}

// CreateTournamentRequest is the admin JSON body for POST /api/v1/admin/tournaments.
type CreateTournamentRequest struct {
	Name            string  `json:"name" validate:"required"`
	StartDate       string  `json:"start_date" validate:"required"`
	EndDate         string  `json:"end_date" validate:"required"`
	Format          string  `json:"format" validate:"required,oneof=round_robin knockout hybrid"`
	EntryFee        string  `json:"entry_fee" validate:"required"`
	PrizePool       string  `json:"prize_pool"`
	MaxParticipants int     `json:"max_participants"`
	Description     *string `json:"description"`
}

// RecordResultRequest is the admin JSON body for PUT /api/v1/admin/matches/:id/result.
type RecordResultRequest struct {
	Score1      int     `json:"score1" validate:"min=0"`
	Score2      int     `json:"score2" validate:"min=0"`
	Details     *string `json:"details"`
	WinningSide string  `json:"winning_side" validate:"required,oneof=team1 team2 none"`
}

// GetTournaments returns a handler for GET /api/v1/tournaments.
// Public. Optional query param: ?status=open|registering|ongoing|finished.
func GetTournaments(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := db.Preload("Participants")
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var tournaments []models.Tournament
		if err := query.Order("start_date DESC").Find(&tournaments).Error; err != nil {
			return respondError(c, err)
		}

		response := make([]TournamentResponse, 0, len(tournaments))
		for i := range tournaments {
			response = append(response, tournamentResponse(&tournaments[i], len(tournaments[i].Participants)))
		}
		return c.JSON(response)
	}
}

// GetTournament returns a handler for GET /api/v1/tournaments/:id.
func GetTournament(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tournament ID"})
		}

		var tournament models.Tournament
		if err := db.Preload("Participants").First(&tournament, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "tournament not found"})
		}
		return c.JSON(tournamentResponse(&tournament, len(tournament.Participants)))
	}
}

// GetParticipants returns a handler for GET /api/v1/tournaments/:id/participants.
func GetParticipants(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tournament ID"})
		}

		var participants []models.TournamentParticipant
		err = db.Preload("Member").
			Where("tournament_id = ?", id).
			Order("registered_at ASC").
			Find(&participants).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]ParticipantResponse, 0, len(participants))
		for i := range participants {
			p := &participants[i]
			response = append(response, ParticipantResponse{
				ID:               p.ID.String(),
				MemberID:         p.MemberID.String(),
				MemberName:       p.Member.FullName,
				TeamName:         p.TeamName,
				PaymentCompleted: p.PaymentCompleted,
				Seed:             p.Seed,
				RegisteredAt:     p.RegisteredAt.UTC().Format(time.RFC3339),
			})
		}
		return c.JSON(response)
	}
}

// JoinTournament returns a handler for POST /api/v1/tournaments/:id/join.
// Registers the caller, charging the entry fee from their wallet. Responds
// 409 for a closed, full or duplicate registration and 400 when the wallet
// can't cover the fee.
func JoinTournament(tournament *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		tournamentID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tournament ID"})
		}

		var req JoinTournamentRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		var partnerID *uuid.UUID
		if req.PartnerID != nil {
			id, err := uuid.Parse(*req.PartnerID)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid partner_id"})
			}
			partnerID = &id
		}

		participant, err := tournament.Join(c.Context(), services.JoinInput{
			MemberID:     memberID,
			TournamentID: tournamentID,
			TeamName:     req.TeamName,
			PartnerID:    partnerID,
		})
		if err != nil {
			return respondError(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(ParticipantResponse{
			ID:               participant.ID.String(),
			MemberID:         participant.MemberID.String(),
			TeamName:         participant.TeamName,
			PaymentCompleted: participant.PaymentCompleted,
			Seed:             participant.Seed,
			RegisteredAt:     participant.RegisteredAt.UTC().Format(time.RFC3339),
		})
	}
}

// GetMatches returns a handler for GET /api/v1/tournaments/:id/matches.
func GetMatches(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid tournament ID"})
		}

		var matches []models.Match
		err = db.Preload("Team1Player1").Preload("Team1Player2").
			Preload("Team2Player1").Preload("Team2Player2").
			Preload("Court").
			Where("tournament_id = ?", id).
			Order("date ASC").
			Find(&matches).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]MatchResponse, 0, len(matches))
		for i := range matches {
			response = append(response, matchResponse(&matches[i]))
		}
		return c.JSON(response)
	}
}

// matchResponse flattens the four player relations into two team labels.
func matchResponse(m *models.Match) MatchResponse {
	resp := MatchResponse{
		ID:          m.ID.String(),
		RoundName:   m.RoundName,
		Date:        m.Date.UTC().Format(time.RFC3339),
		Team1:       teamLabel(m.Team1Player1, m.Team1Player2),
		Team2:       teamLabel(m.Team2Player1, m.Team2Player2),
		Score1:      m.Score1,
		Score2:      m.Score2,
		Details:     m.Details,
		WinningSide: string(m.WinningSide),
		Status:      string(m.Status),
	}
	if m.Court != nil {
		resp.CourtName = &m.Court.Name
	}
	return resp
}

func teamLabel(p1, p2 *models.Member) string {
	switch {
	case p1 == nil:
		return "TBD"
	case p2 == nil:
		return p1.FullName
	default:
		return p1.FullName + " / " + p2.FullName
	}
}

// CreateTournament returns a handler for POST /api/v1/admin/tournaments.
// Admin only (enforced by RequireRole middleware on the route).
func CreateTournament(tournament *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateTournamentRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		start, end, ok := parseInterval(req.StartDate, req.EndDate)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_date and end_date must be RFC 3339 timestamps",
			})
		}
		entryFee, err := decimal.NewFromString(req.EntryFee)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "entry_fee must be a decimal number"})
		}
		prizePool := decimal.Zero
		if req.PrizePool != "" {
			prizePool, err = decimal.NewFromString(req.PrizePool)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "prize_pool must be a decimal number"})
			}
		}

		created, err := tournament.Create(c.Context(), services.CreateTournamentInput{
			Name:            req.Name,
			StartDate:       start,
			EndDate:         end,
			Format:          models.TournamentFormat(req.Format),
			EntryFee:        entryFee,
			PrizePool:       prizePool,
			MaxParticipants: req.MaxParticipants,
			Description:     req.Description,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(tournamentResponse(created, 0))
	}
}

// RecordMatchResult returns a handler for PUT /api/v1/admin/matches/:id/result.
// Admin only.
func RecordMatchResult(tournament *services.TournamentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		matchID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid match ID"})
		}

		var req RecordResultRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		match, err := tournament.RecordResult(c.Context(), services.RecordResultInput{
			MatchID:     matchID,
			Score1:      req.Score1,
			Score2:      req.Score2,
			Details:     req.Details,
			WinningSide: models.WinningSide(req.WinningSide),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(matchResponse(match))
	}
}
