package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/cache"
	"github.com/HuyNG25/pcm-backend/internal/models"
	"github.com/HuyNG25/pcm-backend/internal/services"
)

const (
	courtsCacheKey = "courts:active"
	courtsCacheTTL = 10 * time.Minute
)

// CreateCourtRequest is the JSON body for creating or updating a court.
type CreateCourtRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Description  *string `json:"description"`
	PricePerHour string  `json:"price_per_hour" validate:"required"`
	IsActive     *bool   `json:"is_active"`
}

// CourtResponse is the JSON shape for a court.
type CourtResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	PricePerHour string    `json:"price_per_hour"`
	IsActive     bool      `json:"is_active"`
}

func courtResponse(court *models.Court) CourtResponse {
	return CourtResponse{
		ID:           court.ID,
		Name:         court.Name,
		Description:  court.Description,
		PricePerHour: court.PricePerHour.StringFixed(0),
		IsActive:     court.IsActive,
	}
}

// GetCourts returns a handler for GET /api/v1/courts.
// The active-court list is read on every calendar view, so it is served
// from Redis when available and refreshed from Postgres on a miss.
func GetCourts(db *gorm.DB, cch *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cached []CourtResponse
		if cch.GetJSON(c.Context(), courtsCacheKey, &cached) {
			return c.JSON(cached)
		}

		var courts []models.Court
		if err := db.Where("is_active").Order("name ASC").Find(&courts).Error; err != nil {
			return respondError(c, err)
		}

		response := make([]CourtResponse, 0, len(courts))
		for i := range courts {
			response = append(response, courtResponse(&courts[i]))
		}

		cch.SetJSON(c.Context(), courtsCacheKey, response, courtsCacheTTL)
		return c.JSON(response)
	}
}

// CheckAvailability returns a handler for GET /api/v1/courts/:id/availability.
// Read-only pre-check for the booking form; the authoritative check runs
// again inside the booking transaction.
// Query params: from, to (RFC 3339, required).
func CheckAvailability(booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		courtID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid court ID"})
		}
		from, to, ok := parseInterval(c.Query("from"), c.Query("to"))
		if !ok || !to.After(from) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "from and to must be RFC 3339 timestamps with to after from",
			})
		}

		available, err := booking.IsAvailable(c.Context(), courtID, from, to)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"available": available})
	}
}

// CreateCourt returns a handler for POST /api/v1/admin/courts. Admin only.
func CreateCourt(db *gorm.DB, cch *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateCourtRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		price, err := decimal.NewFromString(req.PricePerHour)
		if err != nil || !price.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_per_hour must be a positive number"})
		}

		court := models.Court{
			Name:         req.Name,
			Description:  req.Description,
			PricePerHour: price,
			IsActive:     true,
		}
		if req.IsActive != nil {
			court.IsActive = *req.IsActive
		}
		if err := db.Create(&court).Error; err != nil {
			return respondError(c, err)
		}

		cch.Invalidate(c.Context(), courtsCacheKey)
		return c.Status(fiber.StatusCreated).JSON(courtResponse(&court))
	}
}

// UpdateCourt returns a handler for PUT /api/v1/admin/courts/:id. Admin only.
func UpdateCourt(db *gorm.DB, cch *cache.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid court ID"})
		}

		var req CreateCourtRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		price, err := decimal.NewFromString(req.PricePerHour)
		if err != nil || !price.IsPositive() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "price_per_hour must be a positive number"})
		}

		var court models.Court
		if err := db.First(&court, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "court not found"})
		}

		court.Name = req.Name
		court.Description = req.Description
		court.PricePerHour = price
		if req.IsActive != nil {
			court.IsActive = *req.IsActive
		}
		if err := db.Save(&court).Error; err != nil {
			return respondError(c, err)
		}

		cch.Invalidate(c.Context(), courtsCacheKey)
		return c.JSON(courtResponse(&court))
	}
}
