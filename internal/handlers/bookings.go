package handlers

// bookings.go — the /api/v1/bookings routes: the public availability
// calendar, creating and cancelling bookings, holding slots, and listing the
// caller's own bookings. All of the money- and conflict-sensitive work lives
// in services.BookingService; these handlers only shape requests and responses.

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
	"github.com/HuyNG25/pcm-backend/internal/services"
)

// BookingResponse is what we send back for a booking.
type BookingResponse struct {
	ID          string  `json:"id"`
	CourtID     string  `json:"court_id"`
	CourtName   string  `json:"court_name,omitempty"`
	MemberID    string  `json:"member_id"`
	MemberName  string  `json:"member_name,omitempty"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	TotalPrice  string  `json:"total_price"`
	Status      string  `json:"status"`
	IsRecurring bool    `json:"is_recurring"`
	HoldUntil   *string `json:"hold_until,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func bookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:          b.ID.String(),
		CourtID:     b.CourtID.String(),
		CourtName:   b.Court.Name,
		MemberID:    b.MemberID.String(),
		MemberName:  b.Member.FullName,
		StartTime:   b.StartTime.UTC().Format(time.RFC3339),
		EndTime:     b.EndTime.UTC().Format(time.RFC3339),
		TotalPrice:  b.TotalPrice.StringFixed(0),
		Status:      string(b.Status),
		IsRecurring: b.IsRecurring,
		CreatedAt:   b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if b.HoldUntil != nil {
		s := b.HoldUntil.UTC().Format(time.RFC3339)
		resp.HoldUntil = &s
	}
	return resp
}

// CreateBookingRequest is the JSON body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	CourtID        string  `json:"court_id" validate:"required,uuid"`
	StartTime      string  `json:"start_time" validate:"required"`
	EndTime        string  `json:"end_time" validate:"required"`
	IsRecurring    bool    `json:"is_recurring"`
	RecurrenceRule *string `json:"recurrence_rule"` // e.g. "weekly;4"
}

// HoldSlotRequest is the JSON body for POST /api/v1/bookings/hold.
type HoldSlotRequest struct {
	CourtID   string `json:"court_id" validate:"required,uuid"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// parseInterval parses the RFC 3339 start/end pair shared by the booking
// request bodies, normalized to UTC.
func parseInterval(startStr, endStr string) (start, end time.Time, ok bool) {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err = time.Parse(time.RFC3339, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start.UTC(), end.UTC(), true
}

// GetCalendar returns a handler for GET /api/v1/calendar.
// Public: shows the hourly availability grid (06:00–22:00) per court.
// Query params: from, to (RFC 3339, required), court_id (optional).
func GetCalendar(booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, ok := parseInterval(c.Query("from"), c.Query("to"))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "from and to must be RFC 3339 timestamps",
			})
		}

		var courtID *uuid.UUID
		if raw := c.Query("court_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid court_id"})
			}
			courtID = &id
		}

		slots, err := booking.Calendar(c.Context(), from, to, courtID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(slots)
	}
}

// CreateBooking returns a handler for POST /api/v1/bookings.
// Books the slot and pays for it from the caller's wallet in one atomic
// operation; responds 409 when the slot is taken and 400 when the wallet
// can't cover the price.
func CreateBooking(db *gorm.DB, booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var req CreateBookingRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		courtID, err := uuid.Parse(req.CourtID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid court_id"})
		}
		start, end, ok := parseInterval(req.StartTime, req.EndTime)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_time and end_time must be RFC 3339 timestamps",
			})
		}

		created, err := booking.CreateBooking(c.Context(), services.CreateBookingInput{
			MemberID:       memberID,
			CourtID:        courtID,
			StartTime:      start,
			EndTime:        end,
			IsRecurring:    req.IsRecurring,
			RecurrenceRule: req.RecurrenceRule,
		})
		if err != nil {
			return respondError(c, err)
		}

		// Reload with the court and member names for the response
		var full models.Booking
		if err := db.Preload("Court").Preload("Member").First(&full, "id = ?", created.ID).Error; err != nil {
			return c.JSON(bookingResponse(created))
		}
		return c.Status(fiber.StatusCreated).JSON(bookingResponse(&full))
	}
}

// HoldSlot returns a handler for POST /api/v1/bookings/hold.
// Reserves the slot for a few minutes without charging; the client then
// confirms (and pays) via ConfirmHold or lets the hold lapse.
func HoldSlot(booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var req HoldSlotRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		courtID, err := uuid.Parse(req.CourtID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid court_id"})
		}
		start, end, ok := parseInterval(req.StartTime, req.EndTime)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "start_time and end_time must be RFC 3339 timestamps",
			})
		}

		held, err := booking.HoldSlot(c.Context(), memberID, courtID, start, end)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(bookingResponse(held))
	}
}

// ConfirmHold returns a handler for POST /api/v1/bookings/:id/confirm.
func ConfirmHold(booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		bookingID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid booking ID"})
		}

		confirmed, err := booking.ConfirmHold(c.Context(), bookingID, memberID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(bookingResponse(confirmed))
	}
}

// GetMyBookings returns a handler for GET /api/v1/bookings/my.
// Lists the caller's bookings, newest start time first.
// Optional query params: from, to (RFC 3339).
func GetMyBookings(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		query := db.Preload("Court").Preload("Member").Where("member_id = ?", memberID)
		if raw := c.Query("from"); raw != "" {
			if from, err := time.Parse(time.RFC3339, raw); err == nil {
				query = query.Where("start_time >= ?", from.UTC())
			}
		}
		if raw := c.Query("to"); raw != "" {
			if to, err := time.Parse(time.RFC3339, raw); err == nil {
				query = query.Where("end_time <= ?", to.UTC())
			}
		}

		var bookings []models.Booking
		if err := query.Order("start_time DESC").Find(&bookings).Error; err != nil {
			return respondError(c, err)
		}

		response := make([]BookingResponse, 0, len(bookings))
		for i := range bookings {
			response = append(response, bookingResponse(&bookings[i]))
		}
		return c.JSON(response)
	}
}

// CancelBooking returns a handler for DELETE /api/v1/bookings/:id.
// Cancels the caller's confirmed booking and reports the refund applied.
func CancelBooking(booking *services.BookingService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		bookingID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid booking ID"})
		}

		result, err := booking.CancelBooking(c.Context(), bookingID, memberID)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(fiber.Map{
			"refund_amount":  result.RefundAmount.StringFixed(0),
			"refund_percent": result.RefundPercent.Mul(decimalHundred).StringFixed(0),
		})
	}
}
