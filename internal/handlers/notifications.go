package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

// NotificationResponse is the JSON shape for a single notification.
type NotificationResponse struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func notificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Type:      string(n.Type),
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications returns a handler for GET /api/v1/notifications.
// Newest first, paged. Optional ?unread=true filters to unread only.
func GetNotifications(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		offset, limit := pagination(c)

		query := db.Where("member_id = ?", memberID)
		if c.Query("unread") == "true" {
			query = query.Where("NOT is_read")
		}

		var notifications []models.Notification
		err = query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]NotificationResponse, 0, len(notifications))
		for i := range notifications {
			response = append(response, notificationResponse(&notifications[i]))
		}
		return c.JSON(response)
	}
}

// GetUnreadCount returns a handler for GET /api/v1/notifications/unread-count.
func GetUnreadCount(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var count int64
		err = db.Model(&models.Notification{}).
			Where("member_id = ? AND NOT is_read", memberID).
			Count(&count).Error
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"unread_count": count})
	}
}

// MarkRead returns a handler for PUT /api/v1/notifications/:id/read.
// Marking an already-read notification is a no-op, not an error.
func MarkRead(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid notification ID"})
		}

		result := db.Model(&models.Notification{}).
			Where("id = ? AND member_id = ?", id, memberID).
			Update("is_read", true)
		if result.Error != nil {
			return respondError(c, result.Error)
		}
		if result.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "notification not found"})
		}
		return c.JSON(fiber.Map{"message": "notification marked as read"})
	}
}

// MarkAllRead returns a handler for PUT /api/v1/notifications/read-all.
func MarkAllRead(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		err = db.Model(&models.Notification{}).
			Where("member_id = ? AND NOT is_read", memberID).
			Update("is_read", true).Error
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "all notifications marked as read"})
	}
}
