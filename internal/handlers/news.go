package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/HuyNG25/pcm-backend/internal/middleware"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

// CreateNewsRequest is the JSON body for creating an announcement.
type CreateNewsRequest struct {
	Title    string  `json:"title" validate:"required,min=3,max=200"`
	Content  string  `json:"content" validate:"required"`
	IsPinned bool    `json:"is_pinned"`
	ImageURL *string `json:"image_url"`
}

// NewsResponse is the JSON shape for an announcement.
type NewsResponse struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	IsPinned   bool      `json:"is_pinned"`
	ImageURL   *string   `json:"image_url,omitempty"`
	AuthorName string    `json:"author_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func newsResponse(n *models.News) NewsResponse {
	resp := NewsResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		IsPinned:  n.IsPinned,
		ImageURL:  n.ImageURL,
		CreatedAt: n.CreatedAt,
	}
	if n.Author != nil {
		resp.AuthorName = n.Author.FullName
	}
	return resp
}

// GetNews returns a handler for GET /api/v1/news.
// Pinned announcements first, then newest first.
func GetNews(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pagination(c)

		var news []models.News
		err := db.Preload("Author").
			Order("is_pinned DESC, created_at DESC").
			Offset(offset).Limit(limit).
			Find(&news).Error
		if err != nil {
			return respondError(c, err)
		}

		response := make([]NewsResponse, 0, len(news))
		for i := range news {
			response = append(response, newsResponse(&news[i]))
		}
		return c.JSON(response)
	}
}

// GetNewsItem returns a handler for GET /api/v1/news/:id.
func GetNewsItem(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid news ID"})
		}

		var item models.News
		if err := db.Preload("Author").First(&item, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "news not found"})
		}
		return c.JSON(newsResponse(&item))
	}
}

// CreateNews returns a handler for POST /api/v1/admin/news. Admin only.
func CreateNews(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, err := middleware.MemberID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid member ID"})
		}

		var req CreateNewsRequest
		if msg := parseBody(c, &req); msg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
		}

		item := models.News{
			Title:     req.Title,
			Content:   req.Content,
			IsPinned:  req.IsPinned,
			ImageURL:  req.ImageURL,
			CreatedBy: &memberID,
		}
		if err := db.Create(&item).Error; err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(newsResponse(&item))
	}
}

// PinNews returns a handler for PUT /api/v1/admin/news/:id/pin. Admin only.
// Toggles the pinned flag.
func PinNews(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid news ID"})
		}

		var item models.News
		if err := db.First(&item, "id = ?", id).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "news not found"})
		}

		item.IsPinned = !item.IsPinned
		if err := db.Save(&item).Error; err != nil {
			return respondError(c, err)
		}
		return c.JSON(newsResponse(&item))
	}
}

// DeleteNews returns a handler for DELETE /api/v1/admin/news/:id. Admin only.
func DeleteNews(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid news ID"})
		}

		result := db.Delete(&models.News{}, "id = ?", id)
		if result.Error != nil {
			return respondError(c, result.Error)
		}
		if result.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "news not found"})
		}
		return c.JSON(fiber.Map{"message": "news deleted"})
	}
}
