// Package handlers contains HTTP route handler functions for the Pickleball
// Club Management API.
//
// Each exported function follows the "handler factory" pattern: it takes its
// dependencies (a *gorm.DB, a service, a config) and returns a fiber.Handler —
// a function that handles a single HTTP request. This lets us inject
// dependencies without using global variables.
//
// This file holds the helpers every handler shares: request validation and
// the mapping from the services package's domain errors to HTTP statuses.
package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/HuyNG25/pcm-backend/internal/logger"
	"github.com/HuyNG25/pcm-backend/internal/services"
)

// decimalHundred converts refund fractions to percentages in responses.
var decimalHundred = decimal.NewFromInt(100)

// validate is the shared validator instance. It reads the `validate` struct
// tags on request DTOs (e.g. `validate:"required,email"`).
var validate = validator.New()

// parseBody unmarshals the JSON request body into dest and runs validation.
// Returns a client-facing error message, or "" when the body is valid.
func parseBody(c *fiber.Ctx, dest interface{}) string {
	if err := c.BodyParser(dest); err != nil {
		return "invalid request body"
	}
	if err := validate.Struct(dest); err != nil {
		return err.Error()
	}
	return ""
}

// respondError maps a service error to an HTTP response. Expected domain
// outcomes get 4xx codes with their message; anything unrecognized is an
// unexpected storage failure — logged server-side, reported as a plain 500 so
// internals don't leak to clients.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrInsufficientFunds):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrSlotConflict),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrAlreadyProcessed),
		errors.Is(err, services.ErrTournamentFull),
		errors.Is(err, services.ErrRegistrationClosed),
		errors.Is(err, services.ErrAlreadyRegistered):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.Errorf("unhandled error on %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}

// pagination reads ?page and ?page_size query params with sane bounds.
func pagination(c *fiber.Ctx) (offset, limit int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	size := c.QueryInt("page_size", 20)
	if size < 1 || size > 100 {
		size = 20
	}
	return (page - 1) * size, size
}
