// Package middleware contains HTTP middleware functions for the Pickleball
// Club Management API. Middleware sits between the HTTP server and route
// handlers — it runs on every request that passes through it, making it the
// right place for cross-cutting concerns like authentication and access control.
package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/HuyNG25/pcm-backend/internal/config"
	"github.com/HuyNG25/pcm-backend/internal/models"
)

// Claims is the payload of the session tokens this API issues at login.
// MemberID identifies the calling member; Role carries their permission level
// so RBAC checks don't need a database round-trip on every request.
type Claims struct {
	jwt.RegisteredClaims
	MemberID string `json:"member_id"`
	Role     string `json:"role"`
}

// IssueToken signs a session token for a member. Called by the auth handlers
// after registration or a successful login.
func IssueToken(cfg *config.Config, member *models.Member) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.JWTTTL)),
		},
		MemberID: member.ID.String(),
		Role:     string(member.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// Auth returns a Fiber middleware handler that:
//  1. Extracts the token from the "Authorization: Bearer <token>" header
//  2. Verifies the HS256 signature and expiry against our signing secret
//  3. Stores the member's ID and role in the request context (c.Locals) so
//     downstream handlers can read them without re-parsing the token
//
// This is a closure — a function that returns another function, capturing cfg
// in its scope so it's available every time a request comes in.
func Auth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid authorization header",
			})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			// Reject tokens signed with anything but our HMAC method —
			// accepting "none" or an RSA key here would let callers forge tokens.
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.MemberID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token claims",
			})
		}

		// Validate the member ID is a well-formed UUID before handlers use it
		if _, err := uuid.Parse(claims.MemberID); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid member ID",
			})
		}

		// c.Locals is a key-value store scoped to this single request.
		// Handlers read "memberID" and "memberRole" from here.
		c.Locals("memberID", claims.MemberID)
		c.Locals("memberRole", claims.Role)

		return c.Next()
	}
}

// MemberID reads the authenticated member's UUID out of the request context.
// Only valid after the Auth middleware has run.
func MemberID(c *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := c.Locals("memberID").(string)
	return uuid.Parse(raw)
}
