package middleware

// roles.go — Role-based access control middleware.
// The club has three roles: admin, treasurer, member.
// These middleware functions are applied to routes that require specific
// permissions, e.g. only admins and treasurers may approve deposits.

import "github.com/gofiber/fiber/v2"

// RequireRole returns a middleware handler that allows only members whose
// role matches one of the provided roles. Returns HTTP 403 Forbidden if the
// role doesn't match.
//
// It accepts a variadic list of roles ("..." syntax) so you can allow one or
// more roles on a route with a single call:
//
//	admin.Put("/wallet/approve/:id", middleware.RequireRole("admin", "treasurer"), handlers.ApproveDeposit(...))
//
// RequireRole must be used AFTER the Auth middleware, because Auth is what
// populates the "memberRole" value in the request context via c.Locals.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberRole, ok := c.Locals("memberRole").(string)
		if !ok || memberRole == "" {
			// If we couldn't read a role, the Auth middleware either wasn't
			// applied or failed silently — deny with 403 Forbidden (not 401,
			// because the member might be authenticated but have no role set)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "forbidden",
			})
		}

		for _, role := range roles {
			if memberRole == role {
				// Role is allowed — pass the request to the next handler
				return c.Next()
			}
		}

		// Authenticated but not authorized to perform this action
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "insufficient permissions",
		})
	}
}
