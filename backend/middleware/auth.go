package middleware

import (
	"fmt"

	"examprep/backend/config"
	"examprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the bearer token and stores the caller's identity.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := utils.ParseIdentity(c, cfg.JWTSecret)
		if err != nil {
			return err
		}
		utils.SetIdentity(c, id)
		return c.Next()
	}
}

// RequireRoles lets through only callers holding one of roles. It must run
// after AuthMiddleware.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		id, ok := utils.IdentityFrom(c)
		if !ok {
			return utils.NewUnauthorizedError("Not authorized to access this route")
		}
		if !allowed[id.Role] {
			return utils.NewForbiddenError(fmt.Sprintf("User role %s is not authorized to access this route", id.Role))
		}
		return c.Next()
	}
}
