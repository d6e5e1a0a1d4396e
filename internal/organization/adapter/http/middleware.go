package http

import (
	"org-registry/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RequestContextMiddleware stamps every request with a request ID and, when
// the route carries one, the organization ID. Both land in the user context
// so logger.WithContext picks them up downstream.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := utils.WithRequestID(c.UserContext(), requestID)
		if orgID := c.Params("organizationId"); orgID != "" {
			ctx = utils.WithOrganizationID(ctx, orgID)
		}
		c.SetUserContext(ctx)

		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}
