package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
)

const (
	authCookieName   = "gardenweeks_session"
	contextUserKey   = "current_user"
	contextClaimsKey = "current_claims"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

func currentClaims(c *fiber.Ctx) (*authClaims, bool) {
	claims, ok := c.Locals(contextClaimsKey).(*authClaims)
	return claims, ok
}

// currentActor takes admin rights from the stored user rather than the token,
// so a demoted admin loses access on the next request.
func currentActor(c *fiber.Ctx) services.Actor {
	user, ok := currentUser(c)
	if !ok {
		return services.Actor{}
	}
	return services.Actor{UserID: user.ID, IsAdmin: user.IsAdmin}
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, claims, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	c.Locals(contextClaimsKey, claims)
	return c.Next()
}

func (handler *Handler) AdminOnly(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	if !user.IsAdmin {
		return apiError(c, fiber.StatusForbidden, "admin access required")
	}
	return c.Next()
}
