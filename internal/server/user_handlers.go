package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetMyIdentity handles GET /api/users/me
// @Summary Current identity
// @Tags users
// @Produce json
// @Success 200 {object} models.Identity
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMyIdentity(c *fiber.Ctx) error {
	identity, err := s.identityService.GetByID(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(identity)
}

// GetIdentities handles GET /api/users
// @Summary List identities
// @Description List all other identities, for building circle membership
// @Tags users
// @Produce json
// @Success 200 {array} models.Identity
// @Router /users [get]
func (s *Server) GetIdentities(c *fiber.Ctx) error {
	identities, err := s.identityService.List(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(identities)
}

// DeleteMyIdentity handles DELETE /api/users/me. Removes the identity and
// everything derived from it: posts, comments, circles, memberships.
// @Summary Delete current identity
// @Tags users
// @Produce json
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [delete]
func (s *Server) DeleteMyIdentity(c *fiber.Ctx) error {
	userID := s.currentUserID(c)
	if err := s.identityService.Delete(c.UserContext(), userID, userID); err != nil {
		return respondServiceError(c, err)
	}

	// The presented token is now orphaned; revoke it.
	if s.redis != nil {
		if jti, exp, ok := s.tokenJTI(c); ok {
			if ttl := time.Until(exp); ttl > 0 {
				s.redis.Set(c.Context(), "blacklist:"+jti, "1", ttl)
			}
		}
	}

	return c.JSON(fiber.Map{"message": "identity deleted"})
}
