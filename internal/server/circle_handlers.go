package server

import (
	"github.com/gofiber/fiber/v2"

	"minigplus/internal/models"
	"minigplus/internal/service"
)

// CreateCircle handles POST /api/circles
// @Summary Create a circle
// @Tags circles
// @Accept json
// @Produce json
// @Param request body object{name=string} true "Circle name, unique per owner"
// @Success 201 {object} models.Circle
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /circles [post]
func (s *Server) CreateCircle(c *fiber.Ctx) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	circle, err := s.circleService.Create(c.UserContext(), service.CreateCircleInput{
		OwnerID: s.currentUserID(c),
		Name:    req.Name,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// GetMyCircles handles GET /api/circles
// @Summary List owned circles
// @Tags circles
// @Produce json
// @Success 200 {array} models.Circle
// @Router /circles [get]
func (s *Server) GetMyCircles(c *fiber.Ctx) error {
	circles, err := s.circleService.ListOwned(c.UserContext(), s.currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circles)
}

// GetCircle handles GET /api/circles/:id
// @Summary Get a circle with its member list
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Success 200 {object} models.Circle
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /circles/{id} [get]
func (s *Server) GetCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	circle, err := s.circleService.Get(c.UserContext(), s.currentUserID(c), circleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circle)
}

// ToggleCircleMember handles POST /api/circles/:id/members/:userId.
// Adds the identity if absent, removes it if present.
// @Summary Toggle circle membership
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Param userId path int true "Identity ID"
// @Success 200 {object} service.ToggleMemberResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /circles/{id}/members/{userId} [post]
func (s *Server) ToggleCircleMember(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	targetID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	result, err := s.circleService.ToggleMember(c.UserContext(), s.currentUserID(c), circleID, targetID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(result)
}

// DeleteCircle handles DELETE /api/circles/:id
// @Summary Delete a circle
// @Tags circles
// @Produce json
// @Param id path int true "Circle ID"
// @Success 200 {object} object{message=string}
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /circles/{id} [delete]
func (s *Server) DeleteCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.circleService.Delete(c.UserContext(), s.currentUserID(c), circleID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "circle deleted"})
}
