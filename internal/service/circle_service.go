package service

import (
	"context"
	"log/slog"

	"minigplus/internal/authz"
	"minigplus/internal/middleware"
	"minigplus/internal/models"
	"minigplus/internal/repository"
	"minigplus/internal/validation"
)

type CircleService struct {
	circleRepo   repository.CircleRepository
	identityRepo repository.IdentityRepository
	authz        *authz.Engine
}

type CreateCircleInput struct {
	OwnerID uint
	Name    string
}

// ToggleMemberResult reports the outcome of a membership toggle.
type ToggleMemberResult struct {
	CircleID uint `json:"circle_id"`
	UserID   uint `json:"user_id"`
	Added    bool `json:"added"`
}

func NewCircleService(circleRepo repository.CircleRepository, identityRepo repository.IdentityRepository, engine *authz.Engine) *CircleService {
	return &CircleService{circleRepo: circleRepo, identityRepo: identityRepo, authz: engine}
}

func (s *CircleService) Create(ctx context.Context, in CreateCircleInput) (*models.Circle, error) {
	if err := validation.ValidateCircleName(in.Name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	circle := &models.Circle{OwnerID: in.OwnerID, Name: in.Name}
	if err := s.circleRepo.Create(ctx, circle); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "circle created",
		slog.Uint64("circle_id", uint64(circle.ID)),
		slog.Uint64("owner_id", uint64(in.OwnerID)))
	return circle, nil
}

// Get returns the circle with its owner and member list. Only the owner may
// inspect a circle; membership is invisible to the members themselves.
func (s *CircleService) Get(ctx context.Context, actorID, circleID uint) (*models.Circle, error) {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageCircle(circle, actorID) {
		return nil, authz.Deny("circle.get", "only the owner may view a circle")
	}
	return circle, nil
}

func (s *CircleService) ListOwned(ctx context.Context, ownerID uint) ([]*models.Circle, error) {
	return s.circleRepo.ListByOwner(ctx, ownerID)
}

// ToggleMember adds the target identity to the circle if absent, removes it
// if present. Adding is unilateral: the target is never asked or notified.
func (s *CircleService) ToggleMember(ctx context.Context, actorID, circleID, targetID uint) (*ToggleMemberResult, error) {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanManageCircle(circle, actorID) {
		return nil, authz.Deny("circle.toggle_member", "only the owner may change circle membership")
	}

	if _, err := s.identityRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	added, err := s.circleRepo.ToggleMember(ctx, circleID, targetID)
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "circle membership toggled",
		slog.Uint64("circle_id", uint64(circleID)),
		slog.Uint64("target_id", uint64(targetID)),
		slog.Bool("added", added))
	return &ToggleMemberResult{CircleID: circleID, UserID: targetID, Added: added}, nil
}

// Delete removes the circle. Posts shared only with it lose that audience
// immediately and fall back to author-only visibility.
func (s *CircleService) Delete(ctx context.Context, actorID, circleID uint) error {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		return err
	}
	if !s.authz.CanManageCircle(circle, actorID) {
		return authz.Deny("circle.delete", "only the owner may delete a circle")
	}
	return s.circleRepo.Delete(ctx, circleID)
}
