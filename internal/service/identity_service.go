// Package service holds the business logic between HTTP handlers and the
// repositories. Services validate input, consult the authorization engine,
// and translate repository results into domain errors.
package service

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"minigplus/internal/authz"
	"minigplus/internal/middleware"
	"minigplus/internal/models"
	"minigplus/internal/repository"
	"minigplus/internal/validation"
)

type IdentityService struct {
	identityRepo repository.IdentityRepository
	authz        *authz.Engine
}

type SignupInput struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

func NewIdentityService(identityRepo repository.IdentityRepository, engine *authz.Engine) *IdentityService {
	return &IdentityService{identityRepo: identityRepo, authz: engine}
}

// Signup registers a new identity. Handle uniqueness is enforced by the
// database, not by a read-then-write check; concurrent signups with the same
// handle cannot both succeed.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (*models.Identity, error) {
	if err := validation.ValidateHandle(in.Handle); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	identity := &models.Identity{
		Handle:       in.Handle,
		PasswordHash: string(hash),
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "identity created",
		slog.Uint64("identity_id", uint64(identity.ID)),
		slog.String("handle", identity.Handle))
	return identity, nil
}

// Authenticate verifies a handle/password pair. Lookup failures and password
// mismatches are indistinguishable to the caller. Finding more than one row
// for a handle means the unique index has been violated; that aborts the
// login rather than silently picking a row.
func (s *IdentityService) Authenticate(ctx context.Context, handle, password string) (*models.Identity, error) {
	matches, err := s.identityRepo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if len(matches) > 1 {
		middleware.Logger.ErrorContext(ctx, "duplicate identities for handle",
			slog.String("handle", handle), slog.Int("count", len(matches)))
		return nil, models.NewIntegrityError("multiple identities share one handle")
	}
	if len(matches) == 0 {
		return nil, authz.Deny("authenticate", "invalid credentials")
	}

	identity := matches[0]
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, authz.Deny("authenticate", "invalid credentials")
	}
	return identity, nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uint) (*models.Identity, error) {
	return s.identityRepo.GetByID(ctx, id)
}

// List returns all identities except the requester, for building circle
// membership pickers.
func (s *IdentityService) List(ctx context.Context, excludeID uint) ([]models.Identity, error) {
	return s.identityRepo.List(ctx, excludeID)
}

// Delete removes the actor's own account and all content derived from it.
func (s *IdentityService) Delete(ctx context.Context, actorID, targetID uint) error {
	if !s.authz.CanDeleteIdentity(actorID, targetID) {
		return authz.Deny("identity.delete", "identities may only delete themselves")
	}
	return s.identityRepo.Delete(ctx, targetID)
}
