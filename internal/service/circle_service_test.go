package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minigplus/internal/models"
)

func TestCircleService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores circle for owner", func(t *testing.T) {
		t.Parallel()
		repo := noopCircleRepo()
		repo.createFn = func(_ context.Context, circle *models.Circle) error {
			circle.ID = 3
			return nil
		}
		svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())

		circle, err := svc.Create(ctx, CreateCircleInput{OwnerID: 1, Name: "friends"})
		require.NoError(t, err)
		assert.Equal(t, uint(3), circle.ID)
		assert.Equal(t, uint(1), circle.OwnerID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		t.Parallel()
		svc := NewCircleService(noopCircleRepo(), noopIdentityRepo(), noMembershipEngine())
		_, err := svc.Create(ctx, CreateCircleInput{OwnerID: 1, Name: ""})
		assertValidationError(t, err)
	})

	t.Run("rejects padded name", func(t *testing.T) {
		t.Parallel()
		svc := NewCircleService(noopCircleRepo(), noopIdentityRepo(), noMembershipEngine())
		_, err := svc.Create(ctx, CreateCircleInput{OwnerID: 1, Name: " friends "})
		assertValidationError(t, err)
	})

	t.Run("rejects oversized name", func(t *testing.T) {
		t.Parallel()
		svc := NewCircleService(noopCircleRepo(), noopIdentityRepo(), noMembershipEngine())
		_, err := svc.Create(ctx, CreateCircleInput{OwnerID: 1, Name: strings.Repeat("a", 121)})
		assertValidationError(t, err)
	})

	t.Run("propagates duplicate name", func(t *testing.T) {
		t.Parallel()
		repo := noopCircleRepo()
		repo.createFn = func(_ context.Context, circle *models.Circle) error {
			return models.NewDuplicateNameError(circle.Name)
		}
		svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())
		_, err := svc.Create(ctx, CreateCircleInput{OwnerID: 1, Name: "friends"})
		assert.True(t, models.HasCode(err, models.CodeDuplicateName))
	})
}

func TestCircleService_ToggleMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	ownedCircle := func() *circleRepoStub {
		repo := noopCircleRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Circle, error) {
			return &models.Circle{ID: id, OwnerID: 1, Name: "friends"}, nil
		}
		return repo
	}

	t.Run("owner toggles membership", func(t *testing.T) {
		t.Parallel()
		repo := ownedCircle()
		repo.toggleMemberFn = func(_ context.Context, circleID, userID uint) (bool, error) {
			assert.Equal(t, uint(5), circleID)
			assert.Equal(t, uint(2), userID)
			return true, nil
		}
		svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())

		res, err := svc.ToggleMember(ctx, 1, 5, 2)
		require.NoError(t, err)
		assert.True(t, res.Added)
	})

	t.Run("non-owner denied", func(t *testing.T) {
		t.Parallel()
		svc := NewCircleService(ownedCircle(), noopIdentityRepo(), noMembershipEngine())
		_, err := svc.ToggleMember(ctx, 2, 5, 3)
		assert.True(t, models.IsUnauthorized(err))
	})

	t.Run("unknown target identity", func(t *testing.T) {
		t.Parallel()
		identities := noopIdentityRepo()
		identities.getByIDFn = func(_ context.Context, id uint) (*models.Identity, error) {
			return nil, models.NewNotFoundError("identity", id)
		}
		svc := NewCircleService(ownedCircle(), identities, noMembershipEngine())
		_, err := svc.ToggleMember(ctx, 1, 5, 99)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("unknown circle", func(t *testing.T) {
		t.Parallel()
		repo := noopCircleRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Circle, error) {
			return nil, models.NewNotFoundError("circle", id)
		}
		svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())
		_, err := svc.ToggleMember(ctx, 1, 42, 2)
		assert.True(t, models.IsNotFound(err))
	})
}

func TestCircleService_Get(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopCircleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Circle, error) {
		return &models.Circle{ID: id, OwnerID: 1, Name: "friends"}, nil
	}
	svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())

	circle, err := svc.Get(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "friends", circle.Name)

	// A member is not allowed to inspect the circle they are in.
	_, err = svc.Get(ctx, 2, 5)
	assert.True(t, models.IsUnauthorized(err))
}

func TestCircleService_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	repo := noopCircleRepo()
	repo.getByIDFn = func(_ context.Context, id uint) (*models.Circle, error) {
		return &models.Circle{ID: id, OwnerID: 1, Name: "friends"}, nil
	}
	deleted := uint(0)
	repo.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := NewCircleService(repo, noopIdentityRepo(), noMembershipEngine())

	require.NoError(t, svc.Delete(ctx, 1, 5))
	assert.Equal(t, uint(5), deleted)

	err := svc.Delete(ctx, 9, 5)
	assert.True(t, models.IsUnauthorized(err))
}
