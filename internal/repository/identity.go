package repository

import (
	"context"
	"errors"
	"log/slog"

	"gorm.io/gorm"

	"minigplus/internal/cache"
	"minigplus/internal/middleware"
	"minigplus/internal/models"
)

// IdentityRepository defines persistence operations for identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *models.Identity) error
	GetByID(ctx context.Context, id uint) (*models.Identity, error)
	FindByHandle(ctx context.Context, handle string) ([]*models.Identity, error)
	List(ctx context.Context, excludeID uint) ([]models.Identity, error)
	Delete(ctx context.Context, id uint) error
}

type identityRepository struct {
	db *gorm.DB
}

// NewIdentityRepository creates a new identity repository.
func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *models.Identity) error {
	if err := r.db.WithContext(ctx).Create(identity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateHandleError(identity.Handle)
		}
		return models.NewInternalError(err)
	}
	return nil
}

// GetByID looks up an identity, serving repeat lookups from the cache. Only
// the id/handle pair is cached; it is immutable for the life of the row.
func (r *identityRepository) GetByID(ctx context.Context, id uint) (*models.Identity, error) {
	var identity models.Identity
	err := cache.Aside(ctx, cache.IdentityKey(id), &identity, cache.IdentityTTL, func() error {
		return r.db.WithContext(ctx).First(&identity, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("identity", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &identity, nil
}

// FindByHandle returns every live row carrying the handle. The unique index
// makes more than one result impossible in normal operation; callers treat a
// multi-row result as a data integrity failure.
func (r *identityRepository) FindByHandle(ctx context.Context, handle string) ([]*models.Identity, error) {
	var identities []*models.Identity
	if err := r.db.WithContext(ctx).Where("handle = ?", handle).Find(&identities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return identities, nil
}

func (r *identityRepository) List(ctx context.Context, excludeID uint) ([]models.Identity, error) {
	var identities []models.Identity
	q := r.db.WithContext(ctx).Order("handle ASC")
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	if err := q.Find(&identities).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return identities, nil
}

// Delete removes an identity and everything hanging off it in one
// transaction: authored posts (with their comments and circle links),
// authored comments (with their replies), owned circles (with their
// membership and post links), and the identity's own memberships. The
// identity row itself is removed outright so the handle frees up.
func (r *identityRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostCircle{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}

		var commentIDs []uint
		if err := tx.Model(&models.Comment{}).Where("author_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if len(commentIDs) > 0 {
			if err := tx.Where("parent_id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
		}

		var circleIDs []uint
		if err := tx.Model(&models.Circle{}).Where("owner_id = ?", id).Pluck("id", &circleIDs).Error; err != nil {
			return err
		}
		if len(circleIDs) > 0 {
			if err := tx.Where("circle_id IN ?", circleIDs).Delete(&models.CircleMember{}).Error; err != nil {
				return err
			}
			if err := tx.Where("circle_id IN ?", circleIDs).Delete(&models.PostCircle{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", circleIDs).Delete(&models.Circle{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.CircleMember{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Identity{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("identity", id)
		}
		return models.NewInternalError(err)
	}

	cache.InvalidateIdentity(ctx, id)
	middleware.Logger.InfoContext(ctx, "identity deleted with cascade",
		slog.Uint64("identity_id", uint64(id)))
	return nil
}
