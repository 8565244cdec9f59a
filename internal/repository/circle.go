package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"minigplus/internal/models"
)

// CircleRepository defines persistence operations for circles and their
// membership rows.
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle) error
	GetByID(ctx context.Context, id uint) (*models.Circle, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Circle, error)
	// OwnedIDs filters ids down to circles owned by ownerID.
	OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error)
	// ToggleMember flips userID's membership in circleID and reports whether
	// the user ended up added (true) or removed (false).
	ToggleMember(ctx context.Context, circleID, userID uint) (bool, error)
	IsMember(ctx context.Context, circleID, userID uint) (bool, error)
	// IsMemberOfAny reports whether userID belongs to at least one of circleIDs.
	IsMemberOfAny(ctx context.Context, userID uint, circleIDs []uint) (bool, error)
	MemberIDs(ctx context.Context, circleID uint) ([]uint, error)
	Delete(ctx context.Context, id uint) error
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository creates a new circle repository.
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

func (r *circleRepository) Create(ctx context.Context, circle *models.Circle) error {
	if err := r.db.WithContext(ctx).Create(circle).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateNameError(circle.Name)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *circleRepository) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	var circle models.Circle
	if err := r.db.WithContext(ctx).Preload("Owner").First(&circle, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("circle", id)
		}
		return nil, models.NewInternalError(err)
	}

	err := r.db.WithContext(ctx).
		Joins("JOIN circle_members cm ON cm.user_id = identities.id").
		Where("cm.circle_id = ?", id).
		Order("identities.handle ASC").
		Find(&circle.Members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &circle, nil
}

func (r *circleRepository) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Circle, error) {
	var circles []*models.Circle
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&circles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

func (r *circleRepository) OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var owned []uint
	err := r.db.WithContext(ctx).
		Model(&models.Circle{}).
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Pluck("id", &owned).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return owned, nil
}

func (r *circleRepository) ToggleMember(ctx context.Context, circleID, userID uint) (bool, error) {
	added := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := models.CircleMember{CircleID: circleID, UserID: userID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			added = true
			return nil
		}
		// Already a member: the toggle removes them.
		return tx.Where("circle_id = ? AND user_id = ?", circleID, userID).
			Delete(&models.CircleMember{}).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return added, nil
}

func (r *circleRepository) IsMember(ctx context.Context, circleID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircleMember{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *circleRepository) IsMemberOfAny(ctx context.Context, userID uint, circleIDs []uint) (bool, error) {
	if len(circleIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CircleMember{}).
		Where("user_id = ? AND circle_id IN ?", userID, circleIDs).
		Count(&count).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *circleRepository) MemberIDs(ctx context.Context, circleID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CircleMember{}).
		Where("circle_id = ?", circleID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// Delete removes the circle plus its membership rows and any post links that
// reference it. Posts that were shared only to this circle simply stop being
// visible through it.
func (r *circleRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("circle_id = ?", id).Delete(&models.CircleMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("circle_id = ?", id).Delete(&models.PostCircle{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Circle{}, id)
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
			return models.NewNotFoundError("circle", id)
		}
		return models.NewInternalError(err)
	}
	return nil
}
