package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minigplus/internal/authz"
	"minigplus/internal/models"
)

// identityRepoStub is a stub for repository.IdentityRepository.
type identityRepoStub struct {
	createFn       func(context.Context, *models.Identity) error
	getByIDFn      func(context.Context, uint) (*models.Identity, error)
	findByHandleFn func(context.Context, string) ([]*models.Identity, error)
	listFn         func(context.Context, uint) ([]models.Identity, error)
	deleteFn       func(context.Context, uint) error
}

func (s *identityRepoStub) Create(ctx context.Context, identity *models.Identity) error {
	return s.createFn(ctx, identity)
}
func (s *identityRepoStub) GetByID(ctx context.Context, id uint) (*models.Identity, error) {
	return s.getByIDFn(ctx, id)
}
func (s *identityRepoStub) FindByHandle(ctx context.Context, handle string) ([]*models.Identity, error) {
	return s.findByHandleFn(ctx, handle)
}
func (s *identityRepoStub) List(ctx context.Context, excludeID uint) ([]models.Identity, error) {
	return s.listFn(ctx, excludeID)
}
func (s *identityRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopIdentityRepo() *identityRepoStub {
	return &identityRepoStub{
		createFn:       func(_ context.Context, _ *models.Identity) error { return nil },
		getByIDFn:      func(_ context.Context, id uint) (*models.Identity, error) { return &models.Identity{ID: id}, nil },
		findByHandleFn: func(_ context.Context, _ string) ([]*models.Identity, error) { return nil, nil },
		listFn:         func(_ context.Context, _ uint) ([]models.Identity, error) { return nil, nil },
		deleteFn:       func(_ context.Context, _ uint) error { return nil },
	}
}

// circleRepoStub is a stub for repository.CircleRepository.
type circleRepoStub struct {
	createFn        func(context.Context, *models.Circle) error
	getByIDFn       func(context.Context, uint) (*models.Circle, error)
	listByOwnerFn   func(context.Context, uint) ([]*models.Circle, error)
	ownedIDsFn      func(context.Context, uint, []uint) ([]uint, error)
	toggleMemberFn  func(context.Context, uint, uint) (bool, error)
	isMemberFn      func(context.Context, uint, uint) (bool, error)
	isMemberOfAnyFn func(context.Context, uint, []uint) (bool, error)
	memberIDsFn     func(context.Context, uint) ([]uint, error)
	deleteFn        func(context.Context, uint) error
}

func (s *circleRepoStub) Create(ctx context.Context, circle *models.Circle) error {
	return s.createFn(ctx, circle)
}
func (s *circleRepoStub) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	return s.getByIDFn(ctx, id)
}
func (s *circleRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Circle, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *circleRepoStub) OwnedIDs(ctx context.Context, ownerID uint, ids []uint) ([]uint, error) {
	return s.ownedIDsFn(ctx, ownerID, ids)
}
func (s *circleRepoStub) ToggleMember(ctx context.Context, circleID, userID uint) (bool, error) {
	return s.toggleMemberFn(ctx, circleID, userID)
}
func (s *circleRepoStub) IsMember(ctx context.Context, circleID, userID uint) (bool, error) {
	return s.isMemberFn(ctx, circleID, userID)
}
func (s *circleRepoStub) IsMemberOfAny(ctx context.Context, userID uint, circleIDs []uint) (bool, error) {
	return s.isMemberOfAnyFn(ctx, userID, circleIDs)
}
func (s *circleRepoStub) MemberIDs(ctx context.Context, circleID uint) ([]uint, error) {
	return s.memberIDsFn(ctx, circleID)
}
func (s *circleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCircleRepo() *circleRepoStub {
	return &circleRepoStub{
		createFn:        func(_ context.Context, _ *models.Circle) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Circle, error) { return &models.Circle{ID: id}, nil },
		listByOwnerFn:   func(_ context.Context, _ uint) ([]*models.Circle, error) { return nil, nil },
		ownedIDsFn:      func(_ context.Context, _ uint, ids []uint) ([]uint, error) { return ids, nil },
		toggleMemberFn:  func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isMemberFn:      func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		isMemberOfAnyFn: func(_ context.Context, _ uint, _ []uint) (bool, error) { return false, nil },
		memberIDsFn:     func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post, []uint) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	listVisibleFn func(context.Context, uint, *uint, int, int) ([]*models.Post, error)
	circleIDsFn   func(context.Context, uint) ([]uint, error)
	deleteFn      func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, circleIDs []uint) error {
	return s.createFn(ctx, post, circleIDs)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListVisible(ctx context.Context, viewerID uint, authorID *uint, limit, offset int) ([]*models.Post, error) {
	return s.listVisibleFn(ctx, viewerID, authorID, limit, offset)
}
func (s *postRepoStub) CircleIDs(ctx context.Context, postID uint) ([]uint, error) {
	return s.circleIDsFn(ctx, postID)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post, _ []uint) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listVisibleFn: func(_ context.Context, _ uint, _ *uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		circleIDsFn:   func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// notifierStub records published events.
type notifierStub struct {
	posts    []*models.Post
	comments []*models.Comment
}

func (n *notifierStub) PostCreated(_ context.Context, post *models.Post) {
	n.posts = append(n.posts, post)
}
func (n *notifierStub) CommentAdded(_ context.Context, comment *models.Comment) {
	n.comments = append(n.comments, comment)
}

// memberEngine returns an authz engine treating userID as a member of
// exactly the given circles.
func memberEngine(memberships map[uint][]uint) *authz.Engine {
	return authz.NewEngine(func(_ context.Context, userID uint, circleIDs []uint) (bool, error) {
		mine := memberships[userID]
		for _, want := range circleIDs {
			for _, have := range mine {
				if want == have {
					return true, nil
				}
			}
		}
		return false, nil
	})
}

func noMembershipEngine() *authz.Engine {
	return memberEngine(nil)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeValidation), "expected validation error, got %v", err)
}
