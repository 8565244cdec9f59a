package notifications

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minigplus/internal/models"
	"minigplus/internal/repository"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_RegisterLimits(t *testing.T) {
	hub := NewHub()

	clients := make([]*Client, 0, maxConnsPerUser)
	for i := 0; i < maxConnsPerUser; i++ {
		c, err := hub.Register(10, nil)
		require.NoError(t, err)
		clients = append(clients, c)
	}
	assert.Equal(t, maxConnsPerUser, hub.ConnectionCount())

	_, err := hub.Register(10, nil)
	assert.Error(t, err)

	for _, c := range clients {
		hub.UnregisterClient(c)
	}
	assert.Zero(t, hub.ConnectionCount())

	// Double unregister is a no-op.
	hub.UnregisterClient(clients[0])
	assert.Zero(t, hub.ConnectionCount())
}

func TestHub_BroadcastReachesOnlyTargetUser(t *testing.T) {
	hub := NewHub()

	alice, err := hub.Register(1, nil)
	require.NoError(t, err)
	bob, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, "hello alice")

	select {
	case msg := <-alice.Send:
		assert.Equal(t, "hello alice", string(msg))
	default:
		t.Fatal("alice received nothing")
	}
	select {
	case <-bob.Send:
		t.Fatal("bob should not receive alice's event")
	default:
	}
}

type circleMembersStub struct {
	repository.CircleRepository
	members map[uint][]uint
}

func (s *circleMembersStub) MemberIDs(_ context.Context, circleID uint) ([]uint, error) {
	return s.members[circleID], nil
}

type postAuthorStub struct {
	repository.PostRepository
	authorID uint
}

func (s *postAuthorStub) GetByID(_ context.Context, id uint) (*models.Post, error) {
	return &models.Post{ID: id, AuthorID: s.authorID}, nil
}

func newFeedTestSetup(t *testing.T) (*redis.Client, *Hub) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, NewHub()
}

func TestFeedNotifier_PublicPostBroadcasts(t *testing.T) {
	rdb, hub := newFeedTestSetup(t)
	n := NewFeedNotifier(rdb, &circleMembersStub{}, &postAuthorStub{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	stranger, err := hub.Register(99, nil)
	require.NoError(t, err)

	n.PostCreated(ctx, &models.Post{ID: 1, AuthorID: 1, Content: "hi", IsPublic: true})

	assert.Eventually(t, func() bool {
		select {
		case msg := <-stranger.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			return ev.Type == "post.created"
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
}

func TestFeedNotifier_CirclePostReachesMembersOnly(t *testing.T) {
	rdb, hub := newFeedTestSetup(t)
	circles := &circleMembersStub{members: map[uint][]uint{10: {2}}}
	n := NewFeedNotifier(rdb, circles, &postAuthorStub{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	member, err := hub.Register(2, nil)
	require.NoError(t, err)
	stranger, err := hub.Register(3, nil)
	require.NoError(t, err)

	n.PostCreated(ctx, &models.Post{ID: 1, AuthorID: 1, Content: "scoped", CircleIDs: []uint{10}})

	assert.Eventually(t, func() bool {
		select {
		case <-member.Send:
			return true
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)

	assert.Never(t, func() bool {
		select {
		case <-stranger.Send:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, testPollInterval)
}

func TestFeedNotifier_CommentNotifiesPostAuthor(t *testing.T) {
	rdb, hub := newFeedTestSetup(t)
	n := NewFeedNotifier(rdb, &circleMembersStub{}, &postAuthorStub{authorID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	author, err := hub.Register(1, nil)
	require.NoError(t, err)

	n.CommentAdded(ctx, &models.Comment{ID: 5, PostID: 1, AuthorID: 2, Content: "nice"})

	assert.Eventually(t, func() bool {
		select {
		case msg := <-author.Send:
			var ev Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			return ev.Type == "comment.added"
		default:
			return false
		}
	}, testEventuallyTimeout, testPollInterval)
}

func TestFeedNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewFeedNotifier(nil, nil, nil)
	n.PostCreated(context.Background(), &models.Post{ID: 1})
	n.CommentAdded(context.Background(), &models.Comment{ID: 1})
	assert.NoError(t, n.StartSubscriber(context.Background(), nil))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "feed:user:1", UserChannel(1))
	assert.Equal(t, "feed:user:100", UserChannel(100))
}

func TestFeedNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb, _ := newFeedTestSetup(t)
	n := NewFeedNotifier(rdb, &circleMembersStub{}, &postAuthorStub{})

	ctx, cancel := context.WithCancel(context.Background())
	var received int32
	require.NoError(t, n.StartSubscriber(ctx, func(_, _ string) {
		atomic.AddInt32(&received, 1)
	}))

	require.NoError(t, rdb.Publish(context.Background(), broadcastChannel, "before").Err())
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, testEventuallyTimeout, testPollInterval)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, rdb.Publish(context.Background(), broadcastChannel, "after").Err())
	assert.Never(t, func() bool {
		return atomic.LoadInt32(&received) > 1
	}, 200*time.Millisecond, testPollInterval)
}
