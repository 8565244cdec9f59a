package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	identityKeyPrefix = "identity:%d"
)

// IdentityTTL bounds how long a cached identity record may be served.
// Identities are immutable after signup except for deletion, which
// invalidates eagerly; visibility-relevant state (circles, memberships,
// posts) is never cached.
const IdentityTTL = 5 * time.Minute

func IdentityKey(id uint) string {
	return fmt.Sprintf(identityKeyPrefix, id)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateIdentity(ctx context.Context, id uint) {
	Invalidate(ctx, IdentityKey(id))
}
