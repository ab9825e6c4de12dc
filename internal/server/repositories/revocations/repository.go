// Package revocations stores the IDs of access tokens that were logged out
// before they expired.
package revocations

import (
	"context"
	"time"
)

type Repository interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is a no-op.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
