package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const signupLockTTL = 30 * time.Second

// SignupGuard holds a short-lived per-email lock while a signup runs, closing
// the window between the existence check and the insert.
// Key format: signup:<lowercased email>
type SignupGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSignupGuard creates a SignupGuard wrapping the given Redis client.
func NewSignupGuard(client *redis.Client) *SignupGuard {
	return &SignupGuard{client: client, ttl: signupLockTTL}
}

// Acquire takes the lock for email. ok is false when another signup holds it.
// The returned release func is nil unless ok is true.
func (g *SignupGuard) Acquire(ctx context.Context, email string) (func(), bool, error) {
	key := g.key(email)
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("signup lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = g.client.Del(ctx, key).Err()
	}
	return release, true, nil
}

func (g *SignupGuard) key(email string) string {
	return "signup:" + strings.ToLower(strings.TrimSpace(email))
}
