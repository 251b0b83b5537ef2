package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignupGuard_KeyNormalisesEmail(t *testing.T) {
	g := NewSignupGuard(nil)

	assert.Equal(t, "signup:alice@example.com", g.key("  Alice@Example.com "))
	assert.Equal(t, g.key("bob@example.com"), g.key("BOB@example.com"))
}

func TestSignupGuard_AcquireReportsUnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	release, ok, err := NewSignupGuard(client).Acquire(context.Background(), "alice@example.com")

	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
}

func TestConnect_FailsWhenServerUnreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}
