// Package dedupe guards against S3 delivering the same notification twice.
// A record is claimed in Redis before its job is submitted; a second claim
// of the same record within the TTL fails.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Guard struct {
	Redis     redis.UniversalClient
	Namespace string
	TTL       time.Duration
}

func NewGuard(namespace string, ttl time.Duration, redisCl redis.UniversalClient) *Guard {
	return &Guard{
		Namespace: namespace,
		TTL:       ttl,
		Redis:     redisCl,
	}
}

func (g *Guard) key(id string) string {
	return g.Namespace + ":" + id
}

// Claim returns true when id was not claimed before.
func (g *Guard) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := g.Redis.SetNX(ctx, g.key(id), time.Now().UTC().Format(time.RFC3339), g.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	return ok, nil
}

// Release drops a claim so a failed submission can be redelivered.
func (g *Guard) Release(ctx context.Context, id string) error {
	if err := g.Redis.Del(ctx, g.key(id)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", id, err)
	}
	return nil
}
