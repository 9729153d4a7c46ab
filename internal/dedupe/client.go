package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ytakada1021/video-convert-aws-lambda/internal/config"
)

// Build connects to Redis, trying cluster mode first and falling back to the
// first reachable single node.
func Build(ctx context.Context, cfg *config.RedisConfig, log zerolog.Logger) (redis.UniversalClient, error) {
	cl, err := newClusterClient(ctx, cfg)
	if err == nil {
		return cl, nil
	}

	clusterErr := err
	single, err := newClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create redis client: %w", err)
	}
	log.Info().Err(clusterErr).Msg("redis: cluster client failed; using single-node client")
	return single, nil
}

func newClusterClient(ctx context.Context, cfg *config.RedisConfig) (*redis.ClusterClient, error) {
	if len(cfg.Nodes) < 1 {
		return nil, errors.New("no nodes defined")
	}

	nodeAddrs := make([]string, 0, len(cfg.Nodes))
	for _, node := range cfg.Nodes {
		nodeAddrs = append(nodeAddrs, node.Addr())
	}

	cl := redis.NewClusterClient(&redis.ClusterOptions{
		RouteByLatency: true,
		Password:       cfg.Password,
		Addrs:          nodeAddrs,
		DialTimeout:    cfg.DialTimeout,
		PoolSize:       4,
		PoolTimeout:    5 * time.Second,
		MaxRetries:     2,
	})

	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("error pinging redis cluster: %w", err)
	}
	return cl, nil
}

func newClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	var stickyErr = errors.New("no nodes defined")

	for _, node := range cfg.Nodes {
		cl := redis.NewClient(&redis.Options{
			Addr:        node.Addr(),
			Password:    cfg.Password,
			DB:          cfg.DatabaseID,
			DialTimeout: cfg.DialTimeout,
		})

		if err := cl.Ping(ctx).Err(); err != nil {
			_ = cl.Close()
			stickyErr = fmt.Errorf("error pinging redis server: %w", err)
			continue
		}
		return cl, nil
	}
	return nil, stickyErr
}
