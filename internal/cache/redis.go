package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/investhub/backend/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	RedisTypeSingle  = "redis"
	RedisTypeCluster = "redisCluster"
)

const (
	pingTimeout = 1500 * time.Millisecond
	ioTimeout   = time.Second
)

// NewRedis connects to a single node or a cluster depending on cfg.Type and
// fails fast when the server does not answer a PING.
func NewRedis(cfg config.Cache) (redis.UniversalClient, error) {
	var client redis.UniversalClient

	switch cfg.Type {
	case RedisTypeSingle:
		client = redis.NewClient(&redis.Options{
			Addr:            cfg.Redis.Address,
			Password:        cfg.Redis.Password,
			PoolSize:        cfg.Redis.PoolSize,
			ConnMaxIdleTime: 170 * time.Second,
			DialTimeout:     ioTimeout,
			ReadTimeout:     ioTimeout,
			WriteTimeout:    ioTimeout,
		})
	case RedisTypeCluster:
		// session reads must see their own writes, so replicas are never read
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:           cfg.RedisCluster.Addresses,
			Password:        cfg.RedisCluster.Password,
			PoolSize:        cfg.RedisCluster.PoolSize,
			ConnMaxLifetime: 15 * time.Minute,
			DialTimeout:     ioTimeout,
			ReadTimeout:     ioTimeout,
			WriteTimeout:    ioTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown redis type %q", cfg.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}
