package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"vendor-portal/infrastructure/logger"
)

// NewCache connects to Redis. A failed ping is reported but the client is
// still returned; callers treat it as best-effort.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not reachable")
		return client, err
	}
	return client, nil
}
