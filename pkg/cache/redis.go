package cache

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/se-evidence-api/pkg/config"
)

// A timed-out cache call counts as a miss and falls through to postgres.
const (
	dialTimeout = 2 * time.Second
	ioTimeout   = 500 * time.Millisecond
)

// NewRedis connects the search-result cache and pings it within ctx.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}
