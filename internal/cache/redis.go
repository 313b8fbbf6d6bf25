package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// pingTimeout bounds the startup reachability check.
const pingTimeout = 2 * time.Second

// NewRedisClient connects to the Redis server at url
// ("redis://[:password@]host:port/db"). It returns nil when url is empty,
// malformed, or the server does not answer a ping; callers run without the
// cache in that case.
func NewRedisClient(ctx context.Context, url string, log *slog.Logger) *redis.Client {
	if url == "" {
		log.InfoContext(ctx, "event cache disabled: no redis url")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.WarnContext(ctx, "event cache disabled: bad redis url", "error", err)
		return nil
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WarnContext(ctx, "event cache disabled: redis unreachable", "addr", opts.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	log.InfoContext(ctx, "event cache enabled", "addr", opts.Addr)
	return client
}
