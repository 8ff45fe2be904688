package ratelimit

import (
	"fmt"
	"net/http"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// Middleware builds a per-client-IP rate limiting middleware from a rate
// expression such as "120-M". With a Redis client the window is shared
// across replicas; without one it lives in process memory.
func Middleware(rate string, rdb *redis.Client) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}

	var store limiter.Store
	if rdb != nil {
		store, err = limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "splitbill:ratelimit"})
		if err != nil {
			return nil, fmt.Errorf("init limiter store: %w", err)
		}
	} else {
		store = memory.NewStore()
	}

	mw := limiterstdlib.NewMiddleware(limiter.New(store, parsed))
	return mw.Handler, nil
}
