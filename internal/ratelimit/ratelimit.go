package ratelimit

import (
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterstdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewIntentLimiter builds a redis-backed rate limit middleware for the
// payment-intent endpoint.
func NewIntentLimiter(rdb *redis.Client, period time.Duration, limit int64) (func(http.Handler) http.Handler, error) {
	store, err := limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix: "ratelimit:payment-intent",
	})
	if err != nil {
		return nil, err
	}
	instance := limiter.New(store, limiter.Rate{Period: period, Limit: limit})
	mw := limiterstdlib.NewMiddleware(instance)
	return mw.Handler, nil
}
