package ratelimit

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/aixcyberchallenge/data-form/internal/logger"
	"github.com/aixcyberchallenge/data-form/internal/types"
)

const (
	keyPrefix = "dataform-ratelimit-"
	window    = 60 * time.Second
)

// Fixed one minute window per identifier, shared by every server pointed at the same Redis
type RedisLimiterStore struct {
	db         redis.Cmdable
	limiterKey string
	perMinute  int64
	failOpen   bool
}

var _ middleware.RateLimiterStore = (*RedisLimiterStore)(nil)

type RedisLimiterConfig struct {
	RedisClient redis.Cmdable
	LimiterKey  string
	PerMinute   int64
	FailOpen    bool
}

func NewRedisLimitStore(config RedisLimiterConfig) *RedisLimiterStore {
	return &RedisLimiterStore{
		db:         config.RedisClient,
		limiterKey: config.LimiterKey,
		perMinute:  config.PerMinute,
		failOpen:   config.FailOpen,
	}
}

// Opens the window when missing, spends one request and returns what is left.
// A counter without an expiry gets one so a client can never be locked out for good.
var spendScript = redis.NewScript(`
redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2], "NX")
local left = redis.call("DECR", KEYS[1])
if redis.call("TTL", KEYS[1]) < 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[2])
end
return left
`)

func (store *RedisLimiterStore) Allow(identifier string) (bool, error) {
	ctx := context.Background()

	key := keyPrefix + store.limiterKey + "-" + identifier

	left, err := spendScript.Run(ctx, store.db, []string{key}, store.perMinute, int64(window.Seconds())).Int64()
	if err != nil {
		return store.failOpen, err
	}

	return left >= 0, nil
}

// NewRedisLimiter limits requests per client IP. Only `methods` are counted when given.
func NewRedisLimiter(
	rdb redis.Cmdable,
	limiterKey string,
	perMinute int64,
	failOpen bool,
	methods ...string,
) middleware.RateLimiterConfig {
	store := NewRedisLimitStore(RedisLimiterConfig{
		RedisClient: rdb,
		LimiterKey:  limiterKey,
		PerMinute:   perMinute,
		FailOpen:    failOpen,
	})

	skipper := middleware.DefaultSkipper
	if len(methods) > 0 {
		skipper = func(c echo.Context) bool {
			for _, m := range methods {
				if c.Request().Method == m {
					return false
				}
			}
			return true
		}
	}

	return middleware.RateLimiterConfig{
		Skipper: skipper,
		Store:   store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Logger.Warn("could not identify client for rate limit", "error", err)
			return c.JSON(http.StatusForbidden, types.StringError("forbidden"))
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				logger.Logger.Error("rate limiter store failed", "identifier", identifier, "error", err)
			}
			return c.JSON(http.StatusTooManyRequests, types.StringError("too many requests"))
		},
	}
}
