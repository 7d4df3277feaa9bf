package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joy095/venue/logger"
	"github.com/joy095/venue/utils"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiters builds per-route limiters. With a nil Redis client limits are kept
// in process memory, which is enough for a single instance and for tests.
type RateLimiters struct {
	Redis *redis.Client
}

func NewRateLimiters(rdb *redis.Client) *RateLimiters {
	return &RateLimiters{Redis: rdb}
}

// rateKey identifies the caller: the verified actor when present, else the client IP.
func rateKey(c *gin.Context) string {
	if actor, err := utils.GetActorFromContext(c); err == nil {
		return actor.UserID.String()
	}
	return c.ClientIP()
}

func (rl *RateLimiters) createStore(routeID string, period time.Duration) (limiter.Store, error) {
	options := limiter.StoreOptions{
		Prefix:          fmt.Sprintf("rate_limiter:%s", routeID),
		MaxRetry:        3,
		CleanUpInterval: period,
	}
	if rl.Redis == nil {
		return memory.NewStoreWithOptions(options), nil
	}

	store, err := redisstore.NewStoreWithOptions(rl.Redis, options)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis store for route %s: %w", routeID, err)
	}
	return store, nil
}

// ParseCustomRate allows formats like "10-2m", "30-20m", "5-1h", "20-10s".
func ParseCustomRate(rateStr string) (limiter.Rate, error) {
	parts := strings.Split(rateStr, "-")
	if len(parts) != 2 {
		return limiter.Rate{}, fmt.Errorf("invalid rate format: %s", rateStr)
	}

	limit, err := strconv.Atoi(parts[0])
	if err != nil || limit <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid limit: %s", parts[0])
	}

	durationStr := parts[1]
	var unit time.Duration
	switch {
	case strings.HasSuffix(durationStr, "s"):
		unit = time.Second
	case strings.HasSuffix(durationStr, "m"):
		unit = time.Minute
	case strings.HasSuffix(durationStr, "h"):
		unit = time.Hour
	default:
		return limiter.Rate{}, fmt.Errorf("unsupported period: %s", durationStr)
	}

	n, err := strconv.Atoi(durationStr[:len(durationStr)-1])
	if err != nil || n <= 0 {
		return limiter.Rate{}, fmt.Errorf("invalid duration: %s", durationStr)
	}

	return limiter.Rate{Period: time.Duration(n) * unit, Limit: int64(limit)}, nil
}

func (rl *RateLimiters) newLimiter(rateStr, routeID string) (*limiter.Limiter, error) {
	rate, err := ParseCustomRate(rateStr)
	if err != nil {
		return nil, fmt.Errorf("error parsing rate for route %s: %w", routeID, err)
	}
	store, err := rl.createStore(routeID, rate.Period)
	if err != nil {
		return nil, err
	}
	return limiter.New(store, rate), nil
}

// NewRateLimiter limits a route to rateStr per caller.
func (rl *RateLimiters) NewRateLimiter(rateStr, routeID string) gin.HandlerFunc {
	lim, err := rl.newLimiter(rateStr, routeID)
	if err != nil {
		logger.ErrorLogger.Errorf("Rate limiter disabled for route %s: %v", routeID, err)
		return func(c *gin.Context) { c.Next() }
	}
	return ginmiddleware.NewMiddleware(lim, ginmiddleware.WithKeyGetter(rateKey))
}

// CombinedRateLimiter enforces several windows at once, e.g. "5-1m" and "20-10m".
func (rl *RateLimiters) CombinedRateLimiter(routeID string, rateStrings ...string) gin.HandlerFunc {
	limiters := make([]*limiter.Limiter, 0, len(rateStrings))
	for i, rateStr := range rateStrings {
		lim, err := rl.newLimiter(rateStr, fmt.Sprintf("%s_%d", routeID, i))
		if err != nil {
			logger.ErrorLogger.Errorf("Rate limit %q disabled for route %s: %v", rateStr, routeID, err)
			continue
		}
		limiters = append(limiters, lim)
	}

	return func(c *gin.Context) {
		key := rateKey(c)
		for _, lim := range limiters {
			lc, err := lim.Get(c, key)
			if err != nil {
				logger.ErrorLogger.Errorf("Rate limiter store error on route %s: %v", routeID, err)
				continue
			}
			if lc.Reached {
				c.Header("X-RateLimit-Limit", strconv.FormatInt(lc.Limit, 10))
				c.Header("X-RateLimit-Remaining", "0")
				c.Header("X-RateLimit-Reset", strconv.FormatInt(lc.Reset, 10))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please slow down"})
				return
			}
		}
		c.Next()
	}
}
