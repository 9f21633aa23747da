package httptransport

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/observability"
	"storefront/internal/observability/logctx"
)

// Telemetry combines:
// - W3C Trace Context extraction
// - X-Request-ID generation + echo
// - request-scoped logger injection
// - HTTP metrics (counter + histogram) with low-cardinality labels
func Telemetry(tel observability.Telemetry) gin.HandlerFunc {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	log := tel.Logger()
	requests := tel.Counter(observability.MHTTPRequests)
	duration := tel.Histogram(observability.MHTTPRequestDuration)
	prop := otel.GetTextMapPropagator() // W3C by default

	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx := prop.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", rid)

		reqLog := log.With(
			observability.F("request_id", rid),
			observability.F("method", c.Request.Method),
			observability.F("route", route),
		)
		c.Request = c.Request.WithContext(logctx.With(ctx, reqLog))

		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start).Seconds()
		requests.Add(1,
			observability.L("method", c.Request.Method),
			observability.L("route", route),
			observability.L("status", strconv.Itoa(status)),
		)
		duration.Observe(elapsed,
			observability.L("method", c.Request.Method),
			observability.L("route", route),
		)

		entry := reqLog.With(
			observability.F("status", status),
			observability.F("duration_ms", time.Since(start).Milliseconds()),
		)
		if status >= http.StatusInternalServerError {
			entry.Error("http_request_done")
		} else {
			entry.Info("http_request_done")
		}
	}
}

// Sliding window over a redis sorted set, evaluated atomically.
// KEYS[1]=limiter key, ARGV: now, window start, window seconds, member, limit.
// Returns the count inside the window, or -1 when the limit is hit.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RateLimit throttles checkout attempts per client IP. Redis errors fail
// open so a limiter outage never blocks payments.
func RateLimit(rdb *rd.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:pay:ip:%s", c.ClientIP())

		now := time.Now().Unix()
		windowSec := int64(window.Seconds())
		windowStart := now - windowSec
		member := fmt.Sprintf("%d-%d", now, time.Now().UnixNano())

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			now, windowStart, windowSec, member, limit).Int()
		if err != nil {
			c.Next()
			return
		}

		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many payment attempts, try again later",
			})
			return
		}
		c.Next()
	}
}
