package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/infinitas/crm/internal/ratelimit"
)

// ClientIdentifier derives the rate-limit identity of a request from proxy
// headers, most trustworthy first. Requests with no usable header share one
// "anonymous" bucket rather than bypassing the limiter.
func ClientIdentifier(c echo.Context) string {
	if ip := strings.TrimSpace(c.Request().Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(c.Request().Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := c.Request().Header.Get("X-Forwarded-For"); fwd != "" {
		// Only the first hop; later entries are appended by proxies the
		// client does not control.
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return "anonymous"
}

// rateLimitBody is the JSON payload of a 429 response. It keeps the flat
// error/message/data shape clients already parse for other failures.
type rateLimitBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Limit enforces the tier's budget per client IP. Allowed requests carry
// X-RateLimit-* headers describing the remaining quota; denied requests get
// a 429 with Retry-After.
func Limit(limiter *ratelimit.Limiter, tier ratelimit.Tier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			res := limiter.Check("ip:"+ClientIdentifier(c), tier)
			setRateLimitHeaders(c, res)
			if !res.Allowed {
				return deny(c, res, "Rate limit exceeded",
					"Too many requests. Try again at "+res.ResetTime.Format(time.RFC3339))
			}
			return next(c)
		}
	}
}

// LimitWithUser enforces the tier's budget twice: once per client IP and,
// when userID returns a non-empty ID, once per user. Both checks must pass.
// The per-user check runs only after the IP check passes, so a request
// rejected by IP does not burn user quota.
func LimitWithUser(limiter *ratelimit.Limiter, tier ratelimit.Tier, userID func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ipRes := limiter.Check("ip:"+ClientIdentifier(c), tier)
			setRateLimitHeaders(c, ipRes)
			if !ipRes.Allowed {
				return deny(c, ipRes, "Rate limit exceeded",
					"Too many requests. Try again at "+ipRes.ResetTime.Format(time.RFC3339))
			}

			if uid := userID(c); uid != "" {
				userRes := limiter.Check("user:"+uid, tier)
				setRateLimitHeaders(c, userRes)
				if !userRes.Allowed {
					return deny(c, userRes, "User rate limit exceeded",
						"You have made too many requests. Please try again later.")
				}
			}
			return next(c)
		}
	}
}

func setRateLimitHeaders(c echo.Context, res ratelimit.Result) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))
}

func deny(c echo.Context, res ratelimit.Result, errMsg, message string) error {
	retryAfter := int(time.Until(res.ResetTime).Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
	return c.JSON(http.StatusTooManyRequests, rateLimitBody{
		Error:   errMsg,
		Message: message,
		Data:    nil,
	})
}
