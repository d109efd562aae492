package middleware

import (
	"fmt"
	"net/http"
	"time"

	"tutor-service/metrics"
	"tutor-service/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RateLimitCookie = "n2e_rl"
	rateLimitMaxAge = 7 * 24 * 3600
)

// RateLimiter keeps a fixed-window request counter in a signed cookie, so
// the server holds no per-client state. A missing, forged or unreadable
// cookie starts a fresh window.
type RateLimiter struct {
	window      time.Duration
	maxRequests int
	secret      []byte
	secure      bool
	now         func() time.Time
}

type windowState struct {
	Start int64
	Count int
}

func NewRateLimiter(window time.Duration, maxRequests int, secret string, secure bool) *RateLimiter {
	return &RateLimiter{
		window:      window,
		maxRequests: maxRequests,
		secret:      []byte(secret),
		secure:      secure,
		now:         time.Now,
	}
}

// Middleware rejects the request with 429 once the window is full, and
// otherwise records it and lets it through.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryIn := rl.Allow(c)
		if !allowed {
			windowSeconds := int(rl.window.Seconds())
			log.WithFields(log.Fields{
				"client_ip": c.ClientIP(),
				"path":      c.Request.URL.Path,
				"retry_in":  retryIn,
			}).Warn("ratelimit.rejected")
			metrics.RateLimitedTotal.Inc()

			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.RateLimitedResponse{
				Error:         "rate_limited",
				Message:       fmt.Sprintf("Too many requests. Try again in %ds.", retryIn),
				WindowSeconds: windowSeconds,
				MaxRequests:   rl.maxRequests,
			})
			return
		}
		c.Next()
	}
}

// Allow reads the window from the request cookie, and when the request fits
// writes the incremented window back. retryIn is the number of seconds until
// the window resets.
func (rl *RateLimiter) Allow(c *gin.Context) (allowed bool, retryIn int64) {
	now := rl.now().Unix()
	windowSeconds := int64(rl.window.Seconds())

	st := rl.read(c, now)
	if now-st.Start >= windowSeconds {
		st = windowState{Start: now}
	}

	if st.Count >= rl.maxRequests {
		return false, max(0, windowSeconds-(now-st.Start))
	}

	st.Count++
	if err := rl.write(c, st); err != nil {
		// The request still goes through; the client just keeps its old window.
		log.WithError(err).Error("ratelimit.cookie.sign")
	}
	return true, 0
}

func (rl *RateLimiter) read(c *gin.Context, now int64) windowState {
	fresh := windowState{Start: now}

	raw, err := c.Cookie(RateLimitCookie)
	if err != nil || raw == "" {
		return fresh
	}

	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return rl.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return fresh
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fresh
	}
	start, ok1 := claims["s"].(float64)
	count, ok2 := claims["c"].(float64)
	if !ok1 || !ok2 {
		return fresh
	}
	return windowState{Start: int64(start), Count: int(count)}
}

func (rl *RateLimiter) write(c *gin.Context, st windowState) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"s": st.Start,
		"c": st.Count,
	})
	signed, err := token.SignedString(rl.secret)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RateLimitCookie, signed, rateLimitMaxAge, "/", "", rl.secure, true)
	return nil
}
