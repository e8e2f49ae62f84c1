package limiter

import (
	"net/http"

	"queueroom/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Middleware rejects requests over the limit with 429. The key is the
// scope plus the client IP. Limiter failures let the request through.
func Middleware(l Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := l.Allow(c.Request.Context(), scope+":"+c.ClientIP())
		if err != nil {
			log.Warn().Err(err).Str("module", "limiter").Str("scope", scope).Msg("rate limiter unavailable")
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "Too many requests, please slow down.",
			})
			return
		}
		c.Next()
	}
}
