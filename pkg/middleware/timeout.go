package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds handler execution time. The intake path calls an
// external geo oracle, so its worst case must stay bounded even if that
// oracle misbehaves beyond its own timeout.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	return timeout.New(
		timeout.WithTimeout(d),
		timeout.WithResponse(func(c *gin.Context) {
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"success": false,
				"error":   "request timed out",
			})
		}),
	)
}
