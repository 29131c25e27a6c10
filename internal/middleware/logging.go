package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.Printf(
			"request_id=%s component=http method=%s path=%s surface=%s status=%d duration_ms=%d",
			GetRequestID(c),
			c.Request.Method,
			path,
			orDash(c.Param("surface")),
			c.Writer.Status(),
			time.Since(started).Milliseconds(),
		)
	}
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
