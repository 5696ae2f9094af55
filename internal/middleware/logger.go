package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request once the handler has finished.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		icon := "➡️"
		if status >= 500 {
			icon = "❌"
		} else if status >= 400 {
			icon = "⚠️"
		}

		log.Printf("%s %s %s %d %dms %s", icon, method, path, status,
			time.Since(start).Milliseconds(), c.ClientIP())
	}
}
