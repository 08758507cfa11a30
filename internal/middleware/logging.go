package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingMiddleware 日志中间件，健康检查不记录
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[%s] %s | Status: %d | Latency: %v | IP: %s",
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Printf("Warning: %s %s errors: %s", c.Request.Method, path, c.Errors.String())
		}
	}
}
