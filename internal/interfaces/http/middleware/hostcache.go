package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/candlepin/candlepin-sub005/internal/domain/consumer"
)

// HostCache gives every request its own guest to host memo.
func HostCache(size int) gin.HandlerFunc {
	return func(c *gin.Context) {
		cache := consumer.NewHostCache(size)
		c.Request = c.Request.WithContext(consumer.WithHostCache(c.Request.Context(), cache))
		c.Next()
	}
}
