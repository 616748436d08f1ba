package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pitapat/pkg/constants"
)

// RequestIDMiddleware 沿用上游的 X-Request-ID, 没有时生成
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(constants.HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(constants.ContextKeyRequestID, id)
		c.Header(constants.HeaderRequestID, id)
		c.Next()
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyRequestID)
}
