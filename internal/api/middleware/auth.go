package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
	"pitapat/pkg/responses"
)

// ExtractToken 取 Authorization 头, 去掉 Bearer 前缀. allowQuery 时也接受 ?token=, EventSource 无法设置请求头
func ExtractToken(c *gin.Context, allowQuery bool) string {
	header := strings.TrimSpace(c.GetHeader(constants.HeaderAuthorization))
	if header != "" {
		if len(header) >= len(constants.HeaderBearerPrefix) &&
			strings.EqualFold(header[:len(constants.HeaderBearerPrefix)], constants.HeaderBearerPrefix) {
			header = header[len(constants.HeaderBearerPrefix):]
		}
		return strings.TrimSpace(header)
	}
	if allowQuery {
		return strings.TrimSpace(c.Query("token"))
	}
	return ""
}

// TokenMiddleware 要求请求携带 token, 校验由业务层完成
func TokenMiddleware(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, allowQuery)
		if token == "" {
			responses.Error(c, pkgErrors.ErrMissingToken)
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyToken, token)
		c.Next()
	}
}

// GetToken 取中间件写入的 token
func GetToken(c *gin.Context) string {
	return c.GetString(constants.ContextKeyToken)
}
