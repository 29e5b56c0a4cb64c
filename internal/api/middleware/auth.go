package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/im-delivery/internal/auth"
	"github.com/d60-Lab/im-delivery/pkg/response"
)

const userIDKey = "userID"

// Auth 校验 Authorization: Bearer <token>，把用户 id 写入上下文
func Auth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := tokens.FromHeader(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, "missing or invalid token")
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID 当前请求的用户，未经过 Auth 时为空
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
