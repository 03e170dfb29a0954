package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chat_server/pkg/errorx"
	"chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserChecker 确认 token 对应的用户仍存在
type UserChecker interface {
	Exists(ctx context.Context, userId string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 验证 Access Token 并将用户 id 存入上下文（key: user_id）
func JWTAuth(checker UserChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 获取 Token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "请先登录")
			return
		}

		// 2. 解析 Bearer Token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			abortUnauthorized(c, "Token 格式错误，请使用 Bearer Token")
			return
		}

		// 3. 验证 Token，Refresh Token 不能用于访问接口
		claims, err := jwt.ParseAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrWrongTokenType) {
				abortUnauthorized(c, "请使用 Access Token 访问此接口")
				return
			}
			abortUnauthorized(c, "Token 已过期或无效，请重新登录")
			return
		}

		// 4. 用户必须仍然存在
		if checker != nil {
			exists, err := checker.Exists(c.Request.Context(), claims.UserID)
			if err != nil {
				zap.L().Error("check token user failed", zap.String("user_id", claims.UserID), zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"code":    errorx.CodeServerBusy,
					"message": errorx.ErrServerBusy.Msg,
				})
				return
			}
			if !exists {
				abortUnauthorized(c, "用户不存在，请重新登录")
				return
			}
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"code":    errorx.CodeUnauthorized,
		"message": msg,
	})
}
