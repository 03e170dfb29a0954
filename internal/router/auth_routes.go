// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	{
		// 使用 Refresh Token 换取新的 Access Token
		authGroup.POST("/refresh", rt.h.Auth.Refresh)
		authGroup.POST("/logout", rt.auth, rt.h.Auth.Logout)
	}
}
