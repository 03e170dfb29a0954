// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"chat_server/internal/handler"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器，持有 Handler 聚合与认证中间件
type Router struct {
	h    *handler.Handlers
	auth gin.HandlerFunc
}

// NewRouter 创建路由管理器，auth 为 JWT 认证中间件
func NewRouter(h *handler.Handlers, auth gin.HandlerFunc) *Router {
	return &Router{h: h, auth: auth}
}

// RegisterRoutes 按模块注册所有路由
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.registerAuthRoutes(r)    // 认证路由（Token 刷新、登出）
	rt.registerUserRoutes(r)    // 用户路由
	rt.registerContactRoutes(r) // 好友路由
	rt.registerMessageRoutes(r) // 消息路由
	rt.registerGroupRoutes(r)   // 群组路由
}
