// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package https_server

import (
	"chat_server/internal/config"                    // 配置管理
	"chat_server/internal/handler"                   // Handler 聚合对象
	"chat_server/internal/infrastructure/logger"     // 自定义日志中间件
	"chat_server/internal/infrastructure/middleware" // JWT、TLS 中间件
	"chat_server/internal/router"                    // 路由注册

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 创建 Gin 引擎
// 顺序：日志 -> panic 恢复 -> CORS -> TLS 重定向（可选）-> 静态资源 -> 业务路由
func Init(conf *config.Config, handlers *handler.Handlers, checker middleware.UserChecker) *gin.Engine {
	if conf.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	// 不使用 gin.Default()，以便完全控制中间件
	engine := gin.New()

	engine.Use(logger.GinLogger())
	// 参数 true 表示在日志中包含堆栈信息
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 处理 SSL 时关闭
	if conf.MainConfig.TLS {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	// 本地头像存储目录，启用 minio 时不会写入
	engine.Static("/static/avatars", conf.StaticAvatarPath)

	rt := router.NewRouter(handlers, middleware.JWTAuth(checker))
	rt.RegisterRoutes(engine)
	return engine
}
