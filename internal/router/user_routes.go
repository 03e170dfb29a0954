package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerUserRoutes(r *gin.Engine) {
	userGroup := r.Group("/users")

	// 公开接口 (无需认证)
	userGroup.POST("/register", rt.h.User.Register)
	userGroup.POST("/login", rt.h.User.Login)

	// 需要认证的接口
	authed := userGroup.Group("", rt.auth)
	{
		authed.GET("", rt.h.User.SearchUsers)
		authed.GET("/profile", rt.h.User.GetProfile)
		authed.PUT("/profile", rt.h.User.UpdateProfile)
		authed.POST("/avatar", rt.h.User.UploadAvatar)
	}
}
