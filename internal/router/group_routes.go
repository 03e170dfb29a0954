package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerGroupRoutes(r *gin.Engine) {
	groupGroup := r.Group("/groups", rt.auth)
	{
		groupGroup.POST("", rt.h.Group.Create)
		groupGroup.GET("/my", rt.h.Group.ListMine)
		groupGroup.GET("/public", rt.h.Group.ListPublic)
		groupGroup.GET("/search", rt.h.Group.Search)
		groupGroup.POST("/join-by-code", rt.h.Group.JoinByCode)

		groupGroup.GET("/:groupId", rt.h.Group.Detail)
		groupGroup.PUT("/:groupId", rt.h.Group.Update)
		groupGroup.DELETE("/:groupId", rt.h.Group.Delete)
		groupGroup.POST("/:groupId/join", rt.h.Group.Join)
		groupGroup.POST("/:groupId/leave", rt.h.Group.Leave)
		groupGroup.POST("/:groupId/invite", rt.h.Group.Invite)
		groupGroup.POST("/:groupId/remove", rt.h.Group.RemoveMember)
		groupGroup.PUT("/:groupId/members/:userId/role", rt.h.Group.UpdateRole)
		groupGroup.PUT("/:groupId/members/:userId/mute", rt.h.Group.Mute)
		groupGroup.DELETE("/:groupId/members/:userId/mute", rt.h.Group.Unmute)
		groupGroup.GET("/:groupId/invite-code", rt.h.Group.GetInviteCode)
		groupGroup.POST("/:groupId/invite-code", rt.h.Group.ResetInviteCode)
	}
}
