package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/messages", rt.auth)
	{
		messageGroup.GET("/recent-conversations", rt.h.Message.GetRecentConversations)
		messageGroup.GET("/conversation/:targetUserId", rt.h.Message.GetConversation)
		messageGroup.GET("/group/:groupId", rt.h.Message.GetGroupConversation)
		messageGroup.POST("/send", rt.h.Message.Send)
		messageGroup.PUT("/mark-read/:senderId", rt.h.Message.MarkAsRead)
		messageGroup.DELETE("/:messageId", rt.h.Message.Delete)
	}
}
