package router

import (
	"github.com/gin-gonic/gin"
)

func (rt *Router) registerContactRoutes(r *gin.Engine) {
	contactGroup := r.Group("/contacts", rt.auth)
	{
		contactGroup.POST("/friend-request", rt.h.Contact.SendRequest)
		contactGroup.PUT("/friend-request/:contactId/accept", rt.h.Contact.Accept)
		contactGroup.PUT("/friend-request/:contactId/reject", rt.h.Contact.Reject)
		contactGroup.GET("/friends", rt.h.Contact.ListFriends)
		contactGroup.GET("/pending-requests", rt.h.Contact.ListPending)
		contactGroup.PUT("/friend/:contactId/note", rt.h.Contact.UpdateNote)
		contactGroup.PUT("/friend/:contactId/group", rt.h.Contact.UpdateGroup)
		contactGroup.PUT("/friend/:contactId/pin", rt.h.Contact.SetPinned)
		contactGroup.DELETE("/friend/:contactId", rt.h.Contact.RemoveFriend)
	}
}
