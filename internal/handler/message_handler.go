// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"chat_server/internal/dto/request"
	"chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler 创建消息处理器实例
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// Send 发送消息
// POST /messages/send
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.Send(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// GetConversation 私聊记录
// GET /messages/conversation/:targetUserId?limit&skip
func (h *MessageHandler) GetConversation(c *gin.Context) {
	var page request.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetConversation(c.Request.Context(), currentUserID(c), c.Param("targetUserId"), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetGroupConversation 群聊记录
// GET /messages/group/:groupId?limit&skip
func (h *MessageHandler) GetGroupConversation(c *gin.Context) {
	var page request.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.GetGroupConversation(c.Request.Context(), currentUserID(c), c.Param("groupId"), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetRecentConversations 最近会话
// GET /messages/recent-conversations
func (h *MessageHandler) GetRecentConversations(c *gin.Context) {
	data, err := h.messageSvc.GetRecentConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkAsRead 标记某人发来的消息为已读
// PUT /messages/mark-read/:senderId
func (h *MessageHandler) MarkAsRead(c *gin.Context) {
	data, err := h.messageSvc.MarkAsRead(c.Request.Context(), currentUserID(c), c.Param("senderId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Delete 删除消息
// DELETE /messages/:messageId
func (h *MessageHandler) Delete(c *gin.Context) {
	if err := h.messageSvc.Delete(c.Request.Context(), c.Param("messageId"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
