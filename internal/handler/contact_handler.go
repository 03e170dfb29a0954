// Package handler 提供 HTTP 请求处理器
// 本文件处理好友关系相关的 API 请求
package handler

import (
	"chat_server/internal/dto/request"
	"chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ContactHandler 好友关系请求处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler 创建好友关系处理器实例
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// SendRequest 发送好友申请
// POST /contacts/friend-request
func (h *ContactHandler) SendRequest(c *gin.Context) {
	var req request.FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.SendRequest(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// Accept 同意好友申请
// PUT /contacts/friend-request/:contactId/accept
func (h *ContactHandler) Accept(c *gin.Context) {
	data, err := h.contactSvc.Accept(c.Request.Context(), c.Param("contactId"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Reject 拒绝好友申请，请求体可为空
// PUT /contacts/friend-request/:contactId/reject
func (h *ContactHandler) Reject(c *gin.Context) {
	var req request.RejectFriendRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	data, err := h.contactSvc.Reject(c.Request.Context(), c.Param("contactId"), currentUserID(c), req.RejectReason)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListFriends 好友列表
// GET /contacts/friends
func (h *ContactHandler) ListFriends(c *gin.Context) {
	data, err := h.contactSvc.ListFriends(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListPending 待处理申请
// GET /contacts/pending-requests
func (h *ContactHandler) ListPending(c *gin.Context) {
	data, err := h.contactSvc.ListPending(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateNote 修改备注
// PUT /contacts/friend/:contactId/note
func (h *ContactHandler) UpdateNote(c *gin.Context) {
	var req request.UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.UpdateNote(c.Request.Context(), c.Param("contactId"), currentUserID(c), *req.Note)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateGroup 修改好友分组
// PUT /contacts/friend/:contactId/group
func (h *ContactHandler) UpdateGroup(c *gin.Context) {
	var req request.UpdateFriendGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.UpdateGroupLabel(c.Request.Context(), c.Param("contactId"), currentUserID(c), req.Group)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SetPinned 置顶好友
// PUT /contacts/friend/:contactId/pin
func (h *ContactHandler) SetPinned(c *gin.Context) {
	var req request.SetPinnedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.SetPinned(c.Request.Context(), c.Param("contactId"), currentUserID(c), *req.Pinned)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveFriend 删除好友
// DELETE /contacts/friend/:contactId
func (h *ContactHandler) RemoveFriend(c *gin.Context) {
	if err := h.contactSvc.RemoveFriend(c.Request.Context(), c.Param("contactId"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
