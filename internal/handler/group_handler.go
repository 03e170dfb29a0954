// Package handler 提供 HTTP 请求处理器
// 本文件处理群组相关的 API 请求
package handler

import (
	"chat_server/internal/dto/request"
	"chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// GroupHandler 群组请求处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建群组处理器实例
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// Create 创建群组
// POST /groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req request.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, data)
}

// ListMine 我加入的群
// GET /groups/my
func (h *GroupHandler) ListMine(c *gin.Context) {
	data, err := h.groupSvc.ListMyGroups(c.Request.Context(), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListPublic 公开群
// GET /groups/public?limit&skip
func (h *GroupHandler) ListPublic(c *gin.Context) {
	var page request.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.ListPublicGroups(c.Request.Context(), page)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Search 搜索群组
// GET /groups/search?q&limit
func (h *GroupHandler) Search(c *gin.Context) {
	var query request.SearchGroupsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.SearchGroups(c.Request.Context(), query)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// JoinByCode 邀请码入群
// POST /groups/join-by-code
func (h *GroupHandler) JoinByCode(c *gin.Context) {
	var req request.JoinByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.JoinByInviteCode(c.Request.Context(), currentUserID(c), req.InviteCode)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Detail 群详情
// GET /groups/:groupId
func (h *GroupHandler) Detail(c *gin.Context) {
	data, err := h.groupSvc.GetDetail(c.Request.Context(), c.Param("groupId"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Update 修改群资料与设置
// PUT /groups/:groupId
func (h *GroupHandler) Update(c *gin.Context) {
	var req request.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.Update(c.Request.Context(), c.Param("groupId"), currentUserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Delete 解散群组
// DELETE /groups/:groupId
func (h *GroupHandler) Delete(c *gin.Context) {
	if err := h.groupSvc.Delete(c.Request.Context(), c.Param("groupId"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Join 加入公开群
// POST /groups/:groupId/join
func (h *GroupHandler) Join(c *gin.Context) {
	data, err := h.groupSvc.Join(c.Request.Context(), c.Param("groupId"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Leave 退群
// POST /groups/:groupId/leave
func (h *GroupHandler) Leave(c *gin.Context) {
	if err := h.groupSvc.Leave(c.Request.Context(), c.Param("groupId"), currentUserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Invite 邀请成员
// POST /groups/:groupId/invite
func (h *GroupHandler) Invite(c *gin.Context) {
	var req request.InviteMembersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.groupSvc.Invite(c.Request.Context(), c.Param("groupId"), currentUserID(c), req.UserIds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// RemoveMember 踢出成员
// POST /groups/:groupId/remove
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	var req request.RemoveMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.groupSvc.RemoveMember(c.Request.Context(), c.Param("groupId"), currentUserID(c), req.UserId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UpdateRole 修改成员角色
// PUT /groups/:groupId/members/:userId/role
func (h *GroupHandler) UpdateRole(c *gin.Context) {
	var req request.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	err := h.groupSvc.UpdateRole(c.Request.Context(), c.Param("groupId"), currentUserID(c), c.Param("userId"), req.Role)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Mute 禁言成员，请求体可为空（永久禁言）
// PUT /groups/:groupId/members/:userId/mute
func (h *GroupHandler) Mute(c *gin.Context) {
	var req request.MuteMemberRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	err := h.groupSvc.MuteMember(c.Request.Context(), c.Param("groupId"), currentUserID(c), c.Param("userId"), req.DurationSeconds)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// Unmute 解除禁言
// DELETE /groups/:groupId/members/:userId/mute
func (h *GroupHandler) Unmute(c *gin.Context) {
	err := h.groupSvc.UnmuteMember(c.Request.Context(), c.Param("groupId"), currentUserID(c), c.Param("userId"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetInviteCode 查看邀请码
// GET /groups/:groupId/invite-code
func (h *GroupHandler) GetInviteCode(c *gin.Context) {
	data, err := h.groupSvc.GetInviteCode(c.Request.Context(), c.Param("groupId"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ResetInviteCode 重置邀请码
// POST /groups/:groupId/invite-code
func (h *GroupHandler) ResetInviteCode(c *gin.Context) {
	data, err := h.groupSvc.ResetInviteCode(c.Request.Context(), c.Param("groupId"), currentUserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
