package request

// FriendRequestRequest 发送好友申请
type FriendRequestRequest struct {
	Email          string `json:"email" binding:"required,email"`
	RequestMessage string `json:"requestMessage" binding:"omitempty,max=200"`
}

// RejectFriendRequest 拒绝好友申请
type RejectFriendRequest struct {
	RejectReason string `json:"rejectReason" binding:"omitempty,max=200"`
}

// UpdateNoteRequest 修改好友备注，空串表示清除
type UpdateNoteRequest struct {
	Note *string `json:"note" binding:"required,max=50"`
}

// UpdateFriendGroupRequest 修改好友分组
type UpdateFriendGroupRequest struct {
	Group string `json:"group" binding:"required,max=50"`
}

// SetPinnedRequest 置顶或取消置顶
type SetPinnedRequest struct {
	Pinned *bool `json:"pinned" binding:"required"`
}
