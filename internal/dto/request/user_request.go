package request

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=100"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Nickname string `json:"nickname" binding:"omitempty,max=50"`
}

// LoginRequest 邮箱密码登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Access Token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateProfileRequest 修改资料，未传的字段保持不变
type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname" binding:"omitempty,max=50"`
	Signature *string `json:"signature" binding:"omitempty,max=100"`
	Status    *string `json:"status" binding:"omitempty,oneof=online offline away busy"`
}

// SearchUsersQuery 用户搜索
type SearchUsersQuery struct {
	Search string `form:"search" binding:"omitempty,max=100"`
}
