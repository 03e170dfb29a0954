package respond

import (
	"time"

	"chat_server/internal/model"
)

// UserProfile 用户公开资料
type UserProfile struct {
	Id        string           `json:"id"`
	Email     string           `json:"email"`
	Nickname  string           `json:"nickname"`
	Avatar    string           `json:"avatar"`
	Signature string           `json:"signature"`
	Status    model.UserStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

// NewUserProfile 由模型构造
func NewUserProfile(u *model.UserInfo) UserProfile {
	return UserProfile{
		Id:        u.Uuid,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Avatar:    u.Avatar,
		Signature: u.Signature,
		Status:    u.Status,
		CreatedAt: u.CreatedAt,
	}
}

// AuthRespond 注册、登录响应
type AuthRespond struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refreshToken"`
	User         UserProfile `json:"user"`
}

// RefreshRespond 刷新 Token 响应
type RefreshRespond struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// UserSearchItem 用户搜索结果
type UserSearchItem struct {
	Id        string           `json:"id"`
	Email     string           `json:"email"`
	Username  string           `json:"username"` // 昵称为空时为邮箱前缀
	Avatar    string           `json:"avatar"`
	Signature string           `json:"signature"`
	Status    model.UserStatus `json:"status"`
	Online    bool             `json:"online"`
	CreatedAt time.Time        `json:"createdAt"`
}
