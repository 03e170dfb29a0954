// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含用户基本资料和认证信息
package model

import (
	"strings"

	"golang.org/x/crypto/bcrypt" // 密码哈希库
	"gorm.io/gorm"
)

// UserStatus 在线状态
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
	UserStatusAway    UserStatus = "away"
	UserStatusBusy    UserStatus = "busy"
)

// Valid 是否为合法状态值
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusOnline, UserStatusOffline, UserStatusAway, UserStatusBusy:
		return true
	}
	return false
}

// UserInfo 用户信息模型
// 对应数据库 user_info 表，注册后只会被资料更新修改，不做硬删除
type UserInfo struct {
	gorm.Model // ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 用户唯一标识，对外暴露的 id
	// 格式：U + 日期 + 随机串，如 "U241230AbCdE123456"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	// Email 登录邮箱，入库前统一转小写并去掉首尾空白
	Email string `gorm:"column:email;uniqueIndex;type:varchar(100);not null;comment:邮箱"`

	Nickname  string `gorm:"column:nickname;type:varchar(50);comment:昵称"`
	Avatar    string `gorm:"column:avatar;type:varchar(255);comment:头像"`
	Signature string `gorm:"column:signature;type:varchar(100);comment:个性签名"`

	// Password bcrypt 哈希，不存储明文
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	Status UserStatus `gorm:"column:status;type:varchar(10);not null;default:away;comment:在线状态"`

	// RawPassword 明文密码（不存入数据库）
	// 在 BeforeSave 中加密后写入 Password
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}

// NormalizeEmail 邮箱统一格式，查询与入库都走这里
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeSave GORM Hook：在创建和更新前自动调用
// 规范化邮箱，并将 RawPassword 加密后存入 Password
func (u *UserInfo) BeforeSave(tx *gorm.DB) (err error) {
	u.Email = NormalizeEmail(u.Email)
	if u.Status == "" {
		u.Status = UserStatusAway
	}
	if u.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hash)
		u.RawPassword = "" // 清空明文，防止泄露
	}
	return nil
}

// CheckPassword 校验密码是否正确
func (u *UserInfo) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}

// DisplayName 昵称为空时退回邮箱 @ 前的部分
func (u *UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	if i := strings.IndexByte(u.Email, '@'); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}
