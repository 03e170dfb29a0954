// Package auth 提供认证相关的业务逻辑
// 处理 Token 刷新、登出与单点互踢校验
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chat_server/internal/dao/mysql/repository"
	myredis "chat_server/internal/dao/redis"
	"chat_server/internal/dto/respond"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/jwt"
)

// Service 认证服务实现
type Service struct {
	repos *repository.Repositories
	cache myredis.CacheService
}

// NewAuthService 创建认证服务实例
func NewAuthService(repos *repository.Repositories, cache myredis.CacheService) *Service {
	return &Service{
		repos: repos,
		cache: cache,
	}
}

// ValidateTokenID 验证用户的 Refresh Token ID 是否为最新签发的
func (s *Service) ValidateTokenID(ctx context.Context, userID, tokenID string) (bool, error) {
	validTokenID, err := s.cache.Get(ctx, constants.CACHE_KEY_USER_TOKEN+userID)
	if err != nil {
		return false, err
	}
	if validTokenID == "" {
		return false, nil
	}
	return tokenID == validTokenID, nil
}

// Refresh 用 Refresh Token 换取新的双 Token，旧 Refresh Token 随即失效
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.RefreshRespond, error) {
	claims, err := jwt.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errorx.New(errorx.CodeUnauthorized, "Refresh Token 无效或已过期")
	}
	ok, err := s.ValidateTokenID(ctx, claims.UserID, claims.TokenID)
	if err != nil {
		zap.L().Error("validate token id failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeUnauthorized, "账号已在其他地方登录，请重新登录")
	}
	exists, err := s.repos.User.Exists(ctx, claims.UserID)
	if err != nil {
		zap.L().Error("check user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !exists {
		return nil, errorx.New(errorx.CodeUnauthorized, "用户不存在")
	}

	accessToken, err := jwt.GenerateAccessToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	newRefresh, tokenID, err := jwt.GenerateRefreshToken(claims.UserID)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err := s.cache.Set(ctx, constants.CACHE_KEY_USER_TOKEN+claims.UserID, tokenID, ttl); err != nil {
		zap.L().Error("存储 Token ID 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RefreshRespond{Token: accessToken, RefreshToken: newRefresh}, nil
}

// Logout 删除 Refresh Token ID，之后无法再刷新
func (s *Service) Logout(ctx context.Context, userID string) error {
	if err := s.cache.Delete(ctx, constants.CACHE_KEY_USER_TOKEN+userID); err != nil {
		zap.L().Error("logout failed", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
