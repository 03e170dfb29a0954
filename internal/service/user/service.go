package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"chat_server/internal/dao/mysql/repository"
	myredis "chat_server/internal/dao/redis"
	"chat_server/internal/dto/request"
	"chat_server/internal/dto/respond"
	"chat_server/internal/infrastructure/storage"
	"chat_server/internal/model"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"
	"chat_server/pkg/util/jwt"
	"chat_server/pkg/util/random"
)

// userInfoService 用户业务逻辑实现
type userInfoService struct {
	repos   *repository.Repositories
	cache   myredis.AsyncCacheService
	avatars storage.AvatarStore
}

// NewUserService 构造函数，注入 Repository、缓存与头像存储
func NewUserService(repos *repository.Repositories, cache myredis.AsyncCacheService, avatars storage.AvatarStore) *userInfoService {
	return &userInfoService{repos: repos, cache: cache, avatars: avatars}
}

// Register 注册：邮箱唯一，头像按邮箱生成
func (u *userInfoService) Register(ctx context.Context, req request.RegisterRequest) (*respond.AuthRespond, error) {
	email := model.NormalizeEmail(req.Email)
	_, err := u.repos.User.FindByEmail(ctx, email)
	if err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该邮箱已被注册")
	}
	if !errorx.IsNotFound(err) {
		zap.L().Error("check email failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	newUser := model.UserInfo{
		Uuid:        "U" + random.GetNowAndLenRandomString(11),
		Email:       email,
		Nickname:    strings.TrimSpace(req.Nickname),
		Avatar:      fmt.Sprintf(constants.AVATAR_GENERATOR_URL, url.QueryEscape(email)),
		Status:      model.UserStatusAway,
		RawPassword: req.Password,
	}
	if err := u.repos.User.Create(ctx, &newUser); err != nil {
		// 并发注册同一邮箱由唯一索引兜底
		if errorx.IsConflict(err) {
			return nil, errorx.New(errorx.CodeUserExist, "该邮箱已被注册")
		}
		zap.L().Error("create user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	zap.L().Info("user registered", zap.String("user_id", newUser.Uuid))
	return u.issueTokens(ctx, &newUser)
}

// Login 邮箱密码登录，用户不存在与密码错误返回同一错误
func (u *userInfoService) Login(ctx context.Context, req request.LoginRequest) (*respond.AuthRespond, error) {
	user, err := u.repos.User.FindByEmail(ctx, req.Email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
		}
		zap.L().Error("find user by email failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "邮箱或密码错误")
	}
	return u.issueTokens(ctx, user)
}

// issueTokens 生成双 Token，并将 Refresh Token ID 写入缓存实现单点互踢
func (u *userInfoService) issueTokens(ctx context.Context, user *model.UserInfo) (*respond.AuthRespond, error) {
	accessToken, err := jwt.GenerateAccessToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Access Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	refreshToken, tokenID, err := jwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		zap.L().Error("生成 Refresh Token 失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	redisKey := constants.CACHE_KEY_USER_TOKEN + user.Uuid
	ttl := time.Duration(constants.REFRESH_TOKEN_EXPIRY_HOURS) * time.Hour
	if err := u.cache.Set(ctx, redisKey, tokenID, ttl); err != nil {
		// 不阻塞登录流程，仅记录日志
		zap.L().Error("存储 Token ID 失败", zap.Error(err))
	}

	return &respond.AuthRespond{
		Token:        accessToken,
		RefreshToken: refreshToken,
		User:         respond.NewUserProfile(user),
	}, nil
}

// GetProfile 获取用户资料，先读缓存
func (u *userInfoService) GetProfile(ctx context.Context, userId string) (*respond.UserProfile, error) {
	key := constants.CACHE_KEY_USER_INFO + userId

	// 1. 尝试从缓存获取
	if cached, err := u.cache.Get(ctx, key); err == nil && cached != "" {
		var rsp respond.UserProfile
		if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
			return &rsp, nil
		}
		zap.L().Warn("user profile cache corrupted", zap.String("key", key))
	}

	// 2. 缓存未命中，查询数据库
	user, err := u.repos.User.FindByUuid(ctx, userId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("find user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := respond.NewUserProfile(user)

	// 3. 异步回写缓存
	u.cache.SubmitTask(func() {
		data, err := json.Marshal(rsp)
		if err != nil {
			return
		}
		if err := u.cache.Set(context.Background(), key, string(data), time.Minute*constants.REDIS_TIMEOUT); err != nil {
			zap.L().Warn("write user profile cache failed", zap.Error(err))
		}
	})
	return &rsp, nil
}

// UpdateProfile 修改昵称、签名、在线状态
func (u *userInfoService) UpdateProfile(ctx context.Context, userId string, req request.UpdateProfileRequest) (*respond.UserProfile, error) {
	updates := map[string]any{}
	if req.Nickname != nil {
		updates["nickname"] = strings.TrimSpace(*req.Nickname)
	}
	if req.Signature != nil {
		updates["signature"] = *req.Signature
	}
	if req.Status != nil {
		status := model.UserStatus(*req.Status)
		if !status.Valid() {
			return nil, errorx.New(errorx.CodeInvalidParam, "无效的在线状态")
		}
		updates["status"] = status
	}
	return u.applyUpdates(ctx, userId, updates)
}

// UploadAvatar 保存头像并更新资料
func (u *userInfoService) UploadAvatar(ctx context.Context, userId, filename, contentType string, size int64, r io.Reader) (*respond.UserProfile, error) {
	if size > constants.AVATAR_MAX_SIZE {
		return nil, errorx.New(errorx.CodeInvalidParam, "头像不能超过 2MB")
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, errorx.New(errorx.CodeInvalidParam, "头像必须是图片")
	}
	avatarURL, err := u.avatars.Save(ctx, storage.ObjectName(userId, filename), r, size, contentType)
	if err != nil {
		zap.L().Error("save avatar failed", zap.String("user_id", userId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return u.applyUpdates(ctx, userId, map[string]any{"avatar": avatarURL})
}

func (u *userInfoService) applyUpdates(ctx context.Context, userId string, updates map[string]any) (*respond.UserProfile, error) {
	if _, err := u.repos.User.FindByUuid(ctx, userId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		zap.L().Error("find user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if err := u.repos.User.UpdateFields(ctx, userId, updates); err != nil {
		zap.L().Error("update user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	// 先删缓存再读库，避免读到旧资料
	if err := u.cache.Delete(ctx, constants.CACHE_KEY_USER_INFO+userId); err != nil {
		zap.L().Warn("evict user profile cache failed", zap.Error(err))
	}
	user, err := u.repos.User.FindByUuid(ctx, userId)
	if err != nil {
		zap.L().Error("reload user failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	rsp := respond.NewUserProfile(user)
	return &rsp, nil
}

// SearchUsers 邮箱或昵称搜索，排除自己，最多 20 条
func (u *userInfoService) SearchUsers(ctx context.Context, userId, keyword string) ([]respond.UserSearchItem, error) {
	users, err := u.repos.User.Search(ctx, strings.TrimSpace(keyword), userId, constants.USER_SEARCH_LIMIT)
	if err != nil {
		zap.L().Error("search users failed", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	items := make([]respond.UserSearchItem, 0, len(users))
	for i := range users {
		user := &users[i]
		items = append(items, respond.UserSearchItem{
			Id:        user.Uuid,
			Email:     user.Email,
			Username:  user.DisplayName(),
			Avatar:    user.Avatar,
			Signature: user.Signature,
			Status:    user.Status,
			Online:    user.Status == model.UserStatusOnline,
			CreatedAt: user.CreatedAt,
		})
	}
	return items, nil
}

// Exists 供认证中间件确认 token 对应的用户仍存在
func (u *userInfoService) Exists(ctx context.Context, userId string) (bool, error) {
	return u.repos.User.Exists(ctx, userId)
}
