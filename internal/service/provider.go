// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"chat_server/internal/dao/mysql/repository"
	myredis "chat_server/internal/dao/redis"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/infrastructure/storage"
	"chat_server/internal/service/auth"
	"chat_server/internal/service/contact"
	"chat_server/internal/service/group"
	"chat_server/internal/service/message"
	"chat_server/internal/service/user"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，由 main 构造后传给 Handler 层
type Services struct {
	User    UserService
	Auth    AuthService
	Contact ContactService
	Message MessageService
	Group   GroupService
}

// NewServices 创建并注入所有 Service 实例
// 消息服务通过好友服务判断好友关系，共用同一份好友集合缓存
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService, publisher mq.Publisher, avatars storage.AvatarStore) *Services {
	if publisher == nil {
		publisher = mq.NewNopPublisher()
	}
	contactSvc := contact.NewContactService(repos, cache, publisher)
	return &Services{
		User:    user.NewUserService(repos, cache, avatars),
		Auth:    auth.NewAuthService(repos, cache),
		Contact: contactSvc,
		Message: message.NewMessageService(repos, contactSvc, publisher),
		Group:   group.NewGroupService(repos, publisher),
	}
}
