package constants

import "time"

const (
	REDIS_TIMEOUT              = 30  // 缓存有效期（分钟）
	REFRESH_TOKEN_EXPIRY_HOURS = 168 // Refresh Token 有效期（小时），168小时 = 7天
	ACCESS_TOKEN_EXPIRY_MINUTE = 7 * 24 * 60

	DEFAULT_FRIEND_GROUP  = "My Friends" // 好友默认分组
	DEFAULT_GROUP_AVATAR  = "/avatars/default-group-avatar.png"
	DEFAULT_USER_AVATAR   = "/avatars/default-avatar.png"
	AVATAR_GENERATOR_URL  = "https://api.dicebear.com/7.x/avataaars/svg?seed=%s"
	DEFAULT_MAX_MEMBERS   = 500
	MIN_MAX_MEMBERS       = 2
	MAX_MAX_MEMBERS       = 2000
	USER_SEARCH_LIMIT     = 20
	DEFAULT_PAGE_LIMIT    = 50
	MAX_PAGE_LIMIT        = 200
	AVATAR_MAX_SIZE       = 2 << 20 // 头像最大 2MB
	EVENT_CHANNEL_SIZE    = 1024
	CACHE_WORKER_NUM      = 15
	CACHE_TASK_CHAN_SIZE  = 3000
	DEFAULT_MUTE_SWEEP    = "@every 1m"
	SCHEDULER_POOL_SIZE   = 4
	INVITE_CODE_LENGTH    = 12
	SHUTDOWN_TIMEOUT      = 5 * time.Second
	MONGO_CONNECT_TIMEOUT = 10 * time.Second
	FRIEND_GEN_TIMEOUT    = 24 * time.Hour // 好友集合代数保留时长
)

// Redis key 前缀
const (
	CACHE_KEY_FRIEND_SET = "contact_relation:user:" // 好友ID集合
	CACHE_KEY_FRIEND_GEN = "contact_relation:gen:"  // 好友集合代数，关系变化时自增
	CACHE_KEY_USER_INFO  = "user_info:"             // 用户资料
	CACHE_KEY_USER_TOKEN = "user_token:"            // Refresh Token ID
)
