// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找，敏感项可由环境变量 / .env 覆盖
package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
	"github.com/joho/godotenv"   // .env 文件加载

	"chat_server/pkg/constants"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"
	TLS     bool   `toml:"tls"`     // 是否启用 HTTP -> HTTPS 重定向
}

// DatabaseConfig 关系型数据库选择
type DatabaseConfig struct {
	Driver     string `toml:"driver"`     // "mysql" 或 "sqlite"
	SqlitePath string `toml:"sqlitePath"` // sqlite 文件路径
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
}

// MongoConfig 消息文档存储配置，启用后消息表改存 MongoDB
type MongoConfig struct {
	Enabled  bool   `toml:"enabled"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig 领域事件投递配置
type KafkaConfig struct {
	MessageMode string `toml:"messageMode"` // 事件模式："channel" 或 "kafka"
	HostPort    string `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	EventTopic  string `toml:"eventTopic"`  // 领域事件主题
	Partition   int    `toml:"partition"`   // 分区数
	Timeout     int    `toml:"timeout"`     // 写超时（秒）
}

// StaticSrcConfig 静态资源路径配置
type StaticSrcConfig struct {
	StaticAvatarPath string `toml:"staticAvatarPath"` // 头像文件存储路径
}

// MinioConfig 头像对象存储配置
type MinioConfig struct {
	Enabled         bool   `toml:"enabled"`
	Endpoint        string `toml:"endpoint"`
	AccessKeyID     string `toml:"accessKeyID"`
	SecretAccessKey string `toml:"secretAccessKey"`
	Bucket          string `toml:"bucket"`
	UseSSL          bool   `toml:"useSSL"`
	PublicBaseURL   string `toml:"publicBaseURL"` // 对外访问前缀，为空时按 endpoint/bucket 拼接
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	MuteSweepSpec string `toml:"muteSweepSpec"` // 解除过期禁言的 cron 表达式
	PoolSize      int    `toml:"poolSize"`      // 任务协程池大小
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`
	DatabaseConfig  `toml:"databaseConfig"`
	MysqlConfig     `toml:"mysqlConfig"`
	MongoConfig     `toml:"mongoConfig"`
	RedisConfig     `toml:"redisConfig"`
	LogConfig       `toml:"logConfig"`
	KafkaConfig     `toml:"kafkaConfig"`
	StaticSrcConfig `toml:"staticSrcConfig"`
	MinioConfig     `toml:"minioConfig"`
	JWTConfig       `toml:"jwtConfig"`
	SnowflakeConfig `toml:"snowflakeConfig"`
	SchedulerConfig `toml:"schedulerConfig"`
}

var (
	config     *Config
	configOnce sync.Once
)

// defaultPaths 候选配置文件路径（优先加载本地配置）
var defaultPaths = []string{
	"configs/config_local.toml",
	"configs/config.toml",
	"../../configs/config_local.toml", // 从 cmd 子目录运行时的路径
	"../../configs/config.toml",
}

// Load 从候选路径加载配置文件，找到第一个可用的即停止
// 找不到配置文件时返回带默认值的配置和错误，调用方可选择继续运行
func Load(paths ...string) (*Config, error) {
	if len(paths) == 0 {
		paths = defaultPaths
	}

	cfg := new(Config)
	var loadErr error = fmt.Errorf("could not find configuration file in any of the search paths")
	for _, path := range paths {
		if _, err := toml.DecodeFile(path, cfg); err == nil {
			loadErr = nil
			break
		} else if !os.IsNotExist(err) {
			loadErr = fmt.Errorf("decode %s: %w", path, err)
			break
		}
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	applyEnvOverrides(cfg)
	cfg.setDefaults()
	return cfg, loadErr
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	configOnce.Do(func() {
		config, _ = Load()
	})
	return config
}

// applyEnvOverrides 环境变量覆盖敏感配置
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTConfig.Secret = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.DatabaseConfig.Driver = v
	}
	if v := os.Getenv("MYSQL_PASSWORD"); v != "" {
		cfg.MysqlConfig.Password = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.MongoConfig.URI = v
		cfg.MongoConfig.Enabled = true
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisConfig.Password = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioConfig.SecretAccessKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MainConfig.Port = port
		}
	}
}

// setDefaults 补齐未配置项
func (c *Config) setDefaults() {
	if c.AppName == "" {
		c.AppName = "chat_server"
	}
	if c.MainConfig.Host == "" {
		c.MainConfig.Host = "0.0.0.0"
	}
	if c.MainConfig.Port == 0 {
		c.MainConfig.Port = 8000
	}
	if c.Mode == "" {
		c.Mode = "dev"
	}
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.SqlitePath == "" {
		c.SqlitePath = "chat_server.db"
	}
	if c.MongoConfig.Database == "" {
		c.MongoConfig.Database = "chat_server"
	}
	if c.MessageMode == "" {
		c.MessageMode = "channel"
	}
	if c.EventTopic == "" {
		c.EventTopic = "chat_events"
	}
	if c.KafkaConfig.Timeout == 0 {
		c.KafkaConfig.Timeout = 1
	}
	if c.StaticAvatarPath == "" {
		c.StaticAvatarPath = "./static/avatars"
	}
	if c.JWTConfig.Secret == "" {
		c.JWTConfig.Secret = "default-jwt-secret-key-2024"
	}
	if c.AccessTokenExpiry == 0 {
		c.AccessTokenExpiry = constants.ACCESS_TOKEN_EXPIRY_MINUTE
	}
	if c.RefreshTokenExpiry == 0 {
		c.RefreshTokenExpiry = constants.REFRESH_TOKEN_EXPIRY_HOURS
	}
	if c.MuteSweepSpec == "" {
		c.MuteSweepSpec = constants.DEFAULT_MUTE_SWEEP
	}
	if c.PoolSize == 0 {
		c.PoolSize = constants.SCHEDULER_POOL_SIZE
	}
	if c.MinioConfig.Bucket == "" {
		c.MinioConfig.Bucket = "avatars"
	}
}
