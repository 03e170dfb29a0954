package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"chat_server/internal/config"
	"chat_server/internal/dao/mongo"
	dao "chat_server/internal/dao/mysql"
	"chat_server/internal/dao/mysql/repository"
	myredis "chat_server/internal/dao/redis"
	"chat_server/internal/handler"
	"chat_server/internal/https_server"
	"chat_server/internal/infrastructure/logger"
	"chat_server/internal/infrastructure/mq"
	"chat_server/internal/infrastructure/scheduler"
	"chat_server/internal/infrastructure/storage"
	"chat_server/internal/service"
	"chat_server/pkg/constants"
	"chat_server/pkg/util/jwt"
	"chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf, err := config.Load()
	if err != nil {
		log.Printf("load config: %v, using defaults", err)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer zap.L().Sync()
	zap.L().Info("日志初始化成功")

	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化校验翻译器失败", zap.Error(err))
	}

	// 3. JWT 与雪花算法
	jwt.Init(conf.JWTConfig.Secret, conf.AccessTokenExpiry, conf.RefreshTokenExpiry)
	snowflake.Init(conf.SnowflakeConfig.MachineID)

	ctx := context.Background()

	// 4. 关系库
	db, err := dao.Open(&conf.DatabaseConfig, &conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库连接失败", zap.Error(err))
	}
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.Driver))

	// 5. 可选：消息改存 MongoDB
	var repoOpts []repository.Option
	var mongoClient *mongo.Client
	if conf.MongoConfig.Enabled {
		mongoClient, err = mongo.NewConnection(ctx, &conf.MongoConfig)
		if err != nil {
			zap.L().Fatal("MongoDB 连接失败", zap.Error(err))
		}
		repoOpts = append(repoOpts, repository.WithMessageRepository(mongo.NewMessageRepository(mongoClient)))
		zap.L().Info("消息存储使用 MongoDB")
	}
	repos := repository.NewRepositories(db, repoOpts...)

	// 6. Redis
	redisClient, err := myredis.NewClient(ctx, &conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 连接失败", zap.Error(err))
	}
	cache := myredis.NewRedisCache(redisClient, constants.CACHE_WORKER_NUM, constants.CACHE_TASK_CHAN_SIZE)
	zap.L().Info("Redis 初始化成功")

	// 7. 领域事件
	publisher, err := mq.New(&conf.KafkaConfig, mq.LogHandler)
	if err != nil {
		zap.L().Fatal("事件发布器初始化失败", zap.Error(err))
	}
	zap.L().Info("事件发布器初始化成功", zap.String("mode", conf.MessageMode))

	// 8. 头像存储
	avatars, err := storage.New(ctx, &conf.MinioConfig, &conf.StaticSrcConfig)
	if err != nil {
		zap.L().Fatal("头像存储初始化失败", zap.Error(err))
	}

	// 9. Service / Handler 依赖注入
	svc := service.NewServices(repos, cache, publisher, avatars)
	handlers := handler.NewHandlers(svc)

	// 10. 定时任务：解除过期禁言
	sched, err := scheduler.New(conf.SchedulerConfig.PoolSize)
	if err != nil {
		zap.L().Fatal("定时任务初始化失败", zap.Error(err))
	}
	if err := sched.AddJob(conf.MuteSweepSpec, "release_expired_mutes", func(ctx context.Context) error {
		_, err := svc.Group.ReleaseExpiredMutes(ctx)
		return err
	}); err != nil {
		zap.L().Fatal("注册定时任务失败", zap.Error(err))
	}
	sched.Start()

	// 11. 启动 HTTP 服务
	engine := https_server.Init(conf, handlers, svc.User)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.SHUTDOWN_TIMEOUT)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP 服务关闭失败", zap.Error(err))
	}
	sched.Stop(shutdownCtx)
	if err := publisher.Close(); err != nil {
		zap.L().Warn("关闭事件发布器失败", zap.Error(err))
	}
	cache.Close()
	if err := redisClient.Close(); err != nil {
		zap.L().Warn("关闭 Redis 失败", zap.Error(err))
	}
	if mongoClient != nil {
		if err := mongoClient.Close(shutdownCtx); err != nil {
			zap.L().Warn("关闭 MongoDB 失败", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zap.L().Info("服务器已关闭")
}
