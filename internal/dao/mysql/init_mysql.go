// Package mysql 负责建立关系库连接、自动迁移表结构
// driver 为 mysql 时连接 MySQL，为 sqlite 时使用本地文件（开发与测试）
package mysql

import (
	"fmt"

	"chat_server/internal/config"
	"chat_server/internal/model"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 按配置建立连接并迁移表结构
func Open(dbConf *config.DatabaseConfig, mysqlConf *config.MysqlConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbConf.Driver {
	case "sqlite":
		dialector = sqlite.Open(dbConf.SqlitePath)
	case "mysql", "":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			mysqlConf.User,
			mysqlConf.Password,
			mysqlConf.Host,
			mysqlConf.Port,
			mysqlConf.DatabaseName,
		)
		dialector = mysqldriver.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConf.Driver)
	}

	db, err := gorm.Open(dialector, NewGormConfig())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbConf.Driver, err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	zap.L().Info("database ready", zap.String("driver", dbConf.Driver))
	return db, nil
}

// NewGormConfig 统一的 gorm 配置
// TranslateError 将驱动的唯一键冲突转换为 gorm.ErrDuplicatedKey
func NewGormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
}

// Migrate 自动迁移表结构，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.UserInfo{},
		&model.Contact{},
		&model.GroupInfo{},
		&model.GroupMember{},
		&model.Message{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
