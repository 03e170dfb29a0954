// Package mongo 提供消息的 MongoDB 存储实现
// 配置 mongoConfig.enabled 后，消息读写改走 MongoDB，其余实体仍在关系库
package mongo

import (
	"context"
	"fmt"

	"chat_server/internal/config"
	"chat_server/pkg/constants"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// messageCollection 消息集合名
const messageCollection = "messages"

// Client MongoDB 连接与数据库句柄
type Client struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// NewConnection 建立连接并确保索引存在
func NewConnection(ctx context.Context, conf *config.MongoConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.MONGO_CONNECT_TIMEOUT)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	mc := &Client{
		Client:   client,
		Database: client.Database(conf.Database),
	}
	if err := mc.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return mc, nil
}

func (mc *Client) ensureIndexes(ctx context.Context) error {
	_, err := mc.Database.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "isRead", Value: 1}}},
		{Keys: bson.D{{Key: "recipientModel", Value: 1}, {Key: "recipient", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	return nil
}

// Close 断开连接
func (mc *Client) Close(ctx context.Context) error {
	return mc.Client.Disconnect(ctx)
}
