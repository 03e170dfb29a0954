package mongo

import (
	"context"
	"errors"
	"time"

	"chat_server/internal/dao/mysql/repository"
	"chat_server/internal/model"
	"chat_server/pkg/constants"
	"chat_server/pkg/errorx"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type messageRepository struct {
	coll *mongo.Collection
}

// NewMessageRepository 创建 MongoDB 消息 Repository
func NewMessageRepository(mc *Client) repository.MessageRepository {
	return &messageRepository{coll: mc.Database.Collection(messageCollection)}
}

func wrapMongoErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	code := errorx.CodeDBError
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		code = errorx.CodeNotFound
	case mongo.IsDuplicateKeyError(err):
		code = errorx.CodeConflict
	}
	return errorx.Wrapf(err, code, format, args...)
}

// Create 保存消息，时间戳由这里补齐
func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	now := time.Now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	msg.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return wrapMongoErrorf(err, "保存消息 id=%s", msg.Uuid)
	}
	return nil
}

// FindByUuid 根据消息 id 查找
func (r *messageRepository) FindByUuid(ctx context.Context, uuid string) (*model.Message, error) {
	var msg model.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": uuid}).Decode(&msg); err != nil {
		return nil, wrapMongoErrorf(err, "查询消息 uuid=%s", uuid)
	}
	return &msg, nil
}

// Delete 硬删除消息
func (r *messageRepository) Delete(ctx context.Context, uuid string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": uuid})
	if err != nil {
		return wrapMongoErrorf(err, "删除消息 uuid=%s", uuid)
	}
	if res.DeletedCount == 0 {
		return wrapMongoErrorf(mongo.ErrNoDocuments, "删除消息 uuid=%s", uuid)
	}
	return nil
}

// FindConversation 私聊消息，新消息在前
func (r *messageRepository) FindConversation(ctx context.Context, userA, userB string, limit, skip int) ([]model.Message, int64, error) {
	filter := bson.M{
		"recipientModel": model.RecipientUser,
		"$or": bson.A{
			bson.M{"sender": userA, "recipient": userB},
			bson.M{"sender": userB, "recipient": userA},
		},
	}
	return r.page(ctx, filter, limit, skip)
}

// FindGroupConversation 群消息，新消息在前
func (r *messageRepository) FindGroupConversation(ctx context.Context, groupId string, limit, skip int) ([]model.Message, int64, error) {
	filter := bson.M{"recipientModel": model.RecipientGroup, "recipient": groupId}
	return r.page(ctx, filter, limit, skip)
}

func (r *messageRepository) page(ctx context.Context, filter bson.M, limit, skip int) ([]model.Message, int64, error) {
	if limit <= 0 {
		limit = constants.DEFAULT_PAGE_LIMIT
	}
	if limit > constants.MAX_PAGE_LIMIT {
		limit = constants.MAX_PAGE_LIMIT
	}
	if skip < 0 {
		skip = 0
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapMongoErrorf(err, "统计消息")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, wrapMongoErrorf(err, "查询消息")
	}
	var msgs []model.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, 0, wrapMongoErrorf(err, "读取消息")
	}
	return msgs, total, nil
}

// MarkRead 批量标记已读
func (r *messageRepository) MarkRead(ctx context.Context, senderId, recipientId string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"recipientModel": model.RecipientUser, "sender": senderId, "recipient": recipientId, "isRead": false},
		bson.M{"$set": bson.M{"isRead": true, "status": model.MessageRead, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, wrapMongoErrorf(err, "标记已读 %s->%s", senderId, recipientId)
	}
	return res.ModifiedCount, nil
}

// conversationDoc 聚合输出
type conversationDoc struct {
	PeerId      string        `bson:"_id"`
	LastMessage model.Message `bson:"lastMessage"`
	UnreadCount int64         `bson:"unreadCount"`
}

// RecentConversations 聚合管道：按对端分组，取最新一条并统计未读
func (r *messageRepository) RecentConversations(ctx context.Context, userId string) ([]model.ConversationSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"recipientModel": model.RecipientUser,
			"$or":            bson.A{bson.M{"sender": userId}, bson.M{"recipient": userId}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$sender", userId}}, "$recipient", "$sender",
			}},
			"lastMessage": bson.M{"$first": "$$ROOT"},
			"unreadCount": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$recipient", userId}},
					bson.M{"$eq": bson.A{"$isRead", false}},
				}}, 1, 0,
			}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.createdAt", Value: -1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapMongoErrorf(err, "聚合最近会话 user=%s", userId)
	}
	var docs []conversationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, wrapMongoErrorf(err, "读取最近会话 user=%s", userId)
	}

	result := make([]model.ConversationSummary, 0, len(docs))
	for _, d := range docs {
		result = append(result, model.ConversationSummary{
			PeerId:      d.PeerId,
			LastMessage: d.LastMessage,
			UnreadCount: d.UnreadCount,
		})
	}
	return result, nil
}

var _ repository.MessageRepository = (*messageRepository)(nil)
