package mq

import (
	"context"
	"fmt"

	"chat_server/internal/config"
	"chat_server/pkg/constants"

	"go.uber.org/zap"
)

// New 按 messageMode 选择发布器
func New(conf *config.KafkaConfig, handlers ...Handler) (Publisher, error) {
	switch conf.MessageMode {
	case "kafka":
		if err := CreateTopic(conf); err != nil {
			zap.L().Warn("create kafka topic failed", zap.String("topic", conf.EventTopic), zap.Error(err))
		}
		return NewKafkaPublisher(conf, handlers...)
	case "channel", "":
		return NewChannelPublisher(constants.EVENT_CHANNEL_SIZE, handlers...), nil
	case "none":
		return NewNopPublisher(), nil
	default:
		return nil, fmt.Errorf("unknown messageMode %q", conf.MessageMode)
	}
}

// LogHandler 记录每个事件
func LogHandler(_ context.Context, evt Event) {
	zap.L().Info("domain event",
		zap.String("type", string(evt.Type)),
		zap.String("actor", evt.ActorId),
		zap.String("target", evt.TargetId),
		zap.String("resource", evt.ResourceId),
		zap.Time("occurredAt", evt.OccurredAt),
	)
}

// PublishAsync 发布失败只记日志，业务数据已提交不回滚
func PublishAsync(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if err := p.Publish(context.WithoutCancel(ctx), evt); err != nil {
		zap.L().Warn("publish event failed", zap.String("type", string(evt.Type)), zap.Error(err))
	}
}
