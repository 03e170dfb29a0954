package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chat_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// kafkaPublisher 事件写入 Kafka，按资源 id 分区保证同一资源有序
type kafkaPublisher struct {
	writer *kafka.Writer
	reader *kafka.Reader
	cancel context.CancelFunc
	done   chan struct{}
}

// NewKafkaPublisher 创建 Kafka 发布器
// handlers 不为空时同时启动消费者，从同一主题读取事件
func NewKafkaPublisher(conf *config.KafkaConfig, handlers ...Handler) (Publisher, error) {
	if conf.HostPort == "" {
		return nil, errors.New("kafka hostPort is empty")
	}
	timeout := time.Duration(conf.Timeout) * time.Second
	p := &kafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(conf.HostPort),
			Topic:                  conf.EventTopic,
			Balancer:               &kafka.Hash{},
			WriteTimeout:           timeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			Async:                  true,
			Completion: func(messages []kafka.Message, err error) {
				if err != nil {
					zap.L().Error("kafka write events failed", zap.Int("count", len(messages)), zap.Error(err))
				}
			},
		},
		done: make(chan struct{}),
	}

	if len(handlers) == 0 {
		close(p.done)
		return p, nil
	}
	p.reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{conf.HostPort},
		Topic:          conf.EventTopic,
		GroupID:        "chat_server_events",
		CommitInterval: timeout,
		StartOffset:    kafka.LastOffset,
	})
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.consume(ctx, handlers)
	return p, nil
}

// CreateTopic 创建事件主题，已存在时 Kafka 返回错误并被忽略
func CreateTopic(conf *config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", conf.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()
	partitions := conf.Partition
	if partitions <= 0 {
		partitions = 1
	}
	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             conf.EventTopic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return err
	}
	return nil
}

// Publish 序列化为 JSON 写入主题
func (p *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	key := evt.ResourceId
	if key == "" {
		key = evt.ActorId
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *kafkaPublisher) consume(ctx context.Context, handlers []Handler) {
	defer close(p.done)
	for {
		msg, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			zap.L().Error("kafka read event failed", zap.Error(err))
			continue
		}
		var evt Event
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			zap.L().Warn("skip malformed event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
			continue
		}
		for _, h := range handlers {
			safeHandle(h, evt)
		}
	}
}

// Close 关闭写入器与消费者
func (p *kafkaPublisher) Close() error {
	err := p.writer.Close()
	if p.reader != nil {
		p.cancel()
		<-p.done
		if rerr := p.reader.Close(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
