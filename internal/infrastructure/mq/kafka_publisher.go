package mq

import (
	"context"
	"encoding/json"
	"time"

	"harmony_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter kafka.Writer 的最小子集，便于测试替换
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher 将关系事件写入 Kafka
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher 创建异步 Writer，WriteMessages 立即返回，写入结果在 Completion 中记录
func NewKafkaPublisher(conf *config.KafkaConfig) *KafkaPublisher {
	timeout := conf.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(conf.HostPort),
		Topic:                  conf.EventTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				zap.L().Warn("relation event delivery failed",
					zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return newKafkaPublisher(w)
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event RelationEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Time:  event.At,
	})
}

// Close 刷新缓冲区中尚未写出的消息
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ EventPublisher = (*KafkaPublisher)(nil)
