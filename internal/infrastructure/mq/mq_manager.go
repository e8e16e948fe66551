package mq

import (
	"context"

	"harmony_server/internal/config"

	"go.uber.org/zap"
)

// NewPublisher 根据 messageMode 选择实现："kafka" 写入 Kafka，其他值只写日志
func NewPublisher(conf *config.KafkaConfig) EventPublisher {
	if conf.MessageMode == "kafka" {
		zap.L().Info("relation events go to kafka",
			zap.String("broker", conf.HostPort), zap.String("topic", conf.EventTopic))
		return NewKafkaPublisher(conf)
	}
	return LogPublisher{}
}

// LogPublisher 把事件写入应用日志
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e RelationEvent) error {
	zap.L().Info("relation event",
		zap.String("type", e.Type),
		zap.String("request", e.RequestUid),
		zap.String("kind", e.Kind),
		zap.String("status", e.Status),
		zap.Uint("sender", e.SenderId),
		zap.Uint("receiver", e.ReceiverId),
		zap.String("team", e.TeamUid),
	)
	return nil
}

func (LogPublisher) Close() error { return nil }
