// Package mq 发布关系变更事件，供审计和下游消费
// 事件发布是尽力而为的：失败只记录日志，不影响已提交的业务结果
package mq

import (
	"context"
	"time"
)

// 事件类型
const (
	EventRequestCreated  = "request.created"
	EventRequestResolved = "request.resolved"
	EventFriendRemoved   = "friend.removed"
)

// RelationEvent 关系变更事件
type RelationEvent struct {
	Type       string    `json:"type"`
	RequestUid string    `json:"requestUid,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Status     string    `json:"status,omitempty"`
	SenderId   uint      `json:"senderId"`
	ReceiverId uint      `json:"receiverId"`
	TeamUid    string    `json:"teamUid,omitempty"`
	At         time.Time `json:"at"`
}

// Key 分区键，同一申请的事件落在同一分区以保持顺序
func (e RelationEvent) Key() string {
	if e.RequestUid != "" {
		return e.RequestUid
	}
	return e.Type
}

// EventPublisher 关系事件发布接口
type EventPublisher interface {
	Publish(ctx context.Context, event RelationEvent) error
	Close() error
}
