// Package notify 把事件尽力投递给当前在线的身份
// 不在线的目标直接忽略，投递失败只记录日志，不会让调用方失败
package notify

import (
	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/service/presence"
	"harmony_server/pkg/constants"

	"go.uber.org/zap"
)

// Notifier 通知接口，关系申请协调器依赖它而不是具体实现
type Notifier interface {
	// Notify 向目标身份推送事件，返回是否成功入队
	Notify(target, event string, payload any) bool
	// NotifyRoom 向房间内除 exclude 外的连接广播，返回成功入队数
	NotifyRoom(room, event string, payload any, exclude string) int
}

// Dispatcher 基于在线目录的通知实现
type Dispatcher struct {
	dir     *presence.Directory
	metrics *metrics.Metrics
}

// NewDispatcher metrics 可为 nil
func NewDispatcher(dir *presence.Directory, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{dir: dir, metrics: m}
}

func (d *Dispatcher) Notify(target, event string, payload any) bool {
	entry, ok := d.dir.Lookup(target)
	if !ok {
		d.metrics.Notification(event, "absent")
		zap.L().Debug("notify target offline", zap.String("target", target), zap.String("event", event))
		return false
	}
	if err := entry.Conn.Send(event, payload); err != nil {
		d.metrics.Notification(event, "dropped")
		zap.L().Warn("notify dropped",
			zap.String("target", target), zap.String("event", event), zap.Error(err))
		return false
	}
	d.metrics.Notification(event, "delivered")
	return true
}

func (d *Dispatcher) NotifyRoom(room, event string, payload any, exclude string) int {
	n := d.dir.BroadcastToRoom(room, event, payload, exclude)
	zap.L().Debug("room broadcast", zap.String("room", room), zap.String("event", event), zap.Int("sent", n))
	return n
}

// NotifyTeamMessage 团队聊天消息变更的广播入口，供外部聊天模块调用
// 非消息事件直接忽略
func (d *Dispatcher) NotifyTeamMessage(teamUid, event, senderEmail string) int {
	if !IsTeamMessageEvent(event) {
		zap.L().Warn("not a team message event", zap.String("event", event))
		return 0
	}
	return d.NotifyRoom(constants.ROOM_PREFIX+teamUid, event, TeamPayload{Team: teamUid}, senderEmail)
}

var _ Notifier = (*Dispatcher)(nil)
