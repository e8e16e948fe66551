package chat

import (
	"strings"

	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/model"
	"harmony_server/internal/service/notify"
	"harmony_server/internal/service/presence"
	"harmony_server/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Manager 连接生命周期管理器
// 握手通过后接管 socket：注册到在线目录、启动读写协程、断开时注销
type Manager struct {
	dir     *presence.Directory
	metrics *metrics.Metrics
}

// NewManager metrics 可为 nil
func NewManager(dir *presence.Directory, m *metrics.Metrics) *Manager {
	return &Manager{dir: dir, metrics: m}
}

// Serve 阻塞直到连接结束
// 同一身份的新连接会替换旧连接，旧连接被主动关闭
func (m *Manager) Serve(identity *model.Identity, ws *websocket.Conn) {
	c := newUserConn(ws, identity.Email)

	prev, replaced := m.dir.Register(c.Key, c)
	if replaced {
		zap.L().Info("connection superseded", zap.String("key", c.Key))
		if prev.Conn != nil {
			_ = prev.Conn.Close()
		}
	} else {
		m.metrics.ConnectionOpened()
	}
	zap.L().Info("ws connected", zap.String("key", c.Key), zap.Int("online", m.dir.Count()))

	_ = c.Send(notify.EventSessionReady, notify.SessionReadyPayload{
		Username: identity.Username,
		Groups:   identity.Groups,
	})

	go c.Write()
	c.Read(func(sig Signal) { m.handleSignal(identity, c, sig) })

	_ = c.Close()
	if m.dir.Deregister(c.Key, c) {
		m.metrics.ConnectionClosed()
		zap.L().Info("ws disconnected", zap.String("key", c.Key))
	}
}

func (m *Manager) handleSignal(identity *model.Identity, c *UserConn, sig Signal) {
	switch sig.Type {
	case SignalJoinRoom:
		team := strings.TrimPrefix(sig.Room, constants.ROOM_PREFIX)
		if team == "" || !identity.InGroup(team) {
			_ = c.Send(notify.EventSessionError, notify.ErrorPayload{Msg: "Not a member of this team"})
			return
		}
		m.dir.SetConnRoom(c.Key, c, constants.ROOM_PREFIX+team)
	case SignalLeaveRoom:
		m.dir.SetConnRoom(c.Key, c, "")
	case SignalPing:
		_ = c.Send(EventPong, nil)
	default:
		_ = c.Send(notify.EventSessionError, notify.ErrorPayload{Msg: "Unknown signal"})
	}
}
