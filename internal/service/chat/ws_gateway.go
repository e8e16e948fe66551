// Package chat 管理 WebSocket 连接的生命周期
// ws_gateway.go
// 核心职责：
// 1. 封装单条连接 UserConn，提供非阻塞的 Send 入队
// 2. 读写协程 (Read/Write Loop)，写协程负责心跳和写超时
// 3. 解析客户端信令 join_room / leave_room / ping
package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"harmony_server/pkg/constants"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrConnClosed = errors.New("connection closed")
	ErrSendFull   = errors.New("send buffer full")
)

// Envelope 下发给客户端的统一格式
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Signal 客户端上行信令
type Signal struct {
	Type string `json:"type"`
	Room string `json:"room,omitempty"`
}

const (
	SignalJoinRoom  = "join_room"
	SignalLeaveRoom = "leave_room"
	SignalPing      = "ping"
	EventPong       = "pong"
)

// Upgrader 跨域由路由层的 cors 统一处理，这里放行所有 Origin
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UserConn 表示一个已完成握手的 WebSocket 客户端连接
// 实现 presence.Conn
type UserConn struct {
	Conn     *websocket.Conn
	Key      string
	SendBack chan []byte // 给前端

	done      chan struct{}
	closeOnce sync.Once
}

func newUserConn(conn *websocket.Conn, key string) *UserConn {
	return &UserConn{
		Conn:     conn,
		Key:      key,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Send 编码后入队，缓冲区满或连接已关闭时立即返回错误
func (c *UserConn) Send(event string, payload any) error {
	msg, err := json.Marshal(Envelope{Event: event, Data: payload})
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.SendBack <- msg:
		return nil
	case <-c.done:
		return ErrConnClosed
	default:
		return ErrSendFull
	}
}

// Close 可重复调用；只关闭 done 和底层连接，SendBack 不关闭以免并发 Send panic
func (c *UserConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.Conn.Close()
	})
	return err
}

// Done 连接关闭后返回的 channel 被关闭
func (c *UserConn) Done() <-chan struct{} {
	return c.done
}

// Write 从 SendBack 取消息写给客户端，并定期发送 ping
func (c *UserConn) Write() {
	ticker := time.NewTicker(constants.WS_PING_PERIOD)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()
	for {
		select {
		case msg := <-c.SendBack:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				zap.L().Debug("ws write failed", zap.String("key", c.Key), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(constants.WS_WRITE_WAIT))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				zap.L().Debug("ws ping failed", zap.String("key", c.Key), zap.Error(err))
				return
			}
		case <-c.done:
			return
		}
	}
}

// Read 阻塞读取客户端信令，直到连接出错或被关闭
func (c *UserConn) Read(handle func(Signal)) {
	defer func() { _ = c.Close() }()
	c.Conn.SetReadLimit(constants.WS_MAX_MSG_SIZE)
	_ = c.Conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
	})
	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws read failed", zap.String("key", c.Key), zap.Error(err))
			}
			return
		}
		_ = c.Conn.SetReadDeadline(time.Now().Add(constants.WS_PONG_WAIT))
		var sig Signal
		if err := json.Unmarshal(raw, &sig); err != nil {
			handle(Signal{})
			continue
		}
		handle(sig)
	}
}
