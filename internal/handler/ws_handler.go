package handler

import (
	"harmony_server/internal/infrastructure/middleware"
	"harmony_server/internal/service"
	"harmony_server/internal/service/chat"
	"harmony_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 接入
type WsHandler struct {
	chatSvc service.ChatService
}

func NewWsHandler(chatSvc service.ChatService) *WsHandler {
	return &WsHandler{chatSvc: chatSvc}
}

// Connect 升级为 WebSocket 并交给连接管理器，直到连接结束才返回
// GET /wss?token=xxx
// 认证由 JWTAuth 在升级之前完成
func (h *WsHandler) Connect(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	conn, err := chat.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已经写出了 HTTP 错误响应
		zap.L().Warn("ws upgrade failed", zap.String("email", identity.Email), zap.Error(err))
		return
	}
	h.chatSvc.Serve(identity, conn)
}
