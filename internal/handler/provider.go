package handler

import (
	"harmony_server/internal/service"
)

// Handlers 聚合所有 Handler 实例，Router 层通过它注册路由
type Handlers struct {
	Request *RequestHandler
	Friend  *FriendHandler
	Ws      *WsHandler
}

// NewHandlers 注入 Service 依赖
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Request: NewRequestHandler(svc.Relation),
		Friend:  NewFriendHandler(svc.Relation),
		Ws:      NewWsHandler(svc.Chat),
	}
}
