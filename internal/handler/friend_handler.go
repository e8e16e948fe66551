package handler

import (
	"harmony_server/internal/dto/request"
	"harmony_server/internal/dto/respond"
	"harmony_server/internal/infrastructure/middleware"
	"harmony_server/internal/service"
	"harmony_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友关系处理器
type FriendHandler struct {
	relationSvc service.RelationService
}

func NewFriendHandler(relationSvc service.RelationService) *FriendHandler {
	return &FriendHandler{relationSvc: relationSvc}
}

// List 获取好友列表
// GET /friend/list
// 响应: []respond.FriendRespond
func (h *FriendHandler) List(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	data, err := h.relationSvc.ListFriends(c.Request.Context(), identity.Email)
	if err != nil {
		HandleError(c, err)
		return
	}
	if data == nil {
		data = []respond.FriendRespond{}
	}
	HandleSuccess(c, data)
}

// Remove 解除好友关系，之后双方可以重新发起好友申请
// POST /friend/remove
// 请求体: request.RemoveFriendRequest
func (h *FriendHandler) Remove(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	var req request.RemoveFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.relationSvc.RemoveFriend(c.Request.Context(), identity.Email, req.FriendEmail); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
