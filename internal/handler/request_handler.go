// Package handler 提供 HTTP 请求处理器
// 本文件处理入队邀请与好友申请相关的 API 请求
package handler

import (
	"harmony_server/internal/dto/request"
	"harmony_server/internal/dto/respond"
	"harmony_server/internal/infrastructure/middleware"
	"harmony_server/internal/service"
	kind "harmony_server/pkg/enum/request"
	"harmony_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// RequestHandler 关系申请处理器
type RequestHandler struct {
	relationSvc service.RelationService
}

func NewRequestHandler(relationSvc service.RelationService) *RequestHandler {
	return &RequestHandler{relationSvc: relationSvc}
}

// CreateTeamRequest 邀请用户加入团队
// POST /request/team/create
// 请求体: request.CreateTeamRequest
// 响应: respond.CreateRequestRespond
func (h *RequestHandler) CreateTeamRequest(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	var req request.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	uid, err := h.relationSvc.CreateTeamRequest(c.Request.Context(), identity.Email, req.TargetEmail, req.TeamUid)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.CreateRequestRespond{Uid: uid})
}

// CreateFriendRequest 申请添加好友
// POST /request/friend/create
// 请求体: request.CreateFriendRequest
// 响应: respond.CreateRequestRespond
func (h *RequestHandler) CreateFriendRequest(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	var req request.CreateFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	uid, err := h.relationSvc.CreateFriendRequest(c.Request.Context(), identity.Email, req.TargetEmail)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.CreateRequestRespond{Uid: uid})
}

// ResolveRequest 接受或拒绝一条发给自己的待处理申请
// POST /request/resolve
// 请求体: request.ResolveRequest
func (h *RequestHandler) ResolveRequest(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	var req request.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.relationSvc.ResolveRequest(c.Request.Context(), identity.Email, req.RequestUid, *req.Accepted); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// IncomingTeamRequests GET /request/team/incoming
func (h *RequestHandler) IncomingTeamRequests(c *gin.Context) {
	h.listIncoming(c, kind.KindTeam)
}

// IncomingFriendRequests GET /request/friend/incoming
func (h *RequestHandler) IncomingFriendRequests(c *gin.Context) {
	h.listIncoming(c, kind.KindFriend)
}

func (h *RequestHandler) listIncoming(c *gin.Context, k kind.Kind) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		HandleError(c, errorx.ErrAuthMissing)
		return
	}
	data, err := h.relationSvc.ListIncoming(c.Request.Context(), identity.Email, k)
	if err != nil {
		HandleError(c, err)
		return
	}
	if data == nil {
		data = []respond.IncomingRequestRespond{}
	}
	HandleSuccess(c, data)
}
