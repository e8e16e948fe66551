package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes 入队邀请与好友申请
func (rt *Router) RegisterRequestRoutes(rg *gin.RouterGroup) {
	requestGroup := rg.Group("/request")
	{
		// ===== 发起 =====
		requestGroup.POST("/team/create", rt.handlers.Request.CreateTeamRequest)     // 邀请入队
		requestGroup.POST("/friend/create", rt.handlers.Request.CreateFriendRequest) // 申请好友

		// ===== 待处理列表 =====
		requestGroup.GET("/team/incoming", rt.handlers.Request.IncomingTeamRequests)
		requestGroup.GET("/friend/incoming", rt.handlers.Request.IncomingFriendRequests)

		// ===== 处理 =====
		requestGroup.POST("/resolve", rt.handlers.Request.ResolveRequest) // 接受或拒绝
	}
}
