package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterFriendRoutes 好友列表与解除好友
func (rt *Router) RegisterFriendRoutes(rg *gin.RouterGroup) {
	friendGroup := rg.Group("/friend")
	{
		friendGroup.GET("/list", rt.handlers.Friend.List)      // 获取好友列表
		friendGroup.POST("/remove", rt.handlers.Friend.Remove) // 解除好友
	}
}
