// Package router 提供 HTTP 路由注册
package router

import (
	"net/http"

	"harmony_server/internal/handler"
	"harmony_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 持有注册路由所需的依赖
type Router struct {
	handlers *handler.Handlers
	authn    middleware.Authenticator
	metrics  http.Handler
}

// NewRouter metrics 为 nil 时不暴露指标接口
func NewRouter(handlers *handler.Handlers, authn middleware.Authenticator, metrics http.Handler) *Router {
	return &Router{handlers: handlers, authn: authn, metrics: metrics}
}

// RegisterRoutes 注册所有路由，除指标接口外都需要认证
func (rt *Router) RegisterRoutes(r *gin.Engine, metricsPath string) {
	if rt.metrics != nil {
		r.GET(metricsPath, gin.WrapH(rt.metrics))
	}

	authed := r.Group("/", middleware.JWTAuth(rt.authn))
	rt.RegisterRequestRoutes(authed)
	rt.RegisterFriendRoutes(authed)
	rt.RegisterWebSocketRoutes(authed)
}
