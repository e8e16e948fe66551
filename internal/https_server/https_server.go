// Package https_server 创建 Gin 引擎并配置中间件和路由
package https_server

import (
	"net/http"

	"harmony_server/internal/config"
	"harmony_server/internal/handler"
	"harmony_server/internal/infrastructure/logger"
	"harmony_server/internal/infrastructure/middleware"
	"harmony_server/internal/router"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 Gin 引擎
// metrics 为 nil 时不注册指标接口
func Init(cfg *config.Config, handlers *handler.Handlers, authn middleware.Authenticator, metrics http.Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	if len(cfg.MainConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.MainConfig.AllowOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	if cfg.MainConfig.TLS {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port, cfg.MainConfig.Mode == "dev"))
	}

	rt := router.NewRouter(handlers, authn, metrics)
	rt.RegisterRoutes(engine, cfg.MetricsConfig.Path)
	return engine
}
