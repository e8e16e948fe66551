package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"harmony_server/internal/config"
	dao "harmony_server/internal/dao/mysql"
	myredis "harmony_server/internal/dao/redis"
	"harmony_server/internal/handler"
	"harmony_server/internal/https_server"
	"harmony_server/internal/infrastructure/logger"
	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/internal/service"
	"harmony_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()

	if err := run(conf); err != nil {
		zap.L().Error("server exited", zap.Error(err))
		_ = zap.L().Sync()
		os.Exit(1)
	}
	zap.L().Info("服务器已关闭")
}

func run(conf *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化数据库
	repos, db, err := dao.Init(&conf.MysqlConfig)
	if err != nil {
		return fmt.Errorf("init mysql: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.MysqlConfig.Driver))

	// 4. 初始化 Redis，未启用时不使用缓存
	var cache myredis.AsyncCacheService
	if conf.RedisConfig.Enabled {
		rc, err := myredis.Init(ctx, &conf.RedisConfig)
		if err != nil {
			return fmt.Errorf("init redis: %w", err)
		}
		defer func() { _ = rc.Close() }()
		cache = rc
		zap.L().Info("Redis 初始化成功")
	}

	// 5. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.Issuer, conf.JWTConfig.AccessTokenExpiry)

	// 6. 关系事件发布
	publisher := mq.NewPublisher(&conf.KafkaConfig)
	defer func() { _ = publisher.Close() }()

	// 7. 指标
	var m *metrics.Metrics
	var metricsHandler http.Handler
	if conf.MetricsConfig.Enabled {
		m = metrics.New()
		metricsHandler = m.Handler()
	}

	// 8. Service / Handler 依赖注入
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Publisher: publisher,
		Metrics:   m,
	})
	if err := handler.InitTrans("zh"); err != nil {
		return fmt.Errorf("init validator translator: %w", err)
	}
	engine := https_server.Init(conf, handler.NewHandlers(svc), svc.Auth, metricsHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr), zap.Bool("tls", conf.MainConfig.TLS))
		var err error
		if conf.MainConfig.TLS {
			err = srv.ListenAndServeTLS(conf.MainConfig.CertFile, conf.MainConfig.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Shutdown 不会等待已被劫持的 WebSocket 连接，逐个主动关闭
		closeConnections(svc)
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func closeConnections(svc *service.Services) {
	n := svc.Directory.CloseAll()
	zap.L().Info("closed websocket connections", zap.Int("count", n))
}
