package service

import (
	"harmony_server/internal/dao/mysql/repository"
	myredis "harmony_server/internal/dao/redis"
	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/internal/service/auth"
	"harmony_server/internal/service/chat"
	"harmony_server/internal/service/notify"
	"harmony_server/internal/service/presence"
	"harmony_server/internal/service/relation"
)

// Services 聚合所有 Service 实例，Handler 层通过它访问业务
type Services struct {
	Auth     AuthService
	Relation RelationService
	Chat     ChatService

	Directory *presence.Directory
	// Notifier 供外部聊天消息模块调用 NotifyTeamMessage，把消息变更广播到团队房间
	Notifier *notify.Dispatcher
}

// Deps 构造 Services 所需的基础设施
// Cache 为 nil 表示不启用缓存，Metrics 为 nil 表示不采集指标
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService
	Publisher mq.EventPublisher
	Metrics   *metrics.Metrics
}

// NewServices 创建并注入所有 Service 实例
// 在线目录和通知器在进程内共享一份
func NewServices(d Deps) *Services {
	dir := presence.NewDirectory()
	dispatcher := notify.NewDispatcher(dir, d.Metrics)

	return &Services{
		Auth:      auth.NewAuthService(auth.NewStoreResolver(d.Repos), d.Metrics),
		Relation:  relation.NewRelationService(d.Repos, dispatcher, d.Cache, d.Publisher, d.Metrics),
		Chat:      chat.NewManager(dir, d.Metrics),
		Directory: dir,
		Notifier:  dispatcher,
	}
}
