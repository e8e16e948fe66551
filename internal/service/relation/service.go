// Package relation 实现关系申请协调：入队邀请与好友申请的创建、去重、处理，以及好友列表维护
//
// 申请状态只能从 pending 迁移到 accepted 或 declined。重复申请由存储层唯一索引兜底，
// 并发竞争会被翻译为对应的冲突错误；处理申请时的条件更新保证同一申请只会被处理一次。
// 通知、缓存失效和事件发布都在事务提交之后进行，失败不影响已提交的结果。
package relation

import (
	"context"
	"sync"
	"time"

	"harmony_server/internal/dao/mysql/repository"
	myredis "harmony_server/internal/dao/redis"
	"harmony_server/internal/infrastructure/metrics"
	"harmony_server/internal/infrastructure/mq"
	"harmony_server/internal/model"
	"harmony_server/internal/service/notify"
	"harmony_server/pkg/errorx"

	"go.uber.org/zap"
)

// Service 关系申请协调器
type Service struct {
	repos     *repository.Repositories
	notifier  notify.Notifier
	cache     myredis.AsyncCacheService
	publisher mq.EventPublisher
	metrics   *metrics.Metrics
	now       func() time.Time

	gens sync.Map // 缓存 key -> *atomic.Uint64 失效代数
}

// NewRelationService cache、publisher、metrics 均可为 nil
func NewRelationService(
	repos *repository.Repositories,
	notifier notify.Notifier,
	cache myredis.AsyncCacheService,
	publisher mq.EventPublisher,
	m *metrics.Metrics,
) *Service {
	return &Service{
		repos:     repos,
		notifier:  notifier,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
	}
}

// findActor 查找已认证的调用方，调用方账号在连接期间被删除时按身份未知处理
func findActor(repos *repository.Repositories, email string) (*model.UserInfo, error) {
	user, err := repos.User.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeUnknownIdentity, errorx.ErrUnknownIdentity.Msg)
		}
		return nil, err
	}
	return user, nil
}

// findTarget 查找被操作的用户
func findTarget(repos *repository.Repositories, email string) (*model.UserInfo, error) {
	user, err := repos.User.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// displayName 通知中展示的名称，用户名为空时退回邮箱
func displayName(u *model.UserInfo) string {
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}

// conflict 记录冲突指标后原样返回
func (s *Service) conflict(err error) error {
	switch errorx.GetCode(err) {
	case errorx.CodeAlreadyMember:
		s.metrics.RequestConflict("already_member")
	case errorx.CodeAlreadyInvited:
		s.metrics.RequestConflict("already_invited")
	case errorx.CodeAlreadyFriends:
		s.metrics.RequestConflict("already_friends")
	case errorx.CodeAlreadyPending:
		s.metrics.RequestConflict("already_pending")
	}
	return err
}

// publish 发布关系事件，失败只记录日志
func (s *Service) publish(event mq.RelationEvent) {
	if s.publisher == nil {
		return
	}
	if event.At.IsZero() {
		event.At = s.now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.publisher.Publish(ctx, event); err != nil {
		zap.L().Warn("publish relation event failed", zap.String("type", event.Type), zap.Error(err))
	}
}
