// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"context"
	"time"

	"harmony_server/internal/model"
	"harmony_server/pkg/enum/request"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口，软删除的用户视为不存在
type UserRepository interface {
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.UserInfo, error)
	// FindById 根据主键查找用户
	FindById(id uint) (*model.UserInfo, error)
	// FindByIds 批量查找用户
	FindByIds(ids []uint) ([]model.UserInfo, error)
	// Create 创建用户
	Create(user *model.UserInfo) error
}

// TeamRepository 团队数据访问接口
type TeamRepository interface {
	// FindByUid 根据团队 uid 查找
	FindByUid(uid string) (*model.Team, error)
	// FindOwnedBy 查找用户拥有的团队
	FindOwnedBy(userId uint) ([]model.Team, error)
	// FindJoinedBy 查找用户以成员身份加入的团队
	FindJoinedBy(userId uint) ([]model.Team, error)
	// Create 创建团队
	Create(team *model.Team) error
}

// TeamLinkRepository 团队成员关系数据访问接口
type TeamLinkRepository interface {
	// Exists 用户是否为团队的有效成员
	Exists(teamId, userId uint) (bool, error)
	// Create 添加成员，重复添加返回 CodeDuplicate
	Create(link *model.TeamLink) error
}

// UserLinkRepository 好友关系数据访问接口
type UserLinkRepository interface {
	// Exists 两个用户是否为好友（与顺序无关）
	Exists(a, b uint) (bool, error)
	// Create 添加好友关系，重复添加返回 CodeDuplicate
	Create(link *model.UserLink) error
	// FriendIds 查询用户的所有好友 ID
	FriendIds(userId uint) ([]uint, error)
	// SoftDelete 解除好友关系，返回是否存在被删除的关系
	SoftDelete(a, b uint) (bool, error)
}

// RequestRepository 关系申请数据访问接口
type RequestRepository interface {
	// FindPendingByUid 查找待处理的申请，已处理（已软删除）视为不存在
	FindPendingByUid(uid string) (*model.Request, error)
	// HasPending 指定待处理唯一键是否已被占用
	HasPending(pendingKey string) (bool, error)
	// Create 创建申请，待处理唯一键冲突返回 CodeDuplicate
	Create(req *model.Request) error
	// ListIncoming 接收方的待处理申请，按创建时间升序
	ListIncoming(receiverId uint, kind request.Kind) ([]IncomingRequest, error)
	// Claim 将待处理申请原子地迁移到终态并软删除，返回是否抢占成功
	Claim(id uint, status request.Status, at time.Time) (bool, error)
}

// ==================== 复合结构 ====================

// IncomingRequest 待处理申请及发起方信息
type IncomingRequest struct {
	Uid            string       `json:"uid"`
	Kind           request.Kind `json:"kind"`
	Data           string       `json:"data"`
	CreatedAt      time.Time    `json:"createdAt"`
	SenderId       uint         `json:"senderId"`
	SenderEmail    string       `json:"senderEmail"`
	SenderUsername string       `json:"senderUsername"`
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db       *gorm.DB
	User     UserRepository
	Team     TeamRepository
	TeamLink TeamLinkRepository
	UserLink UserLinkRepository
	Request  RequestRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:       db,
		User:     NewUserRepository(db),
		Team:     NewTeamRepository(db),
		TeamLink: NewTeamLinkRepository(db),
		UserLink: NewUserLinkRepository(db),
		Request:  NewRequestRepository(db),
	}
}

// WithContext 返回绑定了 ctx 的 Repositories，取消或超时会中断查询
func (r *Repositories) WithContext(ctx context.Context) *Repositories {
	return NewRepositories(r.db.WithContext(ctx))
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
