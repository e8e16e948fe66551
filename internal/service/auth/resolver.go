package auth

import (
	"context"

	"harmony_server/internal/dao/mysql/repository"
	"harmony_server/internal/model"
	"harmony_server/pkg/errorx"
)

// IdentityResolver 根据邮箱解析身份
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (*model.Identity, error)
}

// StoreResolver 从关系存储实时解析身份
type StoreResolver struct {
	repos *repository.Repositories
}

// NewStoreResolver 创建基于 Repository 的解析器
func NewStoreResolver(repos *repository.Repositories) *StoreResolver {
	return &StoreResolver{repos: repos}
}

// Resolve 用户不存在或已删除时返回 CodeUnknownIdentity
// Groups 为拥有的团队与加入的团队的并集，按团队 ID 顺序去重
func (r *StoreResolver) Resolve(ctx context.Context, email string) (*model.Identity, error) {
	repos := r.repos.WithContext(ctx)

	user, err := repos.User.FindByEmail(email)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.Wrap(err, errorx.CodeUnknownIdentity, errorx.ErrUnknownIdentity.Msg)
		}
		return nil, err
	}

	owned, err := repos.Team.FindOwnedBy(user.ID)
	if err != nil {
		return nil, err
	}
	joined, err := repos.Team.FindJoinedBy(user.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(owned)+len(joined))
	groups := make([]string, 0, len(owned)+len(joined))
	for _, teams := range [][]model.Team{owned, joined} {
		for _, t := range teams {
			if _, ok := seen[t.Uid]; ok {
				continue
			}
			seen[t.Uid] = struct{}{}
			groups = append(groups, t.Uid)
		}
	}

	return &model.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Groups:   groups,
	}, nil
}
