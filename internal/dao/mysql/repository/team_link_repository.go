package repository

import (
	"harmony_server/internal/model"

	"gorm.io/gorm"
)

type teamLinkRepository struct {
	db *gorm.DB
}

// NewTeamLinkRepository 创建团队成员关系 Repository
func NewTeamLinkRepository(db *gorm.DB) TeamLinkRepository {
	return &teamLinkRepository{db: db}
}

// Exists 按有效关系键判断，软删除的记录键已清空
func (r *teamLinkRepository) Exists(teamId, userId uint) (bool, error) {
	ok, err := exists(r.db, &model.TeamLink{}, "active_key = ?", model.TeamLinkKey(teamId, userId))
	if err != nil {
		return false, wrapDBErrorf(err, "查询团队成员 team_id=%d user_id=%d", teamId, userId)
	}
	return ok, nil
}

func (r *teamLinkRepository) Create(link *model.TeamLink) error {
	if err := r.db.Create(link).Error; err != nil {
		return wrapDBErrorf(err, "添加团队成员 team_id=%d user_id=%d", link.TeamId, link.UserId)
	}
	return nil
}
