package repository

import (
	"harmony_server/internal/model"

	"gorm.io/gorm"
)

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository 创建团队 Repository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) FindByUid(uid string) (*model.Team, error) {
	var team model.Team
	if err := r.db.First(&team, "uid = ?", uid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询团队 uid=%s", uid)
	}
	return &team, nil
}

func (r *teamRepository) FindOwnedBy(userId uint) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.Where("owner_id = ?", userId).Order("id ASC").Find(&teams).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询拥有的团队 user_id=%d", userId)
	}
	return teams, nil
}

// FindJoinedBy 通过成员关系表关联查询，已解除的成员关系不计入
func (r *teamRepository) FindJoinedBy(userId uint) ([]model.Team, error) {
	var teams []model.Team
	if err := r.db.
		Joins("JOIN teams_links ON teams_links.team_id = teams.id").
		Where("teams_links.user_id = ? AND teams_links.deleted_at IS NULL", userId).
		Order("teams.id ASC").
		Find(&teams).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询加入的团队 user_id=%d", userId)
	}
	return teams, nil
}

func (r *teamRepository) Create(team *model.Team) error {
	if err := r.db.Create(team).Error; err != nil {
		return wrapDBError(err, "创建团队")
	}
	return nil
}
