package model

import (
	"fmt"

	"gorm.io/gorm"
)

// TeamLink 团队成员关系
// ActiveKey 在关系有效时为 "team:user"，软删除时置空；唯一索引保证同一成员关系只有一条有效记录
type TeamLink struct {
	gorm.Model
	TeamId    uint    `gorm:"column:team_id;index;not null;comment:团队ID"`
	UserId    uint    `gorm:"column:user_id;index;not null;comment:成员ID"`
	ActiveKey *string `gorm:"column:active_key;uniqueIndex;type:varchar(64);comment:有效关系键"`
}

func (TeamLink) TableName() string {
	return "teams_links"
}

// BeforeCreate 填充有效关系键
func (l *TeamLink) BeforeCreate(tx *gorm.DB) error {
	key := TeamLinkKey(l.TeamId, l.UserId)
	l.ActiveKey = &key
	return nil
}

// TeamLinkKey 团队成员关系的唯一键
func TeamLinkKey(teamId, userId uint) string {
	return fmt.Sprintf("%d:%d", teamId, userId)
}
