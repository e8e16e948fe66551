package model

import (
	"gorm.io/gorm"
)

// Team 团队，团队聊天室名为 "online:" + Uid
type Team struct {
	gorm.Model
	Uid     string `gorm:"column:uid;uniqueIndex;type:varchar(64);not null;comment:团队唯一id"`
	Name    string `gorm:"column:name;type:varchar(64);not null;comment:团队名称"`
	OwnerId uint   `gorm:"column:owner_id;index;not null;comment:团队所有者"`
}

func (Team) TableName() string {
	return "teams"
}
