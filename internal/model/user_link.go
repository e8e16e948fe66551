package model

import (
	"fmt"

	"gorm.io/gorm"
)

// UserLink 好友关系，无方向，(a, b) 与 (b, a) 视为同一关系
type UserLink struct {
	gorm.Model
	UserId1   uint    `gorm:"column:user_id1;index;not null;comment:发起方"`
	UserId2   uint    `gorm:"column:user_id2;index;not null;comment:接受方"`
	ActiveKey *string `gorm:"column:active_key;uniqueIndex;type:varchar(64);comment:有效关系键"`
}

func (UserLink) TableName() string {
	return "users_links"
}

func (l *UserLink) BeforeCreate(tx *gorm.DB) error {
	key := PairKey(l.UserId1, l.UserId2)
	l.ActiveKey = &key
	return nil
}

// PairKey 与顺序无关的用户对键，小 ID 在前
func PairKey(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}
