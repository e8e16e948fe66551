// Package model 定义数据库实体模型
// 本文件定义用户信息模型，用户的注册与登录由外部账号服务负责，这里只读
package model

import (
	"gorm.io/gorm"
)

// UserInfo 用户信息模型
// 对应数据库 users 表
type UserInfo struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Email 邮箱，握手凭证中的身份主键
	Email string `gorm:"column:email;uniqueIndex;type:varchar(255);not null;comment:邮箱"`

	// Username 展示用名称，通知中携带
	Username string `gorm:"column:username;type:varchar(64);not null;comment:用户名"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "users"
}
