// Package mysql 提供关系存储的初始化
// 负责建立数据库连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"
	"time"

	"harmony_server/internal/config"
	"harmony_server/internal/dao/mysql/repository"
	"harmony_server/internal/model"

	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init 按配置打开数据库、迁移表结构并返回 Repository 实例集合
func Init(conf *config.MysqlConfig) (*repository.Repositories, *gorm.DB, error) {
	db, err := Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, nil, err
	}
	return repository.NewRepositories(db), db, nil
}

// Open 建立数据库连接
// TranslateError 让驱动把唯一约束冲突翻译为 gorm.ErrDuplicatedKey
func Open(conf *config.MysqlConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch conf.Driver {
	case "sqlite":
		dialector = sqlite.Open(conf.DSN)
	case "mysql", "":
		dsn := conf.DSN
		if dsn == "" {
			// 格式：user:password@tcp(host:port)/database?params
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				conf.User, conf.Password, conf.Host, conf.Port, conf.DatabaseName)
		}
		dialector = mysqldriver.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", conf.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db, nil
}

// Migrate 自动迁移表结构，不会删除已有字段或数据
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.UserInfo{},
		&model.Team{},
		&model.TeamLink{},
		&model.UserLink{},
		&model.Request{},
	)
}
