package repository

import (
	"errors"
	"strings"

	"harmony_server/pkg/errorx"

	"gorm.io/gorm"
)

// wrapDBError 包装数据库错误
// 根据错误类型返回不同的错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - 唯一约束冲突 -> CodeDuplicate
//   - 其他错误 -> CodeDBError
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, dbErrorCode(err), msg)
}

// wrapDBErrorf 功能同 wrapDBError，支持格式化消息
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, dbErrorCode(err), format, args...)
}

func dbErrorCode(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.CodeNotFound
	case isDuplicate(err):
		return errorx.CodeDuplicate
	default:
		return errorx.CodeDBError
	}
}

// isDuplicate 开启 TranslateError 后驱动会返回 gorm.ErrDuplicatedKey，
// 未翻译的错误按 MySQL / SQLite 的错误文本兜底识别
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// exists 统计满足条件的记录是否存在
func exists(db *gorm.DB, m any, query string, args ...any) (bool, error) {
	var n int64
	if err := db.Model(m).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
