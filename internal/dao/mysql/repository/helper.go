package repository

import (
	"errors"

	"chat_server/pkg/errorx"

	"gorm.io/gorm"
)

// ==================== 错误包装辅助函数 ====================

// classify 根据 gorm 错误选择业务错误码：
//   - ErrRecordNotFound -> CodeNotFound
//   - ErrDuplicatedKey  -> CodeConflict（需开启 gorm.Config.TranslateError）
//   - 其他错误          -> CodeDBError
func classify(err error) int {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errorx.CodeNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errorx.CodeConflict
	default:
		return errorx.CodeDBError
	}
}

// wrapDBError 包装数据库错误
func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, classify(err), msg)
}

// wrapDBErrorf 包装数据库错误（支持格式化消息）
func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, classify(err), format, args...)
}

// normalizePage 分页参数兜底
func normalizePage(limit, skip, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

// likeEscape LIKE 子句使用的转义字符，MySQL 与 SQLite 通用
const likeEscape = "ESCAPE '!'"

// likePattern 转义 LIKE 通配符后拼接 %keyword%
func likePattern(keyword string) string {
	r := []rune{}
	for _, c := range keyword {
		if c == '%' || c == '_' || c == '!' {
			r = append(r, '!')
		}
		r = append(r, c)
	}
	return "%" + string(r) + "%"
}
