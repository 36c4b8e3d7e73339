package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// ── PostgreSQL DATE 自定义类型 ──

// DateOnly 对应 PostgreSQL DATE 类型，实现 GORM Scanner/Valuer 接口。
// 对外始终表现为 ISO 格式字符串（YYYY-MM-DD），天然支持字典序 = 时间序。
type DateOnly string

const dateLayout = "2006-01-02"

// Scan 将 PostgreSQL 返回的 DATE 值解析为 ISO 字符串。
func (d *DateOnly) Scan(src interface{}) error {
	if src == nil {
		*d = ""
		return nil
	}
	switch v := src.(type) {
	case time.Time:
		*d = DateOnly(v.Format(dateLayout))
	case string:
		*d = DateOnly(v)
	case []byte:
		*d = DateOnly(v)
	default:
		return fmt.Errorf("DateOnly.Scan: unsupported type %T", src)
	}
	return nil
}

// Value 将 ISO 字符串序列化为数据库 DATE 值。
func (d DateOnly) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// String 返回 ISO 格式字符串。
func (d DateOnly) String() string { return string(d) }

// ParseDate 校验并规范化日期字符串（仅接受 YYYY-MM-DD）。
func ParseDate(s string) (DateOnly, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("无效的日期格式 %q（应为 YYYY-MM-DD）: %w", s, err)
	}
	return DateOnly(t.Format(dateLayout)), nil
}

// Today 返回当前日期（服务器本地时区）。
func Today() DateOnly {
	return DateOnly(time.Now().Format(dateLayout))
}
