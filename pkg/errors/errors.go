package errors

import (
	"errors"
	"time"
)

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
	// ErrInvalidDate 日期格式无效
	ErrInvalidDate = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// DateLayout 接口与存储层统一使用的日期格式
const DateLayout = "2006-01-02"

// ParseDate 按 DateLayout 在 loc 时区解析日期
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
