// Package activation 根据学期名称与参考日期判断学期当前是否处于激活状态。
//
// 结果是三态的：激活、未激活、不适用。名称无法识别（类型或年份缺失、
// 年份越界）时返回不适用，调用方不得把它当作未激活处理。
package activation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 2000
	maxYear = 2100
)

var yearPattern = regexp.MustCompile(`[0-9]{4}`)

// StatusTag 展示用的激活状态标签
type StatusTag string

const (
	StatusActive        StatusTag = "active"
	StatusInactive      StatusTag = "inactive"
	StatusNotApplicable StatusTag = "not_applicable"
)

// Status 激活状态；IsActive 为 nil 表示不适用
type Status struct {
	IsActive *bool     `json:"is_active"`
	Tag      StatusTag `json:"status"`
}

// DateRange 闭区间日期范围，端点为当天零点
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains 判断 t 所在的日历日是否落在区间内（两端包含）
func (r DateRange) Contains(t time.Time) bool {
	day := midnight(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Resolver 学期激活判定器，构建后只读，可并发使用
type Resolver struct {
	table KeywordTable
	now   func() time.Time
}

// Option Resolver 可选项
type Option func(*Resolver)

// WithClock 替换 Status 使用的当前时间来源
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver 创建判定器；table 为空时使用 DefaultKeywordTable
func NewResolver(table KeywordTable, opts ...Option) (*Resolver, error) {
	if len(table) == 0 {
		table = DefaultKeywordTable()
	}
	normalized, err := table.normalized()
	if err != nil {
		return nil, err
	}
	r := &Resolver{table: normalized, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Classify 按规则顺序匹配学期类型，第一条命中的规则生效
func (r *Resolver) Classify(label string) (Kind, bool) {
	normalized := Normalize(label)
	if normalized == "" {
		return "", false
	}
	for _, rule := range r.table {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Kind, true
			}
		}
	}
	return "", false
}

// ExtractYear 取原始名称中第一个连续 4 位数字，"2024-2025" 取 2024。不做范围校验。
func ExtractYear(label string) (int, bool) {
	m := yearPattern.FindString(label)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// RangeFor 按固定偏移计算学期区间，端点位于 loc 的零点
func RangeFor(kind Kind, year int, loc *time.Location) (DateRange, bool) {
	if loc == nil {
		loc = time.Local
	}
	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, loc)
	}
	switch kind {
	case KindWinter:
		return DateRange{Start: day(year, time.September, 15), End: day(year+1, time.January, 30)}, true
	case KindSpring:
		return DateRange{Start: day(year, time.February, 1), End: day(year, time.June, 30)}, true
	case KindAcademicYear:
		return DateRange{Start: day(year, time.September, 1), End: day(year+1, time.June, 30)}, true
	default:
		return DateRange{}, false
	}
}

// Window 解析名称得到学期区间；类型、年份任一无法确定或年份越界时 ok=false
func (r *Resolver) Window(label string, loc *time.Location) (rng DateRange, kind Kind, year int, ok bool) {
	kind, ok = r.Classify(label)
	if !ok {
		return DateRange{}, "", 0, false
	}
	year, ok = ExtractYear(label)
	if !ok || year < minYear || year > maxYear {
		return DateRange{}, "", 0, false
	}
	rng, ok = RangeFor(kind, year, loc)
	if !ok {
		return DateRange{}, "", 0, false
	}
	return rng, kind, year, true
}

// Compute 判断参考日期是否落在学期区间内。ok=false 表示不适用。
func (r *Resolver) Compute(label string, ref time.Time) (active bool, ok bool) {
	rng, _, _, ok := r.Window(label, ref.Location())
	if !ok {
		return false, false
	}
	return rng.Contains(ref), true
}

// StatusAt 将 Compute 的结果包装为展示用状态
func (r *Resolver) StatusAt(label string, ref time.Time) Status {
	active, ok := r.Compute(label, ref)
	if !ok {
		return Status{Tag: StatusNotApplicable}
	}
	if active {
		return Status{IsActive: &active, Tag: StatusActive}
	}
	return Status{IsActive: &active, Tag: StatusInactive}
}

// Status 以当前时间计算激活状态
func (r *Resolver) Status(label string) Status {
	return r.StatusAt(label, r.now())
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
