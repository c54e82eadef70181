package activation

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Kind 学期类型
type Kind string

const (
	KindWinter       Kind = "winter"
	KindSpring       Kind = "spring"
	KindAcademicYear Kind = "academic_year"
)

// Valid 是否为已知学期类型
func (k Kind) Valid() bool {
	switch k {
	case KindWinter, KindSpring, KindAcademicYear:
		return true
	default:
		return false
	}
}

// KeywordRule 一条学期类型匹配规则
type KeywordRule struct {
	Kind     Kind
	Keywords []string
}

// KeywordTable 有序规则表，靠前的规则优先匹配
type KeywordTable []KeywordRule

// DefaultKeywordTable 内置的英文/希腊文关键字表
func DefaultKeywordTable() KeywordTable {
	return KeywordTable{
		{Kind: KindWinter, Keywords: []string{"winter", "χειμερινο", "fall", "autumn"}},
		{Kind: KindSpring, Keywords: []string{"spring", "εαρινο"}},
		{Kind: KindAcademicYear, Keywords: []string{"academic"}},
	}
}

// normalized 返回关键字统一规范化后的副本
func (t KeywordTable) normalized() (KeywordTable, error) {
	out := make(KeywordTable, 0, len(t))
	for i, rule := range t {
		if !rule.Kind.Valid() {
			return nil, fmt.Errorf("activation: rule %d has unknown kind %q", i, rule.Kind)
		}
		if len(rule.Keywords) == 0 {
			return nil, fmt.Errorf("activation: rule %d (%s) has no keywords", i, rule.Kind)
		}
		kws := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			n := strings.TrimSpace(Normalize(kw))
			if n == "" {
				return nil, fmt.Errorf("activation: rule %d (%s) has an empty keyword", i, rule.Kind)
			}
			kws = append(kws, n)
		}
		out = append(out, KeywordRule{Kind: rule.Kind, Keywords: kws})
	}
	return out, nil
}

// Normalize 去除变音符号并转小写：NFD 分解 → 删除组合符 → NFC 重组 → 小写
func Normalize(s string) string {
	// transform.Chain 有内部状态，每次调用单独构建
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}
