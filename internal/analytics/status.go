package analytics

import "fmt"

// Status 考勤状态，封闭枚举；零值 StatusNone 表示无状态
type Status uint8

const (
	StatusNone Status = iota
	StatusPresent
	StatusAbsent
	StatusLate
	StatusExcused
)

// TrackedStatuses 参与统计的全部状态，顺序即展示顺序
var TrackedStatuses = [...]Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// ParseStatus 严格匹配存储层的原始状态字符串
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "Present":
		return StatusPresent, true
	case "Absent":
		return StatusAbsent, true
	case "Late":
		return StatusLate, true
	case "Excused":
		return StatusExcused, true
	default:
		return StatusNone, false
	}
}

func (s Status) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	case StatusLate:
		return "Late"
	case StatusExcused:
		return "Excused"
	default:
		return ""
	}
}

// Tracked 是否为四种统计状态之一
func (s Status) Tracked() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	default:
		return false
	}
}

// MarshalText 序列化为原始状态字符串；StatusNone 序列化为空串
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText 解析原始状态字符串；空串解析为 StatusNone
func (s *Status) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = StatusNone
		return nil
	}
	st, ok := ParseStatus(string(b))
	if !ok {
		return fmt.Errorf("analytics: unknown attendance status %q", string(b))
	}
	*s = st
	return nil
}
