// Package analytics 将某课程某日的逐学生、逐节次考勤记录汇总为覆盖率统计。
//
// 所有函数都是纯函数：不修改输入，不依赖 map 遍历顺序，空输入返回零值结果。
package analytics

// SlotKey 一个考勤槽位：学生 × 节次
type SlotKey struct {
	StudentID int
	Period    int
}

// Marks 槽位到原始状态字符串的映射
type Marks map[SlotKey]string

// Counts 各状态计数
type Counts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
}

// Get 返回指定状态的计数
func (c Counts) Get(s Status) int {
	switch s {
	case StatusPresent:
		return c.Present
	case StatusAbsent:
		return c.Absent
	case StatusLate:
		return c.Late
	case StatusExcused:
		return c.Excused
	default:
		return 0
	}
}

// Total 四种状态计数之和
func (c Counts) Total() int {
	return c.Present + c.Absent + c.Late + c.Excused
}

func (c *Counts) add(s Status) {
	switch s {
	case StatusPresent:
		c.Present++
	case StatusAbsent:
		c.Absent++
	case StatusLate:
		c.Late++
	case StatusExcused:
		c.Excused++
	}
}

// Snapshot 一次汇总的结果
//
// TotalSlots == RecordedSlots + PendingSlots + UnrecognizedSlots 恒成立。
type Snapshot struct {
	OverallCounts     Counts
	PerPeriodCounts   map[int]Counts
	TotalSlots        int
	RecordedSlots     int
	PendingSlots      int
	UnrecognizedSlots int // 有记录但状态无法识别，既不算已记录也不算待记录
}

// Coverage 已记录槽位占比，四舍五入为整数百分比；无槽位时为 0
func (s Snapshot) Coverage() int {
	return percent(s.RecordedSlots, s.TotalSlots)
}

// Aggregate 对 studentIDs × periods 的笛卡尔积逐槽位折叠
func Aggregate(marks Marks, studentIDs, periods []int) Snapshot {
	snap := Snapshot{
		PerPeriodCounts: make(map[int]Counts, len(periods)),
		TotalSlots:      len(studentIDs) * len(periods),
	}
	for _, p := range periods {
		snap.PerPeriodCounts[p] = Counts{}
	}

	for _, sid := range studentIDs {
		for _, p := range periods {
			raw, ok := marks[SlotKey{StudentID: sid, Period: p}]
			if !ok {
				snap.PendingSlots++
				continue
			}
			st, ok := ParseStatus(raw)
			if !ok {
				snap.UnrecognizedSlots++
				continue
			}
			snap.OverallCounts.add(st)
			pc := snap.PerPeriodCounts[p]
			pc.add(st)
			snap.PerPeriodCounts[p] = pc
			snap.RecordedSlots++
		}
	}

	return snap
}

// percent 计算 part/total 的百分比（四舍五入，.5 向上）
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (total * 2)
}
