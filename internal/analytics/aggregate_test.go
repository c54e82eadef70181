package analytics

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestAggregate_Empty(t *testing.T) {
	snap := Aggregate(nil, nil, nil)
	if snap.TotalSlots != 0 || snap.RecordedSlots != 0 || snap.PendingSlots != 0 {
		t.Errorf("期望全部为 0，实际 total=%d recorded=%d pending=%d", snap.TotalSlots, snap.RecordedSlots, snap.PendingSlots)
	}
	if snap.Coverage() != 0 {
		t.Errorf("期望 coverage=0，实际=%d", snap.Coverage())
	}
	if len(snap.PerPeriodCounts) != 0 {
		t.Errorf("期望无节次统计，实际 %v", snap.PerPeriodCounts)
	}
}

func TestAggregate_NoStudents(t *testing.T) {
	snap := Aggregate(Marks{}, nil, []int{1, 2, 3})
	if snap.TotalSlots != 0 || snap.Coverage() != 0 {
		t.Errorf("期望 total=0 coverage=0，实际 total=%d coverage=%d", snap.TotalSlots, snap.Coverage())
	}
	// 请求的节次即使没有学生也出现在结果中
	if len(snap.PerPeriodCounts) != 3 {
		t.Errorf("期望 3 个节次，实际 %d", len(snap.PerPeriodCounts))
	}
	if c, ok := snap.PerPeriodCounts[2]; !ok || c != (Counts{}) {
		t.Errorf("节次 2 应存在且计数为 0，实际 %+v (ok=%v)", c, ok)
	}
}

func TestAggregate_Scenarios(t *testing.T) {
	tests := []struct {
		name         string
		marks        Marks
		students     []int
		periods      []int
		total        int
		recorded     int
		pending      int
		unrecognized int
		coverage     int
		overall      Counts
	}{
		{
			name:     "no marks",
			marks:    Marks{},
			students: []int{1, 2},
			periods:  []int{1, 2, 3},
			total:    6, pending: 6,
		},
		{
			// 3 名学生 × 2 节，4 个 Present，2 个未登记
			name: "three students two periods",
			marks: Marks{
				{StudentID: 1, Period: 1}: "Present",
				{StudentID: 1, Period: 2}: "Present",
				{StudentID: 2, Period: 1}: "Present",
				{StudentID: 3, Period: 2}: "Present",
			},
			students: []int{1, 2, 3},
			periods:  []int{1, 2},
			total:    6, recorded: 4, pending: 2, coverage: 67,
			overall: Counts{Present: 4},
		},
		{
			name: "mixed statuses",
			marks: Marks{
				{StudentID: 1, Period: 1}: "Present",
				{StudentID: 1, Period: 2}: "Late",
				{StudentID: 2, Period: 1}: "Absent",
				{StudentID: 3, Period: 2}: "Excused",
				{StudentID: 3, Period: 1}: "Present",
			},
			students: []int{1, 2, 3},
			periods:  []int{1, 2},
			total:    6, recorded: 5, pending: 1, coverage: 83,
			overall: Counts{Present: 2, Absent: 1, Late: 1, Excused: 1},
		},
		{
			name: "marks outside product ignored",
			marks: Marks{
				{StudentID: 1, Period: 1}: "Present",
				{StudentID: 9, Period: 1}: "Absent",  // 不在学生列表中
				{StudentID: 1, Period: 8}: "Present", // 不在节次列表中
			},
			students: []int{1},
			periods:  []int{1, 2},
			total:    2, recorded: 1, pending: 1, coverage: 50,
			overall: Counts{Present: 1},
		},
		{
			name: "unrecognized statuses",
			marks: Marks{
				{StudentID: 1, Period: 1}: "Present",
				{StudentID: 1, Period: 2}: "present", // 大小写不符
				{StudentID: 2, Period: 1}: "Sick",
			},
			students: []int{1, 2},
			periods:  []int{1, 2},
			total:    4, recorded: 1, pending: 1, unrecognized: 2, coverage: 25,
			overall: Counts{Present: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Aggregate(tt.marks, tt.students, tt.periods)
			if snap.TotalSlots != tt.total {
				t.Errorf("total: 期望 %d，实际 %d", tt.total, snap.TotalSlots)
			}
			if snap.RecordedSlots != tt.recorded {
				t.Errorf("recorded: 期望 %d，实际 %d", tt.recorded, snap.RecordedSlots)
			}
			if snap.PendingSlots != tt.pending {
				t.Errorf("pending: 期望 %d，实际 %d", tt.pending, snap.PendingSlots)
			}
			if snap.UnrecognizedSlots != tt.unrecognized {
				t.Errorf("unrecognized: 期望 %d，实际 %d", tt.unrecognized, snap.UnrecognizedSlots)
			}
			if snap.Coverage() != tt.coverage {
				t.Errorf("coverage: 期望 %d，实际 %d", tt.coverage, snap.Coverage())
			}
			if snap.OverallCounts != tt.overall {
				t.Errorf("overall: 期望 %+v，实际 %+v", tt.overall, snap.OverallCounts)
			}
		})
	}
}

func TestAggregate_PerPeriod(t *testing.T) {
	marks := Marks{
		{StudentID: 1, Period: 1}: "Present",
		{StudentID: 1, Period: 2}: "Late",
		{StudentID: 2, Period: 1}: "Absent",
		{StudentID: 3, Period: 2}: "Excused",
		{StudentID: 3, Period: 1}: "Present",
		{StudentID: 1, Period: 8}: "Present",
	}
	snap := Aggregate(marks, []int{1, 2, 3}, []int{1, 2})

	if got := snap.PerPeriodCounts[1]; got != (Counts{Present: 2, Absent: 1}) {
		t.Errorf("节次 1 计数错误: %+v", got)
	}
	if got := snap.PerPeriodCounts[2]; got != (Counts{Late: 1, Excused: 1}) {
		t.Errorf("节次 2 计数错误: %+v", got)
	}
	if _, ok := snap.PerPeriodCounts[8]; ok {
		t.Error("未请求的节次不应出现在结果中")
	}
}

func TestAggregate_SlotAccounting(t *testing.T) {
	statuses := []string{"Present", "Absent", "Late", "Excused", "bogus"}
	marks := Marks{}
	students := []int{10, 20, 30, 40}
	periods := []int{1, 2, 3, 4, 5, 6, 7}
	i := 0
	for _, s := range students {
		for _, p := range periods {
			if i%3 != 0 {
				marks[SlotKey{StudentID: s, Period: p}] = statuses[i%len(statuses)]
			}
			i++
		}
	}

	snap := Aggregate(marks, students, periods)
	if snap.TotalSlots != len(students)*len(periods) {
		t.Errorf("期望 total=%d，实际=%d", len(students)*len(periods), snap.TotalSlots)
	}
	if sum := snap.RecordedSlots + snap.PendingSlots + snap.UnrecognizedSlots; sum != snap.TotalSlots {
		t.Errorf("recorded+pending+unrecognized=%d，应等于 total=%d", sum, snap.TotalSlots)
	}
	if snap.OverallCounts.Total() != snap.RecordedSlots {
		t.Errorf("总计数 %d 应等于 recorded %d", snap.OverallCounts.Total(), snap.RecordedSlots)
	}

	perPeriodTotal := 0
	for _, c := range snap.PerPeriodCounts {
		perPeriodTotal += c.Total()
	}
	if perPeriodTotal != snap.RecordedSlots {
		t.Errorf("节次计数之和 %d 应等于 recorded %d", perPeriodTotal, snap.RecordedSlots)
	}

	for _, st := range TrackedStatuses {
		sum := 0
		for _, c := range snap.PerPeriodCounts {
			sum += c.Get(st)
		}
		if sum != snap.OverallCounts.Get(st) {
			t.Errorf("%s: 节次之和 %d 与总计 %d 不一致", st, sum, snap.OverallCounts.Get(st))
		}
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	marks := Marks{
		{StudentID: 1, Period: 1}: "Present",
		{StudentID: 2, Period: 2}: "Absent",
		{StudentID: 3, Period: 3}: "Late",
	}
	a := Aggregate(marks, []int{1, 2, 3}, []int{1, 2, 3})
	b := Aggregate(marks, []int{3, 1, 2}, []int{2, 3, 1})
	if !reflect.DeepEqual(a, b) {
		t.Errorf("输入顺序不应影响结果:\n%+v\n%+v", a, b)
	}
}

func TestAggregate_DoesNotMutateInput(t *testing.T) {
	marks := Marks{{StudentID: 1, Period: 1}: "Present"}
	students := []int{2, 1}
	periods := []int{2, 1}

	Aggregate(marks, students, periods)

	if !reflect.DeepEqual(marks, Marks{{StudentID: 1, Period: 1}: "Present"}) {
		t.Errorf("marks 被修改: %v", marks)
	}
	if !reflect.DeepEqual(students, []int{2, 1}) || !reflect.DeepEqual(periods, []int{2, 1}) {
		t.Errorf("输入切片被修改: students=%v periods=%v", students, periods)
	}
}

func TestCoverage_Rounding(t *testing.T) {
	tests := []struct {
		recorded, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33},
		{2, 3, 67},
		{4, 6, 67},
		{1, 8, 13},  // 12.5 向上取整
		{1, 200, 1}, // 0.5 向上取整
		{1, 201, 0},
		{199, 200, 100}, // 99.5 向上取整
	}
	for _, tt := range tests {
		snap := Snapshot{RecordedSlots: tt.recorded, TotalSlots: tt.total}
		if got := snap.Coverage(); got != tt.want {
			t.Errorf("%d/%d: 期望 %d，实际 %d", tt.recorded, tt.total, tt.want, got)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, st := range TrackedStatuses {
		got, ok := ParseStatus(st.String())
		if !ok || got != st {
			t.Errorf("%s: 期望解析成功，实际 %v (ok=%v)", st, got, ok)
		}
	}

	for _, raw := range []string{"", "present", "PRESENT", " Present", "None"} {
		got, ok := ParseStatus(raw)
		if ok || got != StatusNone {
			t.Errorf("%q: 期望解析失败，实际 %v (ok=%v)", raw, got, ok)
		}
	}
}

func TestStatus_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		S Status `json:"s"`
	}{S: StatusLate})
	if err != nil {
		t.Fatalf("Marshal 失败: %v", err)
	}
	if string(b) != `{"s":"Late"}` {
		t.Errorf("期望 {\"s\":\"Late\"}，实际 %s", b)
	}

	var out struct {
		S Status `json:"s"`
	}
	if err := json.Unmarshal([]byte(`{"s":"Excused"}`), &out); err != nil {
		t.Fatalf("Unmarshal 失败: %v", err)
	}
	if out.S != StatusExcused {
		t.Errorf("期望 Excused，实际 %v", out.S)
	}

	if err := json.Unmarshal([]byte(`{"s":"Sick"}`), &out); err == nil {
		t.Error("未知状态应返回错误")
	}
}
