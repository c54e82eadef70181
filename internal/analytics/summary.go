package analytics

// StudentSummary 学生在各节次上的聚合状态
type StudentSummary struct {
	Status  Status // 仅当所有已记录节次状态一致时非 StatusNone
	IsMixed bool
	HasAny  bool
}

// SummarizeStudent 聚合单个学生的各节次状态。
// 只有部分节次有记录且记录一致时同样视为一致，由 HasAny 区分是否有任何记录。
// 无法识别的状态字符串不参与判断。
func SummarizeStudent(marks Marks, studentID int, periods []int) StudentSummary {
	var (
		first Status
		sum   StudentSummary
	)
	for _, p := range periods {
		raw, ok := marks[SlotKey{StudentID: studentID, Period: p}]
		if !ok {
			continue
		}
		st, ok := ParseStatus(raw)
		if !ok {
			continue
		}
		if !sum.HasAny {
			first = st
			sum.HasAny = true
			continue
		}
		if st != first {
			sum.IsMixed = true
		}
	}

	if sum.HasAny && !sum.IsMixed {
		sum.Status = first
	}
	return sum
}

// SummarizeStudents 为每个学生生成聚合状态
func SummarizeStudents(marks Marks, studentIDs, periods []int) map[int]StudentSummary {
	out := make(map[int]StudentSummary, len(studentIDs))
	for _, sid := range studentIDs {
		out[sid] = SummarizeStudent(marks, sid, periods)
	}
	return out
}
