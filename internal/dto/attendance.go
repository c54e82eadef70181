package dto

// ── 考勤模块 DTO ──

// AttendanceMark 单个槽位的考勤状态
type AttendanceMark struct {
	StudentID int    `json:"student_id" binding:"required,min=1"`
	Period    int    `json:"period"     binding:"required,min=1,max=12"`
	Status    string `json:"status"     binding:"required,attendance_status"`
}

// RecordAttendanceRequest 批量记录考勤请求
type RecordAttendanceRequest struct {
	Date  string           `json:"date"  binding:"required,datetime=2006-01-02"`
	Marks []AttendanceMark `json:"marks" binding:"required,min=1,max=1000,dive"`
}

// RecordAttendanceResponse 考勤已进入自动保存队列
type RecordAttendanceResponse struct {
	Queued  int `json:"queued"`
	Pending int `json:"pending"` // 队列中尚未落库的槽位总数
}

// AttendanceListQuery 考勤记录查询参数
type AttendanceListQuery struct {
	Date string `form:"date" binding:"required,datetime=2006-01-02"`
}

// AttendanceListResponse 某课程某日的考勤记录
type AttendanceListResponse struct {
	CourseID string           `json:"course_id"`
	Date     string           `json:"date"`
	Marks    []AttendanceMark `json:"marks"`
}

// AnalyticsQuery 考勤统计查询参数
type AnalyticsQuery struct {
	Date    string `form:"date"    binding:"required,datetime=2006-01-02"`
	Periods string `form:"periods" binding:"omitempty,max=64"` // 逗号分隔，如 "1,2,3"；为空时取课程全部节次
}

// AttendanceCounts 各状态计数
type AttendanceCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
}

// PeriodBreakdown 单个节次的状态计数
type PeriodBreakdown struct {
	Period int              `json:"period"`
	Counts AttendanceCounts `json:"counts"`
}

// StudentAttendanceSummary 学生当日聚合状态
// status 仅在所有已记录节次一致时返回
type StudentAttendanceSummary struct {
	StudentID int    `json:"student_id"`
	Status    string `json:"status,omitempty"`
	IsMixed   bool   `json:"is_mixed"`
	HasAny    bool   `json:"has_any"`
}

// AnalyticsResponse 考勤统计响应
type AnalyticsResponse struct {
	CourseID          string                     `json:"course_id"`
	Date              string                     `json:"date"`
	Periods           []int                      `json:"periods"`
	Counts            AttendanceCounts           `json:"counts"`
	PerPeriod         []PeriodBreakdown          `json:"per_period"`
	TotalSlots        int                        `json:"total_slots"`
	RecordedSlots     int                        `json:"recorded_slots"`
	PendingSlots      int                        `json:"pending_slots"`
	UnrecognizedSlots int                        `json:"unrecognized_slots"`
	Coverage          int                        `json:"coverage"` // 百分比 0-100
	Students          []StudentAttendanceSummary `json:"students"`
}
