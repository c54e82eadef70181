package dto

// ── 学期激活 DTO ──

// ActivationQuery 激活状态查询参数
type ActivationQuery struct {
	Label string `form:"label" binding:"required,semester_label"`
	Date  string `form:"date"  binding:"omitempty,datetime=2006-01-02"` // 为空时取当天
}

// CalendarQuery 学期日历导出参数
type CalendarQuery struct {
	Label string `form:"label" binding:"required,semester_label"`
}

// ActivationResponse 激活状态响应
// 名称无法识别时 kind/year/日期为空，is_active 为 null，status 为 not_applicable
type ActivationResponse struct {
	Label         string `json:"label"`
	Kind          string `json:"kind,omitempty"`
	Year          int    `json:"year,omitempty"`
	StartDate     string `json:"start_date,omitempty"`
	EndDate       string `json:"end_date,omitempty"`
	ReferenceDate string `json:"reference_date"`
	IsActive      *bool  `json:"is_active"`
	Status        string `json:"status"`
}

// ActivationSyncResponse 课程自动激活同步结果
type ActivationSyncResponse struct {
	ReferenceDate string `json:"reference_date"`
	Checked       int    `json:"checked"`
	Activated     int    `json:"activated"`
	Deactivated   int    `json:"deactivated"`
	Skipped       int    `json:"skipped"` // 学期名称不适用，未改动
}
