package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code          string `json:"code"            binding:"required,min=2,max=32"`
	Name          string `json:"name"            binding:"required,min=2,max=200"`
	SemesterLabel string `json:"semester_label"  binding:"required,semester_label"`
	PeriodsPerDay int    `json:"periods_per_day" binding:"omitempty,min=1,max=12"`
	IsActive      *bool  `json:"is_active"` // 仅在学期名称无法识别时生效
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Code          *string `json:"code"            binding:"omitempty,min=2,max=32"`
	Name          *string `json:"name"            binding:"omitempty,min=2,max=200"`
	SemesterLabel *string `json:"semester_label"  binding:"omitempty,semester_label"`
	PeriodsPerDay *int    `json:"periods_per_day" binding:"omitempty,min=1,max=12"`
	IsActive      *bool   `json:"is_active"`
	Version       int     `json:"version"         binding:"required,min=1"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Keyword  string `form:"keyword"   binding:"omitempty,max=50"`
	IsActive *bool  `form:"is_active"`
}

// ActivationStatus 课程学期的实时激活状态
type ActivationStatus struct {
	IsActive *bool  `json:"is_active"`
	Status   string `json:"status"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID            string           `json:"id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	SemesterLabel string           `json:"semester_label"`
	PeriodsPerDay int              `json:"periods_per_day"`
	IsActive      bool             `json:"is_active"`
	Activation    ActivationStatus `json:"activation"`
	Version       int              `json:"version"`
	CreatedAt     string           `json:"created_at"`
	UpdatedAt     string           `json:"updated_at"`
}

// SetEnrollmentRequest 替换选课名单请求；空数组表示清空
type SetEnrollmentRequest struct {
	StudentIDs []int `json:"student_ids" binding:"required,max=1000,dive,min=1"`
}

// EnrollmentResponse 选课名单响应
type EnrollmentResponse struct {
	CourseID   string `json:"course_id"`
	StudentIDs []int  `json:"student_ids"`
}
