package model

// Course 课程表，对应 courses
// IsActive 由学期名称自动推导，名称无法识别时保持人工设置的值
type Course struct {
	CourseID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code          string `gorm:"type:varchar(32);not null"                      json:"code"`
	Name          string `gorm:"type:varchar(200);not null"                     json:"name"`
	SemesterLabel string `gorm:"type:varchar(100);not null"                     json:"semester_label"`
	PeriodsPerDay int    `gorm:"not null;default:7"                             json:"periods_per_day"`
	IsActive      bool   `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
