package model

import (
	"time"

	"gorm.io/datatypes"
)

// AttendanceRecord 考勤记录，对应 attendance_records
// (course_id, student_id, date, period) 唯一；Status 保存原始字符串
type AttendanceRecord struct {
	RecordID  string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	CourseID  string         `gorm:"type:uuid;not null"                             json:"course_id"`
	StudentID int            `gorm:"not null"                                       json:"student_id"`
	Date      datatypes.Date `gorm:"not null"                                       json:"date"`
	Period    int            `gorm:"not null"                                       json:"period"`
	Status    string         `gorm:"type:varchar(16);not null"                      json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
	UpdatedBy *string        `gorm:"type:varchar(64)"                               json:"updated_by,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }
