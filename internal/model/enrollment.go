package model

import "time"

// CourseEnrollment 选课关系，对应 course_enrollments
type CourseEnrollment struct {
	CourseID  string    `gorm:"type:uuid;primaryKey"               json:"course_id"`
	StudentID int       `gorm:"primaryKey;autoIncrement:false"     json:"student_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName 指定表名
func (CourseEnrollment) TableName() string { return "course_enrollments" }
