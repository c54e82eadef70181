package repository

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
)

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	Upsert(ctx context.Context, records []model.AttendanceRecord) error
	ListByCourseDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error)
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

// Upsert 按 (course_id, student_id, date, period) 插入或覆盖状态
func (r *attendanceRepo) Upsert(ctx context.Context, records []model.AttendanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "course_id"}, {Name: "student_id"}, {Name: "date"}, {Name: "period"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at", "updated_by"}),
		}).
		Create(&records).Error
}

func (r *attendanceRepo) ListByCourseDate(ctx context.Context, courseID string, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND date = ?", courseID, datatypes.Date(date)).
		Order("student_id ASC, period ASC").
		Find(&records).Error
	return records, err
}
