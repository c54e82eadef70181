package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
)

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	ListStudentIDs(ctx context.Context, courseID string) ([]int, error)
	Replace(ctx context.Context, courseID string, studentIDs []int) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) ListStudentIDs(ctx context.Context, courseID string) ([]int, error) {
	var ids []int
	err := r.db.WithContext(ctx).
		Model(&model.CourseEnrollment{}).
		Where("course_id = ?", courseID).
		Order("student_id ASC").
		Pluck("student_id", &ids).Error
	return ids, err
}

// Replace 在事务内整体替换课程的选课名单
func (r *enrollmentRepo) Replace(ctx context.Context, courseID string, studentIDs []int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", courseID).Delete(&model.CourseEnrollment{}).Error; err != nil {
			return err
		}
		if len(studentIDs) == 0 {
			return nil
		}
		rows := make([]model.CourseEnrollment, 0, len(studentIDs))
		for _, sid := range studentIDs {
			rows = append(rows, model.CourseEnrollment{CourseID: courseID, StudentID: sid})
		}
		return tx.Create(&rows).Error
	})
}
