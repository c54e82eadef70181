package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
	pkgerrors "github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/errors"
)

// CourseFilter 课程列表过滤条件
type CourseFilter struct {
	IsActive *bool
	Keyword  string // 匹配 code / name
	Offset   int
	Limit    int
}

// CourseRepository 课程数据访问接口
type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) error
	GetByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, filter CourseFilter) ([]model.Course, int64, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) Create(ctx context.Context, course *model.Course) error {
	return r.db.WithContext(ctx).Create(course).Error
}

// GetByID 非 UUID 格式的 id 视为不存在，不下发到数据库
func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *courseRepo) List(ctx context.Context, filter CourseFilter) ([]model.Course, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Course{})
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("code ILIKE ? OR name ILIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []model.Course
	q := db.Order("code ASC").Offset(filter.Offset)
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Find(&courses).Error; err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *courseRepo) ListAll(ctx context.Context) ([]model.Course, error) {
	var courses []model.Course
	err := r.db.WithContext(ctx).
		Order("code ASC").
		Find(&courses).Error
	return courses, err
}

// Update 基于 version 的乐观锁更新
func (r *courseRepo) Update(ctx context.Context, course *model.Course) error {
	oldVersion := course.Version
	result := r.db.WithContext(ctx).
		Model(course).
		Where("course_id = ? AND version = ?", course.CourseID, oldVersion).
		Updates(map[string]interface{}{
			"code":            course.Code,
			"name":            course.Name,
			"semester_label":  course.SemesterLabel,
			"periods_per_day": course.PeriodsPerDay,
			"is_active":       course.IsActive,
			"updated_by":      course.UpdatedBy,
			"version":         oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	course.Version = oldVersion + 1
	return nil
}

// SetActive 自动激活同步专用，同样递增 version 使并发编辑感知变化
func (r *courseRepo) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"is_active": active,
			"version":   gorm.Expr("version + 1"),
		}).Error
}

func (r *courseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Course{}).
		Where("course_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
