package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/activation"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
	pkgerrors "github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/errors"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseCodeExists = errors.New("课程代码已存在")
)

const defaultPeriodsPerDay = 7

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	GetEnrollment(ctx context.Context, id string) (*dto.EnrollmentResponse, error)
	SetEnrollment(ctx context.Context, id string, req *dto.SetEnrollmentRequest) (*dto.EnrollmentResponse, error)
}

type courseService struct {
	repo      *repository.Repository
	resolver  *activation.Resolver
	snapshots *AnalyticsSnapshots
	loc       *time.Location
	now       func() time.Time
	logger    *zap.Logger
}

// NewCourseService 创建 CourseService 实例；snapshots 可为 nil
func NewCourseService(repo *repository.Repository, resolver *activation.Resolver, snapshots *AnalyticsSnapshots, loc *time.Location, logger *zap.Logger) CourseService {
	if loc == nil {
		loc = time.Local
	}
	return &courseService{
		repo:      repo,
		resolver:  resolver,
		snapshots: snapshots,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	periods := req.PeriodsPerDay
	if periods <= 0 {
		periods = defaultPeriodsPerDay
	}

	course := &model.Course{
		Code:          req.Code,
		Name:          req.Name,
		SemesterLabel: req.SemesterLabel,
		PeriodsPerDay: periods,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	s.applyActivation(course)
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID
	course.Version = 1

	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.String("code", req.Code), zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]dto.CourseResponse, int64, error) {
	courses, total, err := s.repo.Course.List(ctx, repository.CourseFilter{
		IsActive: req.IsActive,
		Keyword:  req.Keyword,
		Offset:   req.GetOffset(),
		Limit:    req.GetPageSize(),
	})
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *s.toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.Version != req.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Code != nil {
		course.Code = *req.Code
	}
	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.SemesterLabel != nil {
		course.SemesterLabel = *req.SemesterLabel
	}
	if req.PeriodsPerDay != nil {
		course.PeriodsPerDay = *req.PeriodsPerDay
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	s.applyActivation(course)
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getCourse(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.snapshots.InvalidateCourse(ctx, id)
	return nil
}

// ────────────────────── Enrollment ──────────────────────

func (s *courseService) GetEnrollment(ctx context.Context, id string) (*dto.EnrollmentResponse, error) {
	if _, err := s.getCourse(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.repo.Enrollment.ListStudentIDs(ctx, id)
	if err != nil {
		s.logger.Error("查询选课名单失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	if ids == nil {
		ids = []int{}
	}
	return &dto.EnrollmentResponse{CourseID: id, StudentIDs: ids}, nil
}

func (s *courseService) SetEnrollment(ctx context.Context, id string, req *dto.SetEnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if _, err := s.getCourse(ctx, id); err != nil {
		return nil, err
	}

	ids := uniqueSorted(req.StudentIDs)
	if err := s.repo.Enrollment.Replace(ctx, id, ids); err != nil {
		s.logger.Error("更新选课名单失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	// 名单变化影响所有日期的统计
	s.snapshots.InvalidateCourse(ctx, id)

	return &dto.EnrollmentResponse{CourseID: id, StudentIDs: ids}, nil
}

// ── 内部辅助 ──

func (s *courseService) getCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// applyActivation 学期名称可识别时用推导结果覆盖 is_active，否则保留人工设置
func (s *courseService) applyActivation(course *model.Course) {
	if active, ok := s.resolver.Compute(course.SemesterLabel, s.now().In(s.loc)); ok {
		course.IsActive = active
	}
}

func (s *courseService) toCourseResponse(c *model.Course) *dto.CourseResponse {
	st := s.resolver.StatusAt(c.SemesterLabel, s.now().In(s.loc))
	return &dto.CourseResponse{
		ID:            c.CourseID,
		Code:          c.Code,
		Name:          c.Name,
		SemesterLabel: c.SemesterLabel,
		PeriodsPerDay: c.PeriodsPerDay,
		IsActive:      c.IsActive,
		Activation: dto.ActivationStatus{
			IsActive: st.IsActive,
			Status:   string(st.Tag),
		},
		Version:   c.Version,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

// uniqueSorted 去重并升序，不修改入参
func uniqueSorted(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
