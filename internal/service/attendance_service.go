package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/config"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/analytics"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/model"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/autosave"
	pkgerrors "github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/errors"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceInvalidDate    = errors.New("考勤日期格式无效")
	ErrAttendanceInvalidStatus  = errors.New("考勤状态无效")
	ErrAttendanceNotEnrolled    = errors.New("学生未选修该课程")
	ErrAttendancePeriodRange    = errors.New("节次超出课程每日节数")
	ErrAttendanceInvalidPeriods = errors.New("节次参数格式无效")
	ErrAttendanceSaveFailed     = errors.New("考勤暂存数据保存失败，请稍后重试")
	ErrAttendanceUnavailable    = errors.New("考勤服务正在关闭")
)

// SnapshotCache 统计快照缓存
type SnapshotCache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) error
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// AttendanceService 考勤业务接口
//
// 写入走 autosave 队列（防抖合并后批量 upsert），读取前先 Flush，
// 保证读到自己刚写入的数据。
type AttendanceService interface {
	RecordMarks(ctx context.Context, courseID string, req *dto.RecordAttendanceRequest, callerID string) (*dto.RecordAttendanceResponse, error)
	ListMarks(ctx context.Context, courseID, date string) (*dto.AttendanceListResponse, error)
	GetAnalytics(ctx context.Context, courseID string, q *dto.AnalyticsQuery) (*dto.AnalyticsResponse, error)
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// markKey 自动保存队列的合并键：同一槽位只保留最后一次写入
type markKey struct {
	CourseID  string
	Date      string
	StudentID int
	Period    int
}

type markValue struct {
	Status    string
	UpdatedBy string
}

type attendanceService struct {
	repo           *repository.Repository
	snapshots      *AnalyticsSnapshots
	defaultPeriods int
	queue          *autosave.Queue[markKey, markValue]
	logger         *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例；snapshots 可为 nil
func NewAttendanceService(cfg *config.Config, repo *repository.Repository, snapshots *AnalyticsSnapshots, logger *zap.Logger) AttendanceService {
	s := &attendanceService{
		repo:           repo,
		snapshots:      snapshots,
		defaultPeriods: cfg.Analytics.DefaultPeriods,
		logger:         logger,
	}
	if s.defaultPeriods <= 0 {
		s.defaultPeriods = defaultPeriodsPerDay
	}
	s.queue = autosave.New(s.saveBatch, autosave.Config{
		Debounce:     cfg.Autosave.Debounce,
		MaxRetries:   cfg.Autosave.MaxRetries,
		RetryBackoff: cfg.Autosave.RetryBackoff,
		Logger:       logger,
	}, autosave.WithOnError(func(batch map[markKey]markValue, err error) {
		logger.Error("考勤批量保存失败，已放回队列",
			zap.Int("size", len(batch)),
			zap.Error(err),
		)
	}))
	return s
}

// ────────────────────── RecordMarks ──────────────────────

func (s *attendanceService) RecordMarks(ctx context.Context, courseID string, req *dto.RecordAttendanceRequest, callerID string) (*dto.RecordAttendanceResponse, error) {
	if _, err := pkgerrors.ParseDate(req.Date, time.UTC); err != nil {
		return nil, ErrAttendanceInvalidDate
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrolledSet(ctx, courseID)
	if err != nil {
		return nil, err
	}

	for _, m := range req.Marks {
		if _, ok := analytics.ParseStatus(m.Status); !ok {
			return nil, ErrAttendanceInvalidStatus
		}
		if m.Period < 1 || m.Period > periodsOf(course, s.defaultPeriods) {
			return nil, ErrAttendancePeriodRange
		}
		if _, ok := enrolled[m.StudentID]; !ok {
			return nil, ErrAttendanceNotEnrolled
		}
	}

	for _, m := range req.Marks {
		key := markKey{CourseID: courseID, Date: req.Date, StudentID: m.StudentID, Period: m.Period}
		if err := s.queue.Put(key, markValue{Status: m.Status, UpdatedBy: callerID}); err != nil {
			if errors.Is(err, autosave.ErrClosed) {
				return nil, ErrAttendanceUnavailable
			}
			return nil, err
		}
	}

	return &dto.RecordAttendanceResponse{
		Queued:  len(req.Marks),
		Pending: s.queue.Len(),
	}, nil
}

// ────────────────────── ListMarks ──────────────────────

func (s *attendanceService) ListMarks(ctx context.Context, courseID, date string) (*dto.AttendanceListResponse, error) {
	day, err := pkgerrors.ParseDate(date, time.UTC)
	if err != nil {
		return nil, ErrAttendanceInvalidDate
	}
	if _, err := s.getCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.Flush(ctx); err != nil {
		return nil, err
	}

	records, err := s.repo.Attendance.ListByCourseDate(ctx, courseID, day)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	marks := make([]dto.AttendanceMark, 0, len(records))
	for _, r := range records {
		marks = append(marks, dto.AttendanceMark{StudentID: r.StudentID, Period: r.Period, Status: r.Status})
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].StudentID != marks[j].StudentID {
			return marks[i].StudentID < marks[j].StudentID
		}
		return marks[i].Period < marks[j].Period
	})

	return &dto.AttendanceListResponse{CourseID: courseID, Date: date, Marks: marks}, nil
}

// ────────────────────── GetAnalytics ──────────────────────

func (s *attendanceService) GetAnalytics(ctx context.Context, courseID string, q *dto.AnalyticsQuery) (*dto.AnalyticsResponse, error) {
	day, err := pkgerrors.ParseDate(q.Date, time.UTC)
	if err != nil {
		return nil, ErrAttendanceInvalidDate
	}

	course, err := s.getCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	periods, err := parsePeriods(q.Periods, periodsOf(course, s.defaultPeriods))
	if err != nil {
		return nil, err
	}

	if err := s.Flush(ctx); err != nil {
		return nil, err
	}

	key := analyticsCacheKey(courseID, q.Date, periods)
	var cached dto.AnalyticsResponse
	if s.snapshots.Get(ctx, key, &cached) {
		return &cached, nil
	}

	// 必须在读库之前取代数
	gen := s.snapshots.Generation(courseID)
	studentIDs, err := s.repo.Enrollment.ListStudentIDs(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课名单失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	records, err := s.repo.Attendance.ListByCourseDate(ctx, courseID, day)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	marks := make(analytics.Marks, len(records))
	for _, r := range records {
		marks[analytics.SlotKey{StudentID: r.StudentID, Period: r.Period}] = r.Status
	}

	resp := buildAnalyticsResponse(courseID, q.Date, studentIDs, periods, marks)

	s.snapshots.Fill(ctx, courseID, gen, key, resp)

	return resp, nil
}

// ────────────────────── Flush / Close ──────────────────────

func (s *attendanceService) Flush(ctx context.Context) error {
	if err := s.queue.Flush(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrAttendanceSaveFailed, err)
	}
	return nil
}

func (s *attendanceService) Close(ctx context.Context) error {
	if err := s.queue.Close(ctx); err != nil {
		s.logger.Error("关闭考勤队列时仍有数据未保存", zap.Int("pending", s.queue.Len()), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

// saveBatch autosave 队列的落库回调
func (s *attendanceService) saveBatch(ctx context.Context, batch map[markKey]markValue) error {
	records := make([]model.AttendanceRecord, 0, len(batch))
	touched := make(map[markKey]struct{})
	now := time.Now().UTC()

	for k, v := range batch {
		day, err := pkgerrors.ParseDate(k.Date, time.UTC)
		if err != nil {
			// 入队前已校验过日期
			s.logger.Warn("丢弃日期无效的考勤记录", zap.String("date", k.Date))
			continue
		}
		updatedBy := v.UpdatedBy
		records = append(records, model.AttendanceRecord{
			CourseID:  k.CourseID,
			StudentID: k.StudentID,
			Date:      datatypes.Date(day),
			Period:    k.Period,
			Status:    v.Status,
			UpdatedAt: now,
			UpdatedBy: &updatedBy,
		})
		touched[markKey{CourseID: k.CourseID, Date: k.Date}] = struct{}{}
	}

	if err := s.repo.Attendance.Upsert(ctx, records); err != nil {
		return err
	}

	s.logger.Debug("考勤批量保存完成", zap.Int("size", len(records)))

	for k := range touched {
		s.snapshots.Invalidate(ctx, k.CourseID, analyticsCachePrefix(k.CourseID, k.Date))
	}
	return nil
}

func (s *attendanceService) getCourse(ctx context.Context, id string) (*model.Course, error) {
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

func (s *attendanceService) enrolledSet(ctx context.Context, courseID string) (map[int]struct{}, error) {
	ids, err := s.repo.Enrollment.ListStudentIDs(ctx, courseID)
	if err != nil {
		s.logger.Error("查询选课名单失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

func periodsOf(c *model.Course, fallback int) int {
	if c.PeriodsPerDay > 0 {
		return c.PeriodsPerDay
	}
	return fallback
}

// parsePeriods 解析 "1,2,3"；为空时返回 1..maxPeriod。结果去重升序。
func parsePeriods(raw string, maxPeriod int) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		out := make([]int, maxPeriod)
		for i := range out {
			out[i] = i + 1
		}
		return out, nil
	}

	var periods []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, ErrAttendanceInvalidPeriods
		}
		if n < 1 || n > maxPeriod {
			return nil, ErrAttendancePeriodRange
		}
		periods = append(periods, n)
	}
	return uniqueSorted(periods), nil
}

func analyticsCacheKey(courseID, date string, periods []int) string {
	parts := make([]string, len(periods))
	for i, p := range periods {
		parts[i] = strconv.Itoa(p)
	}
	return analyticsCachePrefix(courseID, date) + strings.Join(parts, ",")
}

func buildAnalyticsResponse(courseID, date string, studentIDs, periods []int, marks analytics.Marks) *dto.AnalyticsResponse {
	snap := analytics.Aggregate(marks, studentIDs, periods)
	summaries := analytics.SummarizeStudents(marks, studentIDs, periods)

	resp := &dto.AnalyticsResponse{
		CourseID:          courseID,
		Date:              date,
		Periods:           periods,
		Counts:            toCountsDTO(snap.OverallCounts),
		PerPeriod:         make([]dto.PeriodBreakdown, 0, len(periods)),
		TotalSlots:        snap.TotalSlots,
		RecordedSlots:     snap.RecordedSlots,
		PendingSlots:      snap.PendingSlots,
		UnrecognizedSlots: snap.UnrecognizedSlots,
		Coverage:          snap.Coverage(),
		Students:          make([]dto.StudentAttendanceSummary, 0, len(studentIDs)),
	}
	for _, p := range periods {
		resp.PerPeriod = append(resp.PerPeriod, dto.PeriodBreakdown{
			Period: p,
			Counts: toCountsDTO(snap.PerPeriodCounts[p]),
		})
	}
	for _, sid := range studentIDs {
		sum := summaries[sid]
		resp.Students = append(resp.Students, dto.StudentAttendanceSummary{
			StudentID: sid,
			Status:    sum.Status.String(),
			IsMixed:   sum.IsMixed,
			HasAny:    sum.HasAny,
		})
	}
	return resp
}

func toCountsDTO(c analytics.Counts) dto.AttendanceCounts {
	return dto.AttendanceCounts{
		Present: c.Present,
		Absent:  c.Absent,
		Late:    c.Late,
		Excused: c.Excused,
	}
}
