package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/activation"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/dto"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
	pkgerrors "github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/errors"
)

// ── 学期激活模块业务错误 ──

var (
	ErrActivationNotApplicable = errors.New("无法从学期名称识别学期类型或年份")
	ErrActivationInvalidDate   = errors.New("参考日期格式无效")
)

// ActivationService 学期激活业务接口
//
// 判定逻辑全部委托给 activation.Resolver；本层负责时区、日期解析、
// 课程 is_active 同步以及日历导出。
type ActivationService interface {
	// Resolve 计算学期名称在参考日期（为空时取当天）的激活状态
	Resolve(label, date string) (*dto.ActivationResponse, error)
	// SyncCourses 按参考日期刷新所有课程的 is_active；名称不适用的课程保持不变
	SyncCourses(ctx context.Context, ref time.Time) (*dto.ActivationSyncResponse, error)
	// Calendar 导出学期区间为 iCalendar 全天事件
	Calendar(label string) ([]byte, string, error)
	// RunSync 周期执行 SyncCourses，直到 ctx 取消
	RunSync(ctx context.Context, interval time.Duration)
}

type activationService struct {
	repo     *repository.Repository
	resolver *activation.Resolver
	loc      *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewActivationService 创建 ActivationService 实例
func NewActivationService(repo *repository.Repository, resolver *activation.Resolver, loc *time.Location, logger *zap.Logger) ActivationService {
	if loc == nil {
		loc = time.Local
	}
	return &activationService{
		repo:     repo,
		resolver: resolver,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

// ────────────────────── Resolve ──────────────────────

func (s *activationService) Resolve(label, date string) (*dto.ActivationResponse, error) {
	ref := s.now().In(s.loc)
	if date != "" {
		d, err := pkgerrors.ParseDate(date, s.loc)
		if err != nil {
			return nil, ErrActivationInvalidDate
		}
		ref = d
	}

	resp := &dto.ActivationResponse{
		Label:         label,
		ReferenceDate: ref.Format(pkgerrors.DateLayout),
	}

	st := s.resolver.StatusAt(label, ref)
	resp.IsActive = st.IsActive
	resp.Status = string(st.Tag)

	if rng, kind, year, ok := s.resolver.Window(label, ref.Location()); ok {
		resp.Kind = string(kind)
		resp.Year = year
		resp.StartDate = rng.Start.Format(pkgerrors.DateLayout)
		resp.EndDate = rng.End.Format(pkgerrors.DateLayout)
	}

	return resp, nil
}

// ────────────────────── SyncCourses ──────────────────────

func (s *activationService) SyncCourses(ctx context.Context, ref time.Time) (*dto.ActivationSyncResponse, error) {
	ref = ref.In(s.loc)

	courses, err := s.repo.Course.ListAll(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := &dto.ActivationSyncResponse{
		ReferenceDate: ref.Format(pkgerrors.DateLayout),
		Checked:       len(courses),
	}

	for i := range courses {
		c := &courses[i]
		active, ok := s.resolver.Compute(c.SemesterLabel, ref)
		if !ok {
			result.Skipped++
			continue
		}
		if active == c.IsActive {
			continue
		}
		if err := s.repo.Course.SetActive(ctx, c.CourseID, active); err != nil {
			s.logger.Error("更新课程激活状态失败",
				zap.String("course_id", c.CourseID),
				zap.Bool("active", active),
				zap.Error(err),
			)
			return nil, err
		}
		if active {
			result.Activated++
		} else {
			result.Deactivated++
		}
	}

	s.logger.Info("课程激活状态同步完成",
		zap.String("reference_date", result.ReferenceDate),
		zap.Int("checked", result.Checked),
		zap.Int("activated", result.Activated),
		zap.Int("deactivated", result.Deactivated),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// ────────────────────── Calendar ──────────────────────

func (s *activationService) Calendar(label string) ([]byte, string, error) {
	rng, kind, year, ok := s.resolver.Window(label, time.UTC)
	if !ok {
		return nil, "", ErrActivationNotApplicable
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//SMS//Semester Calendar//EN")

	event := cal.AddEvent(fmt.Sprintf("semester-%s-%d@sms", kind, year))
	event.SetSummary(label)
	event.SetDtStampTime(s.now().UTC())
	event.SetAllDayStartAt(rng.Start)
	// DTEND 为开区间
	event.SetAllDayEndAt(rng.End.AddDate(0, 0, 1))
	event.SetProperty(ics.ComponentPropertyCategories, string(kind))

	filename := fmt.Sprintf("semester_%s.ics", slug.Make(label))
	return []byte(cal.Serialize()), filename, nil
}

// ────────────────────── RunSync ──────────────────────

func (s *activationService) RunSync(ctx context.Context, interval time.Duration) {
	s.logger.Info("课程激活同步任务启动", zap.Duration("interval", interval))

	s.syncOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("课程激活同步任务停止")
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *activationService) syncOnce(ctx context.Context) {
	if _, err := s.SyncCourses(ctx, s.now()); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("课程激活同步失败", zap.Error(err))
	}
}
