package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/config"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/activation"
	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Activation ActivationService
	Course     CourseService
	Attendance AttendanceService
	Export     ExportService
}

// NewService 创建 Service 聚合；cache 为 nil 时不缓存统计快照
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache SnapshotCache,
	logger *zap.Logger,
) (*Service, error) {
	resolver, err := NewResolver(&cfg.Activation)
	if err != nil {
		return nil, err
	}
	loc := cfg.Activation.Location()

	snapshots := NewAnalyticsSnapshots(cache, cfg.Analytics.CacheTTL, logger)
	attendance := NewAttendanceService(cfg, repo, snapshots, logger)

	return &Service{
		Activation: NewActivationService(repo, resolver, loc, logger),
		Course:     NewCourseService(repo, resolver, snapshots, loc, logger),
		Attendance: attendance,
		Export:     NewExportService(repo, attendance, logger),
	}, nil
}

// NewResolver 按配置的关键字表创建激活判定器；未配置时使用内置表
func NewResolver(cfg *config.ActivationConfig) (*activation.Resolver, error) {
	table := make(activation.KeywordTable, 0, len(cfg.Rules))
	for _, r := range cfg.Rules {
		table = append(table, activation.KeywordRule{
			Kind:     activation.Kind(r.Kind),
			Keywords: r.Keywords,
		})
	}
	resolver, err := activation.NewResolver(table)
	if err != nil {
		return nil, fmt.Errorf("activation.rules 配置无效: %w", err)
	}
	return resolver, nil
}

// Close 保存尚未落库的考勤数据
func (s *Service) Close(ctx context.Context) error {
	return s.Attendance.Close(ctx)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
