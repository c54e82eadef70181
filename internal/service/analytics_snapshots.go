package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bs1gr/AUT-MIEEK-SMS-sub004/pkg/redis"
)

// AnalyticsSnapshots 统计快照缓存
//
// 每门课程维护一个代数：考勤落库、选课名单变更、课程删除都会先递增代数再清理缓存。
// 回填缓存时若代数已变化则放弃写入，避免把失效前读到的旧数据写回缓存。
// 代数只在本进程内可见。
type AnalyticsSnapshots struct {
	cache  SnapshotCache
	ttl    time.Duration
	logger *zap.Logger

	mu   sync.Mutex
	gens map[string]uint64
}

// NewAnalyticsSnapshots cache 为 nil 时返回 nil，所有方法均为空操作
func NewAnalyticsSnapshots(cache SnapshotCache, ttl time.Duration, logger *zap.Logger) *AnalyticsSnapshots {
	if cache == nil {
		return nil
	}
	return &AnalyticsSnapshots{
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		gens:   make(map[string]uint64),
	}
}

// Generation 读库前记录课程当前代数
func (s *AnalyticsSnapshots) Generation(courseID string) uint64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[courseID]
}

// Get 命中返回 true
func (s *AnalyticsSnapshots) Get(ctx context.Context, key string, dst interface{}) bool {
	if s == nil {
		return false
	}
	err := s.cache.GetJSON(ctx, key, dst)
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		s.logger.Warn("读取统计缓存失败", zap.String("key", key), zap.Error(err))
	}
	return false
}

// Fill 代数未变化时写入缓存；返回是否写入
func (s *AnalyticsSnapshots) Fill(ctx context.Context, courseID string, gen uint64, key string, v interface{}) bool {
	if s == nil {
		return false
	}
	// 持锁写入：Invalidate 要么在此之前递增代数，要么在此之后清理掉本次写入
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[courseID] != gen {
		s.logger.Debug("统计数据已变更，跳过缓存回填", zap.String("key", key))
		return false
	}
	if err := s.cache.SetJSON(ctx, key, v, s.ttl); err != nil {
		s.logger.Warn("写入统计缓存失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Invalidate 递增课程代数并清理 prefix 下的快照
func (s *AnalyticsSnapshots) Invalidate(ctx context.Context, courseID, prefix string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.gens[courseID]++
	s.mu.Unlock()

	if err := s.cache.DeleteByPrefix(ctx, prefix); err != nil {
		s.logger.Warn("清理统计缓存失败", zap.String("prefix", prefix), zap.Error(err))
	}
}

// InvalidateCourse 清理课程所有日期的快照
func (s *AnalyticsSnapshots) InvalidateCourse(ctx context.Context, courseID string) {
	s.Invalidate(ctx, courseID, analyticsCoursePrefix(courseID))
}

func analyticsCoursePrefix(courseID string) string {
	return fmt.Sprintf("analytics:%s:", courseID)
}

func analyticsCachePrefix(courseID, date string) string {
	return analyticsCoursePrefix(courseID) + date + ":"
}
