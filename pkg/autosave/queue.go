// Package autosave 提供按键合并、防抖写入的后台保存队列。
//
// 同一个键在静默期内的多次写入只保留最后一次；静默期结束后整批交给 SaveFunc。
// 保存失败会按指数退避重试，仍失败时整批放回队列（不覆盖期间产生的新值），
// 等待下一次写入或 Flush 再次尝试。
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultDebounce 未配置时的静默期
const DefaultDebounce = 1500 * time.Millisecond

// ErrClosed 队列已关闭
var ErrClosed = errors.New("autosave: queue closed")

// SaveFunc 持久化一批待保存的值
type SaveFunc[K comparable, V any] func(ctx context.Context, batch map[K]V) error

// Config 队列参数
type Config struct {
	Debounce     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Logger       *zap.Logger
}

// Option 队列可选项
type Option[K comparable, V any] func(*Queue[K, V])

// WithOnError 设置批次最终保存失败时的回调
func WithOnError[K comparable, V any](fn func(batch map[K]V, err error)) Option[K, V] {
	return func(q *Queue[K, V]) { q.onError = fn }
}

// Queue 防抖合并写队列，可并发使用
type Queue[K comparable, V any] struct {
	save    SaveFunc[K, V]
	cfg     Config
	logger  *zap.Logger
	onError func(batch map[K]V, err error)

	mu      sync.Mutex
	pending map[K]V
	timer   *time.Timer
	closed  bool

	saveMu sync.Mutex     // 保存串行执行
	wg     sync.WaitGroup // 已调度的定时保存
}

// New 创建队列
func New[K comparable, V any](save SaveFunc[K, V], cfg Config, opts ...Option[K, V]) *Queue[K, V] {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &Queue[K, V]{
		save:    save,
		cfg:     cfg,
		logger:  logger,
		pending: make(map[K]V),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Put 写入一个值并重新开始静默计时
func (q *Queue[K, V]) Put(key K, value V) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	q.pending[key] = value
	q.scheduleLocked()
	return nil
}

// Len 当前待保存的键数量
func (q *Queue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush 立即同步保存所有待保存的值
func (q *Queue[K, V]) Flush(ctx context.Context) error {
	return q.flush(ctx)
}

// Close 停止计时、保存剩余数据并拒绝后续写入
func (q *Queue[K, V]) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.stopTimerLocked()
	q.mu.Unlock()

	err := q.flush(ctx)
	q.wg.Wait()
	return err
}

// ── 内部实现 ──

// scheduleLocked 调用方需持有 mu
func (q *Queue[K, V]) scheduleLocked() {
	q.stopTimerLocked()
	q.wg.Add(1)
	q.timer = time.AfterFunc(q.cfg.Debounce, func() {
		defer q.wg.Done()
		if err := q.flush(context.Background()); err != nil {
			q.logger.Warn("自动保存失败，已放回队列", zap.Error(err))
		}
	})
}

// stopTimerLocked 停止尚未触发的定时器；已触发的由回调自行 Done
func (q *Queue[K, V]) stopTimerLocked() {
	if q.timer != nil && q.timer.Stop() {
		q.wg.Done()
	}
	q.timer = nil
}

func (q *Queue[K, V]) flush(ctx context.Context) error {
	q.saveMu.Lock()
	defer q.saveMu.Unlock()

	q.mu.Lock()
	batch := q.pending
	q.pending = make(map[K]V)
	q.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	if err := q.saveWithRetry(ctx, batch); err != nil {
		q.requeue(batch)
		if q.onError != nil {
			q.onError(batch, err)
		}
		return err
	}
	return nil
}

// requeue 放回失败批次，期间写入的新值优先
func (q *Queue[K, V]) requeue(batch map[K]V) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for k, v := range batch {
		if _, ok := q.pending[k]; !ok {
			q.pending[k] = v
		}
	}
}

func (q *Queue[K, V]) saveWithRetry(ctx context.Context, batch map[K]V) error {
	backoff := q.cfg.RetryBackoff
	var err error
	for attempt := 0; attempt <= q.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			q.logger.Debug("重试自动保存",
				zap.Int("attempt", attempt),
				zap.Int("size", len(batch)),
				zap.Duration("backoff", backoff),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("autosave: %w (last error: %v)", ctx.Err(), err)
			case <-time.After(backoff):
			}
			backoff *= 2
		}
		if err = q.save(ctx, batch); err == nil {
			return nil
		}
	}
	return fmt.Errorf("autosave: save failed after %d attempts: %w", q.cfg.MaxRetries+1, err)
}
