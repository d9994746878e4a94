package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
)

// ErrSchedulerClosed 调度器已停止
var ErrSchedulerClosed = errors.New("scheduler closed")

// LocalScheduler 进程内调度 (单进程部署 / 测试)，到期后直接调用 Runner
type LocalScheduler struct {
	runner Runner

	mu     sync.Mutex
	closed bool
	timers map[*time.Timer]func()
	wg     sync.WaitGroup
}

func NewLocalScheduler(runner Runner) *LocalScheduler {
	return &LocalScheduler{
		runner: runner,
		timers: make(map[*time.Timer]func()),
	}
}

func (s *LocalScheduler) Schedule(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		monitor.SideEffectsTotal.WithLabelValues(string(kind), "schedule_failed").Inc()
		return ErrSchedulerClosed
	}

	s.wg.Add(1)
	job := func() {
		defer s.wg.Done()
		s.run(kind, p)
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, timer)
		s.mu.Unlock()
		job()
	})
	s.timers[timer] = job
	monitor.SideEffectsTotal.WithLabelValues(string(kind), "scheduled").Inc()
	return nil
}

func (s *LocalScheduler) run(kind tasks.EventKind, p tasks.LifecyclePayload) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("lifecycle task panic", zap.String("kind", string(kind)), zap.Any("panic", r))
		}
	}()

	// 触发时调用方早已返回，不继承它的 ctx
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.runner.Handle(ctx, kind, p); err != nil {
		logger.Warn("lifecycle task failed", zap.String("kind", string(kind)), zap.Error(fmt.Errorf("local scheduler: %w", err)))
	}
}

// Wait 等待所有已调度的任务执行完
func (s *LocalScheduler) Wait() {
	s.wg.Wait()
}

// Stop 不再接受新任务；未到期的任务立即执行，然后等待全部完成
func (s *LocalScheduler) Stop() {
	s.mu.Lock()
	s.closed = true
	var pending []func()
	for t, job := range s.timers {
		// Stop 返回 false 说明回调已经在跑
		if t.Stop() {
			pending = append(pending, job)
		}
		delete(s.timers, t)
	}
	s.mu.Unlock()

	for _, job := range pending {
		go job()
	}
	s.wg.Wait()
}
