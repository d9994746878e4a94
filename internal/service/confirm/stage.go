package confirm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
)

// Task 阶段内的一个富化子任务
// 出错时 Run 仍返回降级后的 Partial (例如状态置为 error)，error 只用于日志和指标
type Task struct {
	Name string
	// Quiet 失败只记 Debug 日志 (偏好回退默认值不算异常)
	Quiet bool
	Run   func(ctx context.Context, c model.Context) (model.Partial, error)
}

// Stage 流水线的一个阶段，产生一次界面更新
type Stage struct {
	Name  string
	Tasks []Task
}

// run 并发执行所有子任务，按任务顺序返回各自的 patch
func (s Stage) run(ctx context.Context, c model.Context) []model.Partial {
	start := time.Now()
	patches := make([]model.Partial, len(s.Tasks))

	var g errgroup.Group
	for i, task := range s.Tasks {
		g.Go(func() error {
			patches[i] = runTask(ctx, s.Name, task, c)
			return nil
		})
	}
	_ = g.Wait()

	monitor.StageDuration.WithLabelValues(s.Name).Observe(time.Since(start).Seconds())
	return patches
}

// runTask 子任务之间互相隔离：error 和 panic 都不会越过这里
func runTask(ctx context.Context, stage string, task Task, c model.Context) (patch model.Partial) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("enrichment task panic",
				zap.String("stage", stage),
				zap.String("task", task.Name),
				zap.Any("panic", r),
			)
			monitor.EnrichmentFailures.WithLabelValues(task.Name).Inc()
			patch = model.Partial{}
		}
	}()

	patch, err := task.Run(ctx, c)
	if err != nil {
		monitor.EnrichmentFailures.WithLabelValues(task.Name).Inc()
		fields := []zap.Field{
			zap.String("stage", stage),
			zap.String("task", task.Name),
			zap.String("request_id", c.RequestID),
			zap.Error(err),
		}
		if task.Quiet {
			logger.Debug("enrichment fell back to default", fields...)
		} else {
			logger.Warn("enrichment failed", fields...)
		}
	}
	return patch
}

func (s Stage) String() string {
	return fmt.Sprintf("%s(%d tasks)", s.Name, len(s.Tasks))
}
