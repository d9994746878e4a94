package worker

import (
	"context"
	"time"

	"wallet-confirm/internal/worker/tasks"
)

// Scheduler 生命周期副作用调度：延迟 delay 后执行一次，失败返回 error
type Scheduler interface {
	Schedule(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload, delay time.Duration) error
}

// Runner 执行生命周期事件，tasks.LifecycleHandler 满足此接口
type Runner interface {
	Handle(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload) error
}
