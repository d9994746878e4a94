package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
)

// Client 封装 Asynq Client
type Client struct {
	client *asynq.Client
}

// NewClient 初始化 Client
// addr: "localhost:6379"
func NewClient(addr string, password string, db int) *Client {
	c := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{client: c}
}

// Enqueue 将任务推送到队列
func (c *Client) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	return c.client.EnqueueContext(ctx, task, opts...)
}

// Schedule 实现 Scheduler，任务在 delay 之后才会被 Worker 取出
func (c *Client) Schedule(ctx context.Context, kind tasks.EventKind, p tasks.LifecyclePayload, delay time.Duration) error {
	task, err := tasks.NewLifecycleTask(kind, p)
	if err != nil {
		return err
	}
	info, err := c.Enqueue(ctx, task, asynq.ProcessIn(delay), asynq.Queue("critical"))
	if err != nil {
		monitor.SideEffectsTotal.WithLabelValues(string(kind), "schedule_failed").Inc()
		return err
	}
	monitor.SideEffectsTotal.WithLabelValues(string(kind), "scheduled").Inc()
	logger.Debug("lifecycle task enqueued",
		zap.String("task_id", info.ID),
		zap.String("type", task.Type()),
		zap.Duration("delay", delay),
	)
	return nil
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	return c.client.Close()
}
