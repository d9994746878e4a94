package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"wallet-confirm/pkg/logger"
	"wallet-confirm/pkg/monitor"
)

// EventKind 生命周期事件
type EventKind string

const (
	EventAdded    EventKind = "added"
	EventApproved EventKind = "approved"
	EventRejected EventKind = "rejected"
)

// 任务类型常量
const (
	TypeConfirmationAdded    = "confirmation:added"
	TypeConfirmationApproved = "confirmation:approved"
	TypeConfirmationRejected = "confirmation:rejected"
)

// TaskType 事件对应的 asynq 任务类型
func (k EventKind) TaskType() string {
	return "confirmation:" + string(k)
}

// KindFromTaskType 任务类型 -> 事件
func KindFromTaskType(typ string) (EventKind, bool) {
	switch typ {
	case TypeConfirmationAdded:
		return EventAdded, true
	case TypeConfirmationApproved:
		return EventApproved, true
	case TypeConfirmationRejected:
		return EventRejected, true
	}
	return "", false
}

// LifecyclePayload 生命周期任务参数
type LifecyclePayload struct {
	RequestID   string    `json:"request_id"`
	Origin      string    `json:"origin,omitempty"`
	Method      string    `json:"method"`
	Scope       string    `json:"scope"`
	Account     string    `json:"account"`
	Transaction string    `json:"transaction,omitempty"` // base64
	OccurredAt  time.Time `json:"occurred_at"`
}

// ---------------------------------------------------------------------
// 1. Producer (Client) Code
// ---------------------------------------------------------------------

// NewLifecycleTask 创建生命周期任务
func NewLifecycleTask(kind EventKind, p LifecyclePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	// 记账任务很轻，30 秒超时，最多重试 3 次
	return asynq.NewTask(kind.TaskType(), payload, asynq.MaxRetry(3), asynq.Timeout(30*time.Second)), nil
}

// ---------------------------------------------------------------------
// 2. Consumer (Server) Code
// ---------------------------------------------------------------------

// LifecycleHandler 处理生命周期事件：写确认记录 + outbox 消息
type LifecycleHandler struct {
	store RecordStore
}

func NewLifecycleHandler(store RecordStore) *LifecycleHandler {
	return &LifecycleHandler{store: store}
}

// Handle 进程内调度器直接调用
func (h *LifecycleHandler) Handle(ctx context.Context, kind EventKind, p LifecyclePayload) error {
	var err error
	switch kind {
	case EventAdded:
		err = h.store.Added(ctx, p)
	case EventApproved, EventRejected:
		err = h.store.Finished(ctx, kind, p)
	default:
		err = fmt.Errorf("unknown lifecycle event %q", kind)
	}

	result := "executed"
	if err != nil {
		result = "failed"
		logger.Error("lifecycle event failed",
			zap.String("kind", string(kind)),
			zap.String("request_id", p.RequestID),
			zap.Error(err),
		)
	} else {
		logger.Info("lifecycle event recorded",
			zap.String("kind", string(kind)),
			zap.String("request_id", p.RequestID),
			zap.String("method", p.Method),
		)
	}
	monitor.SideEffectsTotal.WithLabelValues(string(kind), result).Inc()
	return err
}

// ProcessTask 实现 asynq.Handler
func (h *LifecycleHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	kind, ok := KindFromTaskType(t.Type())
	if !ok {
		return fmt.Errorf("unexpected task type %q: %w", t.Type(), asynq.SkipRetry)
	}
	var p LifecyclePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		// JSON 解析失败，重试也没用，直接跳过 (SkipRetry)
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}
	return h.Handle(ctx, kind, p)
}
