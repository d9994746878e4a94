package worker

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"wallet-confirm/internal/worker/tasks"
	"wallet-confirm/pkg/logger"
)

// 生命周期任务全部进 critical 队列，见 Client.Schedule
var lifecycleKinds = []tasks.EventKind{tasks.EventAdded, tasks.EventApproved, tasks.EventRejected}

// Server asynq worker，消费 confirmation:* 任务
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(addr string, password string, db int, concurrency int, handler asynq.Handler) *Server {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     addr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ShutdownTimeout: 10 * time.Second,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logger.Warn("生命周期任务执行失败",
					zap.String("type", task.Type()),
					zap.Int("retried", retried),
					zap.Int("max_retry", maxRetry),
					zap.Error(err))
			}),
			Logger: logger.NewAsynqLogger(),
		},
	)

	mux := asynq.NewServeMux()
	for _, kind := range lifecycleKinds {
		mux.Handle(kind.TaskType(), handler)
	}

	return &Server{
		server: srv,
		mux:    mux,
	}
}

// Run 阻塞运行
func (s *Server) Run() error {
	logger.Info("Worker Server starting...")
	return s.server.Run(s.mux)
}

// Start 非阻塞启动
func (s *Server) Start() {
	go func() {
		if err := s.server.Run(s.mux); err != nil {
			logger.Fatal("Worker Server failed", zap.Error(err))
		}
	}()
}

// Stop 先停止拉取新任务，再等待进行中的任务结束
func (s *Server) Stop() {
	s.server.Stop()
	s.server.Shutdown()
}
