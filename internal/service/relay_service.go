package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"wallet-confirm/internal/model"
	"wallet-confirm/internal/service/mq"
	"wallet-confirm/pkg/logger"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
type RelayService struct {
	db        *gorm.DB
	producer  mq.Producer
	interval  time.Duration
	batchSize int
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:        db,
		producer:  producer,
		interval:  500 * time.Millisecond, // 500ms 轮询一次
		batchSize: 50,
	}
}

// Start 阻塞直到 ctx 结束
func (s *RelayService) Start(ctx context.Context) {
	logger.Info("Relay service started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Relay service stopped")
			return
		case <-ticker.C:
			s.ProcessPending(ctx)
		}
	}
}

// ProcessPending 处理一批 PENDING 消息，返回成功投递的数量
func (s *RelayService) ProcessPending(ctx context.Context) int {
	// 1. 获取一批 Pending 消息，按 ID 保证顺序
	var messages []model.OutboxMessage
	if err := s.db.WithContext(ctx).
		Where("status = ?", "PENDING").
		Order("id").
		Limit(s.batchSize).
		Find(&messages).Error; err != nil {
		logger.Error("relay: query outbox failed", zap.Error(err))
		return 0
	}

	sent := 0
	for _, msg := range messages {
		// 2. 发送 MQ
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			logger.Warn("relay: publish failed", zap.Uint64("id", msg.ID), zap.Error(err))
			// 同一个 key 的后续消息不能越过失败的这条
			break
		}

		// 3. 更新状态为 SENT
		// 只有发送成功了才更新状态 => At-least-once，消费端需幂等
		if err := s.db.WithContext(ctx).Model(&msg).Update("status", "SENT").Error; err != nil {
			logger.Error("relay: mark sent failed", zap.Uint64("id", msg.ID), zap.Error(err))
			break
		}
		sent++
	}
	if sent > 0 {
		logger.Debug("relay: messages delivered", zap.Int("count", sent))
	}
	return sent
}
