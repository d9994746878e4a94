package mq

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"wallet-confirm/pkg/logger"
)

// RedisProducer 实现 Producer 接口 (Redis Streams)
type RedisProducer struct {
	client *redis.Client
	maxLen int64
}

// NewRedisProducer 创建 Redis 生产者，stream 长度近似限制在 maxLen
func NewRedisProducer(client *redis.Client, maxLen int64) *RedisProducer {
	return &RedisProducer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish XADD <topic> MAXLEN ~ <maxLen> * key <key> payload <payload>
func (p *RedisProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]interface{}{
			"key":     key,
			"payload": payload,
		},
	}).Err()

	if err != nil {
		logger.Warn("redis stream publish failed", zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("redis xadd error: %w", err)
	}
	return nil
}

// Close 连接由调用方管理
func (p *RedisProducer) Close() error {
	return nil
}

// LogProducer 没有配置 MQ 时只打印日志
type LogProducer struct{}

func (LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	logger.Info("event published", zap.String("topic", topic), zap.String("key", key), zap.ByteString("payload", payload))
	return nil
}

func (LogProducer) Close() error { return nil }
