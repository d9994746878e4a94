package mq

import "context"

// Producer 生产者接口
type Producer interface {
	// Publish 发送消息
	// key: 分区键，这里是 request id，保证同一次确认的事件有序。传空字符串则随机分区.
	Publish(ctx context.Context, topic string, key string, payload []byte) error
	Close() error
}
