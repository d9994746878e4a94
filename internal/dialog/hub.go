package dialog

import (
	"sync"

	"go.uber.org/zap"

	"wallet-confirm/pkg/logger"
)

// Listener 订阅者连接，*websocket.Conn 满足此接口
type Listener interface {
	WriteJSON(v interface{}) error
}

// NotificationHub 按 dialog id 分发快照
type NotificationHub struct {
	mu        sync.Mutex
	listeners map[string][]Listener
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{
		listeners: make(map[string][]Listener),
	}
}

func (h *NotificationHub) RegisterListener(topic string, l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners[topic] = append(h.listeners[topic], l)
}

// Subscribe 注册监听并先推送 first() 的结果
// 两者都在锁内完成，之后 Publish 的事件不会早于首帧到达
func (h *NotificationHub) Subscribe(topic string, l Listener, first func() (interface{}, error)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, err := first()
	if err != nil {
		return err
	}
	if err := l.WriteJSON(v); err != nil {
		return err
	}
	h.listeners[topic] = append(h.listeners[topic], l)
	return nil
}

func (h *NotificationHub) UnregisterListener(topic string, l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(topic, l)
}

func (h *NotificationHub) removeLocked(topic string, l Listener) {
	list := h.listeners[topic]
	for i, existing := range list {
		if existing == l {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(h.listeners, topic)
		return
	}
	h.listeners[topic] = list
}

// Publish 写失败的连接直接摘除
// websocket 连接不支持并发写，整个发布过程在锁内完成
func (h *NotificationHub) Publish(topic string, event interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, l := range append([]Listener(nil), h.listeners[topic]...) {
		if err := l.WriteJSON(event); err != nil {
			logger.Debug("drop websocket listener", zap.String("topic", topic), zap.Error(err))
			h.removeLocked(topic, l)
		}
	}
}

// Listeners 当前订阅数量
func (h *NotificationHub) Listeners(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners[topic])
}
