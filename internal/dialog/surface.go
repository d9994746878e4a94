package dialog

import (
	"context"

	"wallet-confirm/internal/model"
)

// View 确认框使用的视图
type View string

const (
	ViewTransaction View = "transaction"
	ViewMessage     View = "message"
	ViewSignIn      View = "signIn"
)

// Surface 确认框的宿主 (扩展 UI)，编排器只通过它和用户交互
type Surface interface {
	// Create 创建并渲染确认框，返回 dialog id
	Create(ctx context.Context, view View, c model.Context) (string, error)
	// Update 重新渲染；确认框已结束时什么都不做
	Update(ctx context.Context, id string, view View, c model.Context) error
	// Show 阻塞直到用户做出选择，nil 表示直接关闭
	Show(ctx context.Context, id string) (*bool, error)
	// Resolve 强制结束确认框，重复调用无效果
	Resolve(ctx context.Context, id string, decision *bool) error
	// Context 最近一次渲染使用的 Context
	Context(ctx context.Context, id string) (model.Context, error)
}

// Event 推送给 websocket 监听者的事件类型
type Event string

const (
	EventCreated  Event = "created"
	EventUpdated  Event = "updated"
	EventResolved Event = "resolved"
)

// Snapshot 某一时刻确认框的完整状态
type Snapshot struct {
	ID           string        `json:"id"`
	Event        Event         `json:"event,omitempty"`
	View         View          `json:"view"`
	Resolved     bool          `json:"resolved"`
	Decision     *bool         `json:"decision"`
	Context      model.Context `json:"context"`
	Presentation Presentation  `json:"presentation"`
}
