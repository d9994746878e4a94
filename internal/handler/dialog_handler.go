package handler

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"wallet-confirm/internal/dialog"
	"wallet-confirm/internal/handler/request"
	"wallet-confirm/internal/handler/response"
	"wallet-confirm/pkg/errno"
	"wallet-confirm/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type DialogHandler struct {
	surface *dialog.MemorySurface
}

func NewDialogHandler(surface *dialog.MemorySurface) *DialogHandler {
	return &DialogHandler{surface: surface}
}

// List 未结束的确认框
// GET /api/v1/dialogs
func (h *DialogHandler) List(c *gin.Context) {
	response.Success(c, gin.H{"dialogs": h.surface.Live()})
}

// Get GET /api/v1/dialogs/:id
func (h *DialogHandler) Get(c *gin.Context) {
	snap, err := h.surface.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, snap)
}

// Resolve 用户确认 / 拒绝
// POST /api/v1/dialogs/:id/resolve
func (h *DialogHandler) Resolve(c *gin.Context) {
	var req request.ResolveDialogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}
	id := c.Param("id")
	if err := h.surface.Resolve(c.Request.Context(), id, req.Decision); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// wsListener websocket 连接不支持并发写
type wsListener struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *wsListener) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn.WriteJSON(v)
}

// Watch 订阅确认框的更新，连接建立后先推送一次当前快照
// GET /ws/dialogs/:id
func (h *DialogHandler) Watch(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()
	if _, err := h.surface.Snapshot(ctx, id); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	l := &wsListener{conn: conn}
	hub := h.surface.Hub()
	// 首帧在 hub 锁内读取，保证不会覆盖更新的事件
	err = hub.Subscribe(id, l, func() (interface{}, error) {
		return h.surface.Snapshot(ctx, id)
	})
	if err != nil {
		logger.Debug("websocket subscribe failed", zap.String("dialog_id", id), zap.Error(err))
		return
	}
	defer hub.UnregisterListener(id, l)

	for {
		var buffer interface{}
		if err := conn.ReadJSON(&buffer); err != nil {
			logger.Debug("websocket closed", zap.String("dialog_id", id), zap.Error(err))
			return
		}
	}
}
