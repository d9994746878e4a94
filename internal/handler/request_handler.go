package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"wallet-confirm/internal/handler/response"
	"wallet-confirm/internal/model"
	"wallet-confirm/pkg/errno"
)

// Dispatcher *dispatch.Dispatcher 满足此接口
type Dispatcher interface {
	Handle(ctx context.Context, req model.Request) (bool, error)
}

type RequestHandler struct {
	dispatcher Dispatcher
}

func NewRequestHandler(d Dispatcher) *RequestHandler {
	return &RequestHandler{dispatcher: d}
}

// Submit 提交签名请求，阻塞直到用户在确认框上做出选择
// POST /api/v1/requests
func (h *RequestHandler) Submit(c *gin.Context) {
	// 1. 绑定参数 (字段校验在 Dispatcher 中完成)
	var req model.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind)
		return
	}

	// 2. 调用 Dispatcher
	approved, err := h.dispatcher.Handle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": req.ID, "approved": approved})
}
