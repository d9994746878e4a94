package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-confirm/pkg/errno"
)

// Response 统一返回结构，HTTP 状态码恒为 200，业务结果看 Code
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
	Data    any    `json:"data"`
}

func Success(c *gin.Context, data any) {
	if data == nil {
		data = gin.H{}
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error 错误码来自 errno.Decode；校验/方法错误额外把出错的字段带回给调用方
func Error(c *gin.Context, err error) {
	code, msg := errno.Decode(err)
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: msg,
		Data:    detail(err),
	})
}

func detail(err error) gin.H {
	var (
		validationErr  *errno.ValidationError
		unsupportedErr *errno.UnsupportedMethodError
		schedulingErr  *errno.SchedulingError
	)
	switch {
	case errors.As(err, &validationErr):
		return gin.H{"field": validationErr.Field}
	case errors.As(err, &unsupportedErr):
		return gin.H{"method": unsupportedErr.Method}
	case errors.As(err, &schedulingErr):
		return gin.H{"kind": schedulingErr.Kind}
	}
	return gin.H{}
}
