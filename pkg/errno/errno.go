package errno

import (
	"errors"
	"fmt"
)

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// ValidationError 请求字段缺失或格式错误，Field 是出错字段的路径 (例如 params.account.address)
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid request: %s", e.Field)
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// NewValidationError 构造 ValidationError
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// UnsupportedMethodError 不支持的签名方法
type UnsupportedMethodError struct {
	Method string
}

func (e *UnsupportedMethodError) Error() string {
	return fmt.Sprintf("unsupported method: %q", e.Method)
}

// SchedulingError 生命周期副作用投递失败
type SchedulingError struct {
	Kind string
	Err  error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("schedule %s side-effect: %v", e.Kind, e.Err)
}

func (e *SchedulingError) Unwrap() error {
	return e.Err
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var (
		validationErr  *ValidationError
		unsupportedErr *UnsupportedMethodError
		schedulingErr  *SchedulingError
	)
	switch {
	case errors.As(err, &validationErr):
		return ErrValidation.Code, validationErr.Error()
	case errors.As(err, &unsupportedErr):
		return ErrUnsupportedMethod.Code, unsupportedErr.Error()
	case errors.As(err, &schedulingErr):
		return ErrScheduling.Code, schedulingErr.Error()
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Message
	}
	return InternalServerError.Code, err.Error()
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrCache            = Errno{Code: 10005, Message: "Cache error"}
)

// Confirmation Errors (30000+)
var (
	ErrValidation        = Errno{Code: 30001, Message: "Invalid request"}
	ErrUnsupportedMethod = Errno{Code: 30002, Message: "Unsupported method"}
	ErrScheduling        = Errno{Code: 30003, Message: "Failed to schedule side-effect"}
	ErrDialogNotFound    = Errno{Code: 30101, Message: "Dialog not found"}
	ErrPreferencesUnset  = Errno{Code: 30201, Message: "Preferences not set"}
)
