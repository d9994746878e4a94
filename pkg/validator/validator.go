package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"wallet-confirm/pkg/errno"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Init 初始化独立的 validator 实例 (tag: validate)，错误字段使用 json tag 名
// gin 的 binding 引擎使用 binding tag，这里的请求校验不经过 gin 绑定，所以不复用它
func Init() {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Struct 校验结构体，返回第一个失败字段对应的 *errno.ValidationError
func Struct(s interface{}) error {
	Init()
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		return errno.NewValidationError(fieldPath(e.Namespace()), reason(e))
	}
	return errno.NewValidationError("", err.Error())
}

// Var 校验单个值，path 为调用方给出的字段路径
func Var(path string, value interface{}, tag string) error {
	Init()
	err := validate.Var(value, tag)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return errno.NewValidationError(path, reason(validationErrors[0]))
	}
	return errno.NewValidationError(path, err.Error())
}

// Request.params.account.address -> params.account.address
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func reason(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "base64":
		return "must be base64 encoded"
	case "url":
		return "must be a valid url"
	case "min":
		return fmt.Sprintf("must have at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must have at most %s characters", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	default:
		return fmt.Sprintf("failed on %s", e.Tag())
	}
}

// GetErrorMsg translates validation errors into user-friendly messages
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errMsgs []string
		for _, e := range validationErrors {
			errMsgs = append(errMsgs, fmt.Sprintf("%s %s", fieldPath(e.Namespace()), reason(e)))
		}
		return strings.Join(errMsgs, "; ")
	}
	var ve *errno.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return "invalid request"
}
