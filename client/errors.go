package client

import (
	"errors"
	"fmt"

	"github.com/weisyn/superuser-module-go/types"
)

// Error 客户端错误
type Error struct {
	Code    int
	Message string
	Data    interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client error [%d]: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("client error [%d]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// 错误码定义
const (
	ErrCodeNetwork         = 1000 // 网络错误
	ErrCodeTimeout         = 1001 // 超时错误
	ErrCodeInvalidResponse = 1002 // 无效响应
	ErrCodeRPCError        = 1003 // JSON-RPC错误
)

// NewNetworkError 创建网络错误
func NewNetworkError(err error) *Error {
	return &Error{
		Code:    ErrCodeNetwork,
		Message: "network error",
		Err:     err,
	}
}

// NewTimeoutError 创建超时错误
func NewTimeoutError() *Error {
	return &Error{
		Code:    ErrCodeTimeout,
		Message: "request timeout",
	}
}

// NewInvalidResponseError 创建无效响应错误
func NewInvalidResponseError(message string) *Error {
	return &Error{
		Code:    ErrCodeInvalidResponse,
		Message: message,
	}
}

// NewRPCError 创建JSON-RPC错误
func NewRPCError(code int, message string, data interface{}) *Error {
	return &Error{
		Code:    ErrCodeRPCError,
		Message: fmt.Sprintf("RPC error [%d]: %s", code, message),
		Data:    data,
	}
}

// rpcErrorToError 将 JSON-RPC 错误对象转换为 error
//
// data 字段携带 Problem Details 时返回 *types.ProblemDetails，否则返回 *Error。
func rpcErrorToError(code int, message string, data interface{}) error {
	pd, err := types.ParseProblemDetailsFromRPCError(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	})
	if err == nil {
		return pd
	}
	return NewRPCError(code, message, data)
}

// IsProblemDetails 检查错误是否为 Problem Details
func IsProblemDetails(err error) (*types.ProblemDetails, bool) {
	var pd *types.ProblemDetails
	if errors.As(err, &pd) {
		return pd, true
	}
	return nil, false
}
