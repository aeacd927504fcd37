package types

import (
	"errors"
	"fmt"
)

// ErrorCode 模块错误码
type ErrorCode string

// 错误码定义
//
// **分类**：
// - 注册表误用：ALREADY_MEMBER / NOT_MEMBER
// - 授权拒绝：NOT_SUPER_USER / REVIEW_REQUIRED / REVIEW_FAILED
// - 配置错误：TARGET_NOT_READY
// - 下游失败：EXECUTION_FAILED
// - 管理操作幂等保护：ALREADY_BOUND / REVIEWER_UNCHANGED
// - 重入：REENTRANT_CALL
const (
	CodeAlreadyMember     ErrorCode = "ALREADY_MEMBER"
	CodeNotMember         ErrorCode = "NOT_MEMBER"
	CodeNotSuperUser      ErrorCode = "NOT_SUPER_USER"
	CodeTargetNotReady    ErrorCode = "TARGET_NOT_READY"
	CodeReviewRequired    ErrorCode = "REVIEW_REQUIRED"
	CodeReviewFailed      ErrorCode = "REVIEW_FAILED"
	CodeExecutionFailed   ErrorCode = "EXECUTION_FAILED"
	CodeAlreadyBound      ErrorCode = "ALREADY_BOUND"
	CodeReviewerUnchanged ErrorCode = "REVIEWER_UNCHANGED"
	CodeReentrantCall     ErrorCode = "REENTRANT_CALL"

	// 管理层错误
	CodeNotOwner ErrorCode = "NOT_OWNER"
)

// ModuleError 模块统一错误类型
//
// 调用方通过 Code 区分“未授权”“配置错误”“复核拒绝”等不同原因，
// 不应只依赖 error 是否为 nil。
type ModuleError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ModuleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause=%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ModuleError) Unwrap() error {
	return e.Cause
}

// Is 按错误码匹配，使 errors.Is(err, ErrNotSuperUser) 对任意消息生效
func (e *ModuleError) Is(target error) bool {
	t, ok := target.(*ModuleError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// 哨兵错误（仅用于 errors.Is 比较）
var (
	ErrAlreadyMember     = &ModuleError{Code: CodeAlreadyMember, Message: "principal is already a super user"}
	ErrNotMember         = &ModuleError{Code: CodeNotMember, Message: "principal is not a super user"}
	ErrNotSuperUser      = &ModuleError{Code: CodeNotSuperUser, Message: "caller is not a super user"}
	ErrTargetNotReady    = &ModuleError{Code: CodeTargetNotReady, Message: "target is not set or module is not enabled on it"}
	ErrReviewRequired    = &ModuleError{Code: CodeReviewRequired, Message: "reviewer is set, use the reviewed entry point"}
	ErrReviewFailed      = &ModuleError{Code: CodeReviewFailed, Message: "review signature is invalid"}
	ErrExecutionFailed   = &ModuleError{Code: CodeExecutionFailed, Message: "target failed to execute action"}
	ErrAlreadyBound      = &ModuleError{Code: CodeAlreadyBound, Message: "target is already set to this value"}
	ErrReviewerUnchanged = &ModuleError{Code: CodeReviewerUnchanged, Message: "reviewer is already set to this value"}
	ErrReentrantCall     = &ModuleError{Code: CodeReentrantCall, Message: "an execution is already in progress"}
	ErrNotOwner          = &ModuleError{Code: CodeNotOwner, Message: "caller is not the owner"}
)

// NewError 创建带附加信息的模块错误
func NewError(code ErrorCode, format string, args ...interface{}) *ModuleError {
	return &ModuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError 创建带底层原因的模块错误
func WrapError(code ErrorCode, cause error, format string, args ...interface{}) *ModuleError {
	return &ModuleError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsModuleError 检查错误是否为 ModuleError
func IsModuleError(err error) (*ModuleError, bool) {
	var modErr *ModuleError
	if errors.As(err, &modErr) {
		return modErr, true
	}
	return nil, false
}

// CodeOf 返回错误码，非 ModuleError 返回空字符串
func CodeOf(err error) ErrorCode {
	if modErr, ok := IsModuleError(err); ok {
		return modErr.Code
	}
	return ""
}
