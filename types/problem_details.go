package types

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ProblemDetails Problem Details 结构（基于 RFC7807 + WES 扩展）
type ProblemDetails struct {
	// RFC7807 标准字段
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   *int   `json:"status,omitempty"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	// WES 扩展字段（必填）
	Code        string                 `json:"code"`
	Layer       string                 `json:"layer"`
	UserMessage string                 `json:"userMessage"`
	Details     map[string]interface{} `json:"details,omitempty"`
	TraceID     string                 `json:"traceId"`
	Timestamp   string                 `json:"timestamp"`
}

func (p *ProblemDetails) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", p.Code, p.UserMessage, p.Detail)
	}
	return fmt.Sprintf("[%s] %s", p.Code, p.UserMessage)
}

// Layer 常量
const (
	LayerSuperUserModule = "superuser-module-go"
	LayerRemoteTarget    = "remote-target"
)

// 错误码到 HTTP 状态的映射，供宿主通过 API 暴露错误时使用
var statusByCode = map[ErrorCode]int{
	CodeAlreadyMember:     http.StatusConflict,
	CodeNotMember:         http.StatusNotFound,
	CodeNotSuperUser:      http.StatusForbidden,
	CodeTargetNotReady:    http.StatusServiceUnavailable,
	CodeReviewRequired:    http.StatusPreconditionRequired,
	CodeReviewFailed:      http.StatusForbidden,
	CodeExecutionFailed:   http.StatusBadGateway,
	CodeAlreadyBound:      http.StatusConflict,
	CodeReviewerUnchanged: http.StatusConflict,
	CodeReentrantCall:     http.StatusConflict,
	CodeNotOwner:          http.StatusForbidden,
}

// ToProblemDetails 转换为 Problem Details（每次调用生成新的 TraceID）
func (e *ModuleError) ToProblemDetails() *ProblemDetails {
	status, ok := statusByCode[e.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	pd := &ProblemDetails{
		Code:        string(e.Code),
		Layer:       LayerSuperUserModule,
		UserMessage: e.Message,
		Status:      &status,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if e.Cause != nil {
		pd.Detail = e.Cause.Error()
	}
	return pd
}

// ParseProblemDetailsFromRPCError 从 JSON-RPC 错误对象的 data 字段解析 Problem Details
//
// 远程 ActionTarget 拒绝执行时可能携带结构化原因，调用方据此保留原因链。
func ParseProblemDetailsFromRPCError(rpcError interface{}) (*ProblemDetails, error) {
	rpcMap, ok := rpcError.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid RPC error format")
	}

	data, ok := rpcMap["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("no data field in RPC error")
	}

	code, _ := data["code"].(string)
	layer, _ := data["layer"].(string)
	userMessage, _ := data["userMessage"].(string)
	traceID, _ := data["traceId"].(string)

	if code == "" || layer == "" || userMessage == "" || traceID == "" {
		return nil, fmt.Errorf("missing required fields in problem details")
	}

	detail, _ := data["detail"].(string)
	if detail == "" {
		if msg, ok := rpcMap["message"].(string); ok {
			detail = msg
		}
	}

	var status *int
	if statusVal, ok := data["status"].(float64); ok {
		s := int(statusVal)
		status = &s
	}

	details, _ := data["details"].(map[string]interface{})

	timestamp, _ := data["timestamp"].(string)
	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	typeVal, _ := data["type"].(string)
	title, _ := data["title"].(string)
	instance, _ := data["instance"].(string)

	return &ProblemDetails{
		Code:        code,
		Layer:       layer,
		UserMessage: userMessage,
		Detail:      detail,
		Status:      status,
		Details:     details,
		TraceID:     traceID,
		Timestamp:   timestamp,
		Type:        typeVal,
		Title:       title,
		Instance:    instance,
	}, nil
}
