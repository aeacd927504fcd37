// Package rpc 提供基于 JSON-RPC 的远程能力适配器
//
// **方法约定**：
//   - module_isEnabled(account, module) -> bool
//   - module_execute(account, {to, value, data, operation}) -> bool
//   - signer_isValidSignature(signer, hash, signature) -> bool | "0x1626ba7e"
//
// 地址、哈希与字节数据使用 0x 前缀十六进制，value 使用 0x 前缀十六进制整数。
package rpc

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weisyn/superuser-module-go/client"
	"github.com/weisyn/superuser-module-go/target"
)

// JSON-RPC 方法名
const (
	MethodIsEnabled        = "module_isEnabled"
	MethodExecute          = client.MethodExecute
	MethodIsValidSignature = "signer_isValidSignature"
)

// NonIdempotentMethods 不允许传输层自动重试的方法（client 已默认排除）
var NonIdempotentMethods = []string{MethodExecute}

// Target 远程受保护账户
type Target struct {
	client  client.Client
	account common.Address
}

// NewTarget 创建远程目标
func NewTarget(c client.Client, account common.Address) *Target {
	return &Target{
		client:  c,
		account: account,
	}
}

// Account 目标账户地址
func (t *Target) Account() common.Address {
	return t.account
}

// IsModuleEnabled 查询模块是否在目标上启用
func (t *Target) IsModuleEnabled(ctx context.Context, module common.Address) (bool, error) {
	result, err := t.client.Call(ctx, MethodIsEnabled, []interface{}{t.account.Hex(), module.Hex()})
	if err != nil {
		return false, fmt.Errorf("call %s failed: %w", MethodIsEnabled, err)
	}
	return decodeBool(MethodIsEnabled, result)
}

// ExecuteAction 请求目标执行动作
func (t *Target) ExecuteAction(ctx context.Context, action target.Action) (bool, error) {
	data := action.Data
	if data == nil {
		data = []byte{}
	}
	params := []interface{}{
		t.account.Hex(),
		map[string]interface{}{
			"to":        action.To.Hex(),
			"value":     hexutil.EncodeBig(action.ValueOrZero()),
			"data":      hexutil.Encode(data),
			"operation": uint8(action.Operation),
		},
	}

	result, err := t.client.Call(ctx, MethodExecute, params)
	if err != nil {
		return false, fmt.Errorf("call %s failed: %w", MethodExecute, err)
	}
	return decodeBool(MethodExecute, result)
}

// Resolver 为任意地址创建共享同一连接的远程目标
type Resolver struct {
	client client.Client
}

// NewResolver 创建远程目标解析器
func NewResolver(c client.Client) *Resolver {
	return &Resolver{client: c}
}

// Resolve 返回 addr 对应的远程目标
func (r *Resolver) Resolve(addr common.Address) (target.ActionTarget, bool) {
	return NewTarget(r.client, addr), true
}

var (
	_ target.ActionTarget = (*Target)(nil)
	_ target.Resolver     = (*Resolver)(nil)
)

// decodeBool 解析布尔结果
func decodeBool(method string, result interface{}) (bool, error) {
	switch v := result.(type) {
	case bool:
		return v, nil
	case map[string]interface{}:
		// 兼容 {"success": bool} / {"enabled": bool} 形式
		for _, key := range []string{"success", "enabled", "valid"} {
			if b, ok := v[key].(bool); ok {
				return b, nil
			}
		}
	}
	return false, client.NewInvalidResponseError(fmt.Sprintf("invalid %s result: %v", method, result))
}
