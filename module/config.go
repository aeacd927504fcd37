package module

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/event"
	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/verifier"
)

// Config 模块配置
type Config struct {
	// Address 模块自身身份，目标通过它判断模块是否已启用
	Address common.Address

	// Targets 目标地址到执行能力的解析器
	Targets target.Resolver

	// Verifier 复核签名验证器（默认 ECDSA + 空合约目录）
	Verifier verifier.Verifier

	// Emitter 事件发送器（默认丢弃）
	Emitter event.Emitter

	// Logger 日志器（可选）
	Logger Logger

	// 初始状态
	Target     common.Address
	Reviewer   common.Address
	SuperUsers []common.Address
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Targets:  target.Static{},
		Verifier: verifier.NewDispatcher(nil),
		Emitter:  event.Nop{},
		Logger:   nopLogger{},
	}
}
