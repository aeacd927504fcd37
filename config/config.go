// Package config 从 YAML 文件装配超级用户模块
//
// **文件格式**：
//
//	module: 0x...            # 模块身份
//	target: 0x...            # 受保护账户（可选）
//	reviewer: 0x...          # 复核人（可选，零值表示不需要复核）
//	owner: 0x...             # 管理员（可选，缺省时构造不可变模块）
//	super_users: [0x..., ...]
//	contract_signers: [...]  # 通过节点验证签名的合约复核人
//	rpc:
//	  endpoint: http://localhost:8545
//	  protocol: http         # http | websocket
//	  timeout: 30
//	  max_retries: 3
//
// 地址可使用 0x 十六进制或 Base58Check 形式。
package config

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/weisyn/superuser-module-go/admin"
	"github.com/weisyn/superuser-module-go/client"
	"github.com/weisyn/superuser-module-go/event"
	"github.com/weisyn/superuser-module-go/module"
	"github.com/weisyn/superuser-module-go/rpc"
	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/utils"
	"github.com/weisyn/superuser-module-go/verifier"
)

// File YAML 文件结构
type File struct {
	Module          string     `yaml:"module"`
	Target          string     `yaml:"target"`
	Reviewer        string     `yaml:"reviewer"`
	Owner           string     `yaml:"owner"`
	SuperUsers      []string   `yaml:"super_users"`
	ContractSigners []string   `yaml:"contract_signers"`
	RPC             *RPCConfig `yaml:"rpc"`
}

// RPCConfig 远程节点配置
type RPCConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Protocol   string `yaml:"protocol"`
	Timeout    int    `yaml:"timeout"`
	MaxRetries *int   `yaml:"max_retries"`
	Debug      bool   `yaml:"debug"`
}

// Settings 解析后的配置
type Settings struct {
	Address         common.Address
	Target          common.Address
	Reviewer        common.Address
	Owner           common.Address
	SuperUsers      []common.Address
	ContractSigners []common.Address
	RPC             *RPCConfig
}

// Load 读取并解析配置文件
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 内容
func Parse(data []byte) (*Settings, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return f.Settings()
}

// Settings 校验并转换文件内容
func (f *File) Settings() (*Settings, error) {
	if f.Module == "" {
		return nil, fmt.Errorf("module: address is required")
	}

	s := &Settings{RPC: f.RPC}
	var err error
	if s.Address, err = utils.ParseAddress(f.Module); err != nil {
		return nil, fmt.Errorf("module: %w", err)
	}
	if s.Target, err = optionalAddress(f.Target); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	if s.Reviewer, err = optionalAddress(f.Reviewer); err != nil {
		return nil, fmt.Errorf("reviewer: %w", err)
	}
	if s.Owner, err = optionalAddress(f.Owner); err != nil {
		return nil, fmt.Errorf("owner: %w", err)
	}
	if s.SuperUsers, err = utils.ParseAddresses(f.SuperUsers); err != nil {
		return nil, fmt.Errorf("super_users: %w", err)
	}
	if s.ContractSigners, err = utils.ParseAddresses(f.ContractSigners); err != nil {
		return nil, fmt.Errorf("contract_signers: %w", err)
	}

	if s.RPC != nil {
		if s.RPC.Endpoint == "" {
			return nil, fmt.Errorf("rpc: endpoint is required")
		}
		switch client.Protocol(s.RPC.Protocol) {
		case "", client.ProtocolHTTP, client.ProtocolWebSocket:
		default:
			return nil, fmt.Errorf("rpc: unsupported protocol %q", s.RPC.Protocol)
		}
	}
	if len(s.ContractSigners) > 0 && s.RPC == nil {
		return nil, fmt.Errorf("contract_signers: rpc endpoint is required")
	}
	return s, nil
}

func optionalAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	return utils.ParseAddress(s)
}

// ClientConfig 远程节点客户端配置，未配置 rpc 时返回 nil
//
// module_execute 不允许自动重试，避免同一动作被目标执行两次。
func (s *Settings) ClientConfig(logger client.Logger) *client.Config {
	if s.RPC == nil {
		return nil
	}
	cfg := client.DefaultConfig()
	cfg.Endpoint = s.RPC.Endpoint
	if s.RPC.Protocol != "" {
		cfg.Protocol = client.Protocol(s.RPC.Protocol)
	}
	if s.RPC.Timeout > 0 {
		cfg.Timeout = s.RPC.Timeout
	}
	cfg.Debug = s.RPC.Debug
	cfg.Logger = logger

	retry := client.DefaultRetryConfig()
	if s.RPC.MaxRetries != nil {
		retry.MaxRetries = *s.RPC.MaxRetries
	}
	retry.NoRetryMethods = append(retry.NoRetryMethods, rpc.NonIdempotentMethods...)
	if logger != nil {
		retry.OnRetry = func(attempt int, err error) {
			logger.Warn("Retrying request", "attempt", attempt, "error", err)
		}
	}
	cfg.Retry = retry
	return cfg
}

// ModuleConfig 构造核心配置
//
// c 为 nil 时目标解析器为空，模块在注入其他解析器之前始终不就绪。
func (s *Settings) ModuleConfig(c client.Client, logger module.Logger, emitter event.Emitter) *module.Config {
	cfg := module.DefaultConfig()
	cfg.Address = s.Address
	cfg.Target = s.Target
	cfg.Reviewer = s.Reviewer
	cfg.SuperUsers = append([]common.Address(nil), s.SuperUsers...)
	if logger != nil {
		cfg.Logger = logger
	}
	if emitter != nil {
		cfg.Emitter = emitter
	}

	contracts := verifier.NewContracts()
	if c != nil {
		cfg.Targets = rpc.NewResolver(c)
		for _, addr := range s.ContractSigners {
			contracts.Register(addr, rpc.NewContractSigner(c, addr))
		}
	} else {
		cfg.Targets = target.Static{}
	}
	cfg.Verifier = verifier.NewDispatcher(contracts)
	return cfg
}

// Runtime 装配完成的模块及其连接
type Runtime struct {
	// Executor 执行与查询面
	Executor admin.Executor

	// Owned 配置了 owner 时的管理层，否则为 nil
	Owned *admin.Owned

	client client.Client
}

// Close 关闭远程连接
func (r *Runtime) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Open 按配置连接节点并构造模块
//
// 配置了 owner 时构造可管理模块，否则构造不可变模块。
func Open(s *Settings, logger module.Logger, emitter event.Emitter) (*Runtime, error) {
	rt := &Runtime{}

	var clientLogger client.Logger
	if logger != nil {
		clientLogger = logger
	}
	if cc := s.ClientConfig(clientLogger); cc != nil {
		c, err := client.NewClient(cc)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", cc.Endpoint, err)
		}
		rt.client = c
	}

	mc := s.ModuleConfig(rt.client, logger, emitter)
	if s.Owner != (common.Address{}) {
		owned, err := admin.NewOwned(s.Owner, mc)
		if err != nil {
			_ = rt.Close()
			return nil, err
		}
		rt.Owned = owned
		rt.Executor = owned
		return rt, nil
	}

	fixed, err := admin.NewFixed(mc)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Executor = fixed
	return rt, nil
}
