// Package verifier 提供签名验证能力
//
// 两条验证路径：
//   - ECDSA：签名者为普通密钥地址，通过 secp256k1 恢复公钥比对地址
//   - 合约：签名者为可编程账户，由其自身逻辑判定（ERC-1271 语义）
//
// Dispatcher 根据签名者是否注册了合约验证器选择路径。
package verifier

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignatureLength secp256k1 签名长度（r || s || v）
const SignatureLength = 65

// MagicValue ERC-1271 isValidSignature(bytes32,bytes) 的成功返回值
var MagicValue = [4]byte{0x16, 0x26, 0xba, 0x7e}

// Verifier 签名验证能力
//
// 返回 false 表示签名无效；error 仅表示验证过程本身失败（如远程调用失败）。
type Verifier interface {
	IsValidSignature(ctx context.Context, signer common.Address, hash common.Hash, sig []byte) (bool, error)
}

// ContractSigner 合约签名者（ERC-1271 风格）
type ContractSigner interface {
	IsValidSignature(ctx context.Context, hash common.Hash, sig []byte) (bool, error)
}

// ContractLookup 根据地址查找合约签名者
type ContractLookup interface {
	LookupContract(addr common.Address) (ContractSigner, bool)
}

// ECDSA 普通密钥签名验证
type ECDSA struct{}

// IsValidSignature 恢复签名公钥并与 signer 比对
//
// v 接受 0/1 与 27/28 两种形式；s 必须位于曲线阶的低半区。
func (ECDSA) IsValidSignature(_ context.Context, signer common.Address, hash common.Hash, sig []byte) (bool, error) {
	if len(sig) != SignatureLength || signer == (common.Address{}) {
		return false, nil
	}

	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	v := normalized[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return false, nil
	}
	normalized[64] = v

	r := new(big.Int).SetBytes(normalized[:32])
	s := new(big.Int).SetBytes(normalized[32:64])
	// homestead 规则同时拒绝高 s 值的可延展签名
	if !ethcrypto.ValidateSignatureValues(v, r, s, true) {
		return false, nil
	}

	pub, err := ethcrypto.SigToPub(hash.Bytes(), normalized)
	if err != nil {
		return false, nil
	}
	return ethcrypto.PubkeyToAddress(*pub) == signer, nil
}

// Contracts 并发安全的合约签名者目录
type Contracts struct {
	mu      sync.RWMutex
	signers map[common.Address]ContractSigner
}

// NewContracts 创建合约签名者目录
func NewContracts() *Contracts {
	return &Contracts{
		signers: make(map[common.Address]ContractSigner),
	}
}

// Register 注册（或替换）地址对应的合约签名者
func (c *Contracts) Register(addr common.Address, signer ContractSigner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signers[addr] = signer
}

// Unregister 移除地址对应的合约签名者
func (c *Contracts) Unregister(addr common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.signers, addr)
}

// LookupContract 查找合约签名者
func (c *Contracts) LookupContract(addr common.Address) (ContractSigner, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.signers[addr]
	return s, ok
}

// Dispatcher 按签名者类型分派验证
type Dispatcher struct {
	ECDSA     ECDSA
	Contracts ContractLookup // 可选，nil 时只走 ECDSA 路径
}

// NewDispatcher 创建分派验证器
func NewDispatcher(contracts ContractLookup) *Dispatcher {
	return &Dispatcher{Contracts: contracts}
}

// IsValidSignature 合约签名者走合约路径，其余走 ECDSA 路径
func (d *Dispatcher) IsValidSignature(ctx context.Context, signer common.Address, hash common.Hash, sig []byte) (bool, error) {
	if d.Contracts != nil {
		if cs, ok := d.Contracts.LookupContract(signer); ok {
			return cs.IsValidSignature(ctx, hash, sig)
		}
	}
	return d.ECDSA.IsValidSignature(ctx, signer, hash, sig)
}
