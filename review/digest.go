// Package review 实现复核人签名策略
//
// **签名消息（线上格式，修改需升级 DigestVersion）**：
//
//	digest  = keccak256(abi.encode(address to, uint256 value, bytes data, uint8 operation, uint256 nonce))
//	message = keccak256("\x19Ethereum Signed Message:\n32" || digest)
//
// 复核人对 message 签名；nonce 为执行时模块的当前 nonce（递增前）。
package review

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/superuser-module-go/target"
)

// DigestVersion 摘要编码版本
const DigestVersion = 1

var (
	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	digestArgs = abi.Arguments{
		{Name: "to", Type: mustType("address")},
		{Name: "value", Type: mustType("uint256")},
		{Name: "data", Type: mustType("bytes")},
		{Name: "operation", Type: mustType("uint8")},
		{Name: "nonce", Type: mustType("uint256")},
	}
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("review: abi type %s: %v", t, err))
	}
	return typ
}

// Encode 返回 (to, value, data, operation, nonce) 的 ABI 编码
func Encode(action target.Action, nonce uint64) ([]byte, error) {
	value := action.ValueOrZero()
	if value.Sign() < 0 || value.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("value out of uint256 range: %s", value)
	}
	if !action.Operation.Valid() {
		return nil, fmt.Errorf("unknown call mode: %d", uint8(action.Operation))
	}

	data := action.Data
	if data == nil {
		data = []byte{}
	}

	encoded, err := digestArgs.Pack(
		action.To,
		new(big.Int).Set(value),
		data,
		uint8(action.Operation),
		new(big.Int).SetUint64(nonce),
	)
	if err != nil {
		return nil, fmt.Errorf("abi encode action: %w", err)
	}
	return encoded, nil
}

// Digest 计算动作在给定 nonce 下的规范摘要
func Digest(action target.Action, nonce uint64) (common.Hash, error) {
	encoded, err := Encode(action, nonce)
	if err != nil {
		return common.Hash{}, err
	}
	return ethcrypto.Keccak256Hash(encoded), nil
}

// MessageHash 对摘要加 EIP-191 个人消息前缀，得到复核人实际签名的哈希
func MessageHash(digest common.Hash) common.Hash {
	return common.BytesToHash(accounts.TextHash(digest.Bytes()))
}

// SigningHash Digest + MessageHash
func SigningHash(action target.Action, nonce uint64) (common.Hash, error) {
	digest, err := Digest(action, nonce)
	if err != nil {
		return common.Hash{}, err
	}
	return MessageHash(digest), nil
}
