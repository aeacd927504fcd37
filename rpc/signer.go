package rpc

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/weisyn/superuser-module-go/client"
	"github.com/weisyn/superuser-module-go/verifier"
)

// ContractSigner 远程合约签名者
//
// 由节点执行签名者合约的 isValidSignature 逻辑，返回 true 或 ERC-1271 魔数表示有效。
type ContractSigner struct {
	client client.Client
	signer common.Address
}

// NewContractSigner 创建远程合约签名者
func NewContractSigner(c client.Client, signer common.Address) *ContractSigner {
	return &ContractSigner{
		client: c,
		signer: signer,
	}
}

// IsValidSignature 远程验证签名
func (s *ContractSigner) IsValidSignature(ctx context.Context, hash common.Hash, sig []byte) (bool, error) {
	if sig == nil {
		sig = []byte{}
	}
	result, err := s.client.Call(ctx, MethodIsValidSignature, []interface{}{
		s.signer.Hex(),
		hash.Hex(),
		hexutil.Encode(sig),
	})
	if err != nil {
		return false, fmt.Errorf("call %s failed: %w", MethodIsValidSignature, err)
	}

	if magic, ok := result.(string); ok {
		return strings.EqualFold(magic, hexutil.Encode(verifier.MagicValue[:])), nil
	}
	return decodeBool(MethodIsValidSignature, result)
}

var _ verifier.ContractSigner = (*ContractSigner)(nil)
