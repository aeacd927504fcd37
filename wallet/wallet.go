package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/weisyn/superuser-module-go/review"
	"github.com/weisyn/superuser-module-go/target"
)

// Wallet 钱包接口
type Wallet interface {
	// Address 获取钱包地址
	Address() common.Address

	// SignHash 签名给定哈希，返回 65 字节 r || s || v（v 为 27/28）
	SignHash(hash common.Hash) ([]byte, error)

	// SignMessage 按 EIP-191 个人消息格式签名
	SignMessage(msg []byte) ([]byte, error)

	// SignReview 以复核人身份签名动作（nonce 为模块当前 nonce）
	SignReview(action target.Action, nonce uint64) ([]byte, error)

	// PrivateKey 获取私钥（谨慎使用）
	PrivateKey() *ecdsa.PrivateKey
}

// SimpleWallet 简单钱包实现（用于测试和开发）
type SimpleWallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewWallet 创建新钱包
func NewWallet() (Wallet, error) {
	privateKey, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate private key: %w", err)
	}
	return newSimpleWallet(privateKey), nil
}

// NewWalletFromPrivateKey 从十六进制私钥创建钱包
func NewWalletFromPrivateKey(privateKeyHex string) (Wallet, error) {
	privateKeyHex = strings.TrimPrefix(privateKeyHex, "0x")

	privateKeyBytes, err := hex.DecodeString(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}

	// 验证私钥长度（secp256k1 私钥应该是32字节）
	if len(privateKeyBytes) != 32 {
		return nil, fmt.Errorf("invalid private key length: expected 32 bytes, got %d", len(privateKeyBytes))
	}

	privateKey, err := ethcrypto.ToECDSA(privateKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse secp256k1 private key failed: %w", err)
	}
	return newSimpleWallet(privateKey), nil
}

func newSimpleWallet(privateKey *ecdsa.PrivateKey) *SimpleWallet {
	return &SimpleWallet{
		privateKey: privateKey,
		address:    ethcrypto.PubkeyToAddress(privateKey.PublicKey),
	}
}

// Address 获取钱包地址
func (w *SimpleWallet) Address() common.Address {
	return w.address
}

// SignHash 签名哈希值
func (w *SimpleWallet) SignHash(hash common.Hash) ([]byte, error) {
	sig, err := ethcrypto.Sign(hash.Bytes(), w.privateKey)
	if err != nil {
		return nil, fmt.Errorf("secp256k1 sign: %w", err)
	}
	// go-ethereum 返回 v ∈ {0,1}，对外统一为 27/28
	sig[64] += 27
	return sig, nil
}

// SignMessage 签名消息
func (w *SimpleWallet) SignMessage(msg []byte) ([]byte, error) {
	return w.SignHash(common.BytesToHash(accounts.TextHash(msg)))
}

// SignReview 签名复核消息
func (w *SimpleWallet) SignReview(action target.Action, nonce uint64) ([]byte, error) {
	hash, err := review.SigningHash(action, nonce)
	if err != nil {
		return nil, fmt.Errorf("compute review hash: %w", err)
	}
	return w.SignHash(hash)
}

// PrivateKey 获取私钥
func (w *SimpleWallet) PrivateKey() *ecdsa.PrivateKey {
	return w.privateKey
}
