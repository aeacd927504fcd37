package verifier

import (
	"bytes"
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Approved 只接受预先登记的 (hash, signature) 组合的合约签名者
//
// 对应链上“预批准哈希”类型的账户：签名内容本身没有密码学含义，
// 只要与登记的数据逐字节一致即视为有效。
type Approved struct {
	mu       sync.RWMutex
	approved map[common.Hash][][]byte
}

// NewApproved 创建预批准签名者
func NewApproved() *Approved {
	return &Approved{
		approved: make(map[common.Hash][][]byte),
	}
}

// Approve 登记 hash 对应的签名数据
func (a *Approved) Approve(hash common.Hash, sig []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	blob := make([]byte, len(sig))
	copy(blob, sig)
	a.approved[hash] = append(a.approved[hash], blob)
}

// Revoke 撤销 hash 的全部登记
func (a *Approved) Revoke(hash common.Hash) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.approved, hash)
}

// IsValidSignature 检查 (hash, sig) 是否已登记
func (a *Approved) IsValidSignature(_ context.Context, hash common.Hash, sig []byte) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, blob := range a.approved[hash] {
		if bytes.Equal(blob, sig) {
			return true, nil
		}
	}
	return false, nil
}
