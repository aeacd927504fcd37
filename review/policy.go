package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/types"
	"github.com/weisyn/superuser-module-go/verifier"
)

// Policy 复核策略
//
// reviewer 为零地址时不需要复核。
type Policy struct {
	mu       sync.RWMutex
	reviewer common.Address
	verifier verifier.Verifier
}

// NewPolicy 创建复核策略
func NewPolicy(v verifier.Verifier, reviewer common.Address) *Policy {
	if v == nil {
		v = verifier.ECDSA{}
	}
	return &Policy{
		reviewer: reviewer,
		verifier: v,
	}
}

// SetReviewer 设置复核人，与当前值相同时返回 REVIEWER_UNCHANGED
func (p *Policy) SetReviewer(reviewer common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reviewer == reviewer {
		return types.NewError(types.CodeReviewerUnchanged, "reviewer is already %s", reviewer.Hex())
	}
	p.reviewer = reviewer
	return nil
}

// Reviewer 当前复核人
func (p *Policy) Reviewer() common.Address {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.reviewer
}

// Required 是否需要复核
func (p *Policy) Required() bool {
	return p.Reviewer() != (common.Address{})
}

// Verify 验证复核签名
//
// 签名无效返回 (false, nil)；无法编码的动作与验证器自身错误返回 error。
// 未设置复核人时总是返回 false。
func (p *Policy) Verify(ctx context.Context, action target.Action, nonce uint64, sig []byte) (bool, error) {
	digest, err := Digest(action, nonce)
	if err != nil {
		return false, fmt.Errorf("compute review digest: %w", err)
	}
	return p.VerifyDigest(ctx, digest, sig)
}

// VerifyDigest 对已计算的规范摘要验证复核签名
func (p *Policy) VerifyDigest(ctx context.Context, digest common.Hash, sig []byte) (bool, error) {
	return p.VerifyDigestFor(ctx, p.Reviewer(), digest, sig)
}

// VerifyDigestFor 以调用方读取的复核人快照验证签名，零地址返回 false
func (p *Policy) VerifyDigestFor(ctx context.Context, reviewer common.Address, digest common.Hash, sig []byte) (bool, error) {
	if reviewer == (common.Address{}) {
		return false, nil
	}

	ok, err := p.verifier.IsValidSignature(ctx, reviewer, MessageHash(digest), sig)
	if err != nil {
		return false, fmt.Errorf("verify review signature: %w", err)
	}
	return ok, nil
}
