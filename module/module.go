// Package module 实现超级用户授权核心
//
// **执行流程**（每次调用从 Requested 开始，任一关卡失败即终止）：
//
//	Requested -> MembershipChecked -> TargetReady -> ReviewChecked -> Executed
//
// **不变量**：
//   - nonce 仅在执行成功时 +1，任何被拒绝的调用都不改变任何状态
//   - 同一 Module 同一时刻最多一个执行在途，重入调用返回 REENTRANT_CALL
//   - 配置锁不跨越目标回调持有，回调中的管理操作不会死锁
package module

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/event"
	"github.com/weisyn/superuser-module-go/registry"
	"github.com/weisyn/superuser-module-go/review"
	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/types"
)

// Module 超级用户授权核心
type Module struct {
	address common.Address
	targets target.Resolver
	policy  *review.Policy
	emitter event.Emitter
	logger  Logger

	mu       sync.RWMutex
	registry *registry.Registry
	target   common.Address
	nonce    uint64

	guard guard
}

// New 创建授权核心
//
// cfg 中的初始目标、复核人与超级用户通过与管理层相同的入口写入，
// 因此同样会发出对应事件。
func New(cfg *Config) (*Module, error) {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}

	reg, err := registry.New()
	if err != nil {
		return nil, err
	}

	m := &Module{
		address:  cfg.Address,
		targets:  cfg.Targets,
		emitter:  cfg.Emitter,
		logger:   cfg.Logger,
		registry: reg,
	}
	if m.targets == nil {
		m.targets = defaults.Targets
	}
	if m.emitter == nil {
		m.emitter = defaults.Emitter
	}
	if m.logger == nil {
		m.logger = defaults.Logger
	}
	v := cfg.Verifier
	if v == nil {
		v = defaults.Verifier
	}
	m.policy = review.NewPolicy(v, common.Address{})

	for _, p := range cfg.SuperUsers {
		if err := m.AddSuperUser(p); err != nil {
			return nil, err
		}
	}
	if cfg.Target != (common.Address{}) {
		if err := m.SetTarget(cfg.Target); err != nil {
			return nil, err
		}
	}
	if cfg.Reviewer != (common.Address{}) {
		if err := m.SetReviewer(cfg.Reviewer); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ============================================================================
// 管理入口（由 admin 层调用）
// ============================================================================

// AddSuperUser 添加超级用户
func (m *Module) AddSuperUser(p common.Address) error {
	m.mu.Lock()
	err := m.registry.Add(p)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.logger.Info("Super user added", "principal", p.Hex())
	m.emitter.Emit(event.New(event.SuperUserAdded, m.address, p))
	return nil
}

// RemoveSuperUser 移除超级用户
func (m *Module) RemoveSuperUser(p common.Address) error {
	m.mu.Lock()
	err := m.registry.Remove(p)
	m.mu.Unlock()
	if err != nil {
		return err
	}

	m.logger.Info("Super user removed", "principal", p.Hex())
	m.emitter.Emit(event.New(event.SuperUserRemoved, m.address, p))
	return nil
}

// SetTarget 绑定受保护账户，与当前值相同时返回 ALREADY_BOUND
func (m *Module) SetTarget(t common.Address) error {
	m.mu.Lock()
	if m.target == t {
		m.mu.Unlock()
		return types.NewError(types.CodeAlreadyBound, "target is already %s", t.Hex())
	}
	m.target = t
	m.mu.Unlock()

	m.logger.Info("Target changed", "target", t.Hex())
	m.emitter.Emit(event.New(event.TargetChanged, m.address, t))
	return nil
}

// SetReviewer 设置复核人（零地址表示不需要复核）
func (m *Module) SetReviewer(r common.Address) error {
	if err := m.policy.SetReviewer(r); err != nil {
		return err
	}

	m.logger.Info("Reviewer changed", "reviewer", r.Hex())
	m.emitter.Emit(event.New(event.ReviewerChanged, m.address, r))
	return nil
}

// ============================================================================
// 执行入口
// ============================================================================

// ExecuteAsSuperUser 以超级用户身份执行动作（无复核签名）
//
// 设置了复核人时总是返回 REVIEW_REQUIRED，不会隐式回退到其他复核方式。
func (m *Module) ExecuteAsSuperUser(ctx context.Context, caller common.Address, action target.Action) error {
	return m.execute(ctx, caller, action, nil, false)
}

// ExecuteAsSuperUserWithReview 以超级用户身份执行经复核人签名的动作
//
// 签名针对执行前的当前 nonce；未设置复核人时签名被忽略。
func (m *Module) ExecuteAsSuperUserWithReview(ctx context.Context, caller common.Address, action target.Action, sig []byte) error {
	return m.execute(ctx, caller, action, sig, true)
}

func (m *Module) execute(ctx context.Context, caller common.Address, action target.Action, sig []byte, reviewed bool) error {
	if !m.guard.enter() {
		m.logger.Warn("Rejected reentrant execution", "caller", caller.Hex())
		return types.NewError(types.CodeReentrantCall, "execution already in progress on module %s", m.address.Hex())
	}
	defer m.guard.exit()

	m.mu.RLock()
	member := m.registry.Contains(caller)
	tgt := m.target
	nonce := m.nonce
	m.mu.RUnlock()

	// 1. 成员检查
	if !member {
		m.logger.Debug("Rejected execution", "caller", caller.Hex(), "reason", types.CodeNotSuperUser)
		return types.NewError(types.CodeNotSuperUser, "%s is not a super user", caller.Hex())
	}

	// 2. 目标就绪检查
	at, err := m.readyTarget(ctx, tgt)
	if err != nil {
		m.logger.Debug("Rejected execution", "caller", caller.Hex(), "reason", types.CodeTargetNotReady)
		return err
	}

	digest, err := review.Digest(action, nonce)
	if err != nil {
		return types.WrapError(types.CodeExecutionFailed, err, "action cannot be encoded")
	}

	// 3. 复核检查（复核人只读取一次）
	if reviewer := m.policy.Reviewer(); reviewer != (common.Address{}) {
		if !reviewed {
			m.logger.Debug("Rejected execution", "caller", caller.Hex(), "reason", types.CodeReviewRequired)
			return types.NewError(types.CodeReviewRequired, "reviewer %s must approve this action", reviewer.Hex())
		}
		ok, err := m.policy.VerifyDigestFor(ctx, reviewer, digest, sig)
		if err != nil {
			m.logger.Warn("Review verification error", "caller", caller.Hex(), "error", err)
			return types.WrapError(types.CodeReviewFailed, err, "review signature could not be verified")
		}
		if !ok {
			m.logger.Debug("Rejected execution", "caller", caller.Hex(), "reason", types.CodeReviewFailed)
			return types.NewError(types.CodeReviewFailed, "review signature is invalid for nonce %d", nonce)
		}
	}

	// 4. nonce 递增（转发前），转发失败时回滚
	m.mu.Lock()
	m.nonce++
	m.mu.Unlock()

	// 5. 转发给目标
	ok, err := at.ExecuteAction(ctx, action)
	if err != nil || !ok {
		m.mu.Lock()
		m.nonce--
		m.mu.Unlock()

		if err != nil {
			// 错误无法区分目标是否已执行，需要运维对账
			m.logger.Error("Target execution outcome unknown, nonce rolled back",
				"caller", caller.Hex(), "target", tgt.Hex(), "nonce", nonce, "digest", digest.Hex(), "error", err)
			return types.WrapError(types.CodeExecutionFailed, err, "target %s failed to execute action", tgt.Hex())
		}
		m.logger.Warn("Target rejected action",
			"caller", caller.Hex(), "target", tgt.Hex(), "to", action.To.Hex(), "operation", action.Operation)
		return types.NewError(types.CodeExecutionFailed, "target %s rejected action", tgt.Hex())
	}

	// 6. 事件
	m.logger.Info("Super user executed", "caller", caller.Hex(), "nonce", nonce, "to", action.To.Hex(), "operation", action.Operation)
	e := event.New(event.SuperUserExecuted, m.address, caller)
	e.Nonce = nonce
	e.Digest = digest
	m.emitter.Emit(e)
	return nil
}

func (m *Module) readyTarget(ctx context.Context, tgt common.Address) (target.ActionTarget, error) {
	if tgt == (common.Address{}) {
		return nil, types.NewError(types.CodeTargetNotReady, "target is not set")
	}
	at, ok := m.targets.Resolve(tgt)
	if !ok {
		return nil, types.NewError(types.CodeTargetNotReady, "no capability for target %s", tgt.Hex())
	}
	enabled, err := at.IsModuleEnabled(ctx, m.address)
	if err != nil {
		return nil, types.WrapError(types.CodeTargetNotReady, err, "query module status on target %s", tgt.Hex())
	}
	if !enabled {
		return nil, types.NewError(types.CodeTargetNotReady, "module %s is not enabled on target %s", m.address.Hex(), tgt.Hex())
	}
	return at, nil
}

// ============================================================================
// 查询
// ============================================================================

// Address 模块身份
func (m *Module) Address() common.Address {
	return m.address
}

// IsSuperUser 成员判断
func (m *Module) IsSuperUser(p common.Address) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry.Contains(p)
}

// SuperUsers 全部超级用户（顺序在两次变更之间稳定）
func (m *Module) SuperUsers() []common.Address {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.registry.List()
}

// Reviewer 当前复核人，零地址表示不需要复核
func (m *Module) Reviewer() common.Address {
	return m.policy.Reviewer()
}

// Target 当前目标
func (m *Module) Target() common.Address {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.target
}

// Nonce 当前 nonce
func (m *Module) Nonce() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nonce
}

// IsReady 目标已设置且模块已在目标上启用
func (m *Module) IsReady(ctx context.Context) bool {
	_, err := m.readyTarget(ctx, m.Target())
	return err == nil
}

// Executing 是否有执行在途
func (m *Module) Executing() bool {
	return m.guard.held()
}

// PendingDigest 动作在当前 nonce 下的规范摘要（复核人下一次需要签名的内容）
func (m *Module) PendingDigest(action target.Action) (common.Hash, error) {
	return review.Digest(action, m.Nonce())
}
