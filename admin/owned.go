package admin

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/module"
	"github.com/weisyn/superuser-module-go/types"
)

// Owned 所有者把关的管理层
type Owned struct {
	core

	mu    sync.RWMutex
	owner common.Address
}

// NewOwned 创建所有者把关的模块
func NewOwned(owner common.Address, cfg *module.Config) (*Owned, error) {
	if owner == (common.Address{}) {
		return nil, types.NewError(types.CodeNotOwner, "owner must not be the zero address")
	}
	m, err := module.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Owned{core: core{m: m}, owner: owner}, nil
}

// Owner 当前所有者
func (o *Owned) Owner() common.Address {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.owner
}

// guarded 在持有所有者读锁期间校验调用方并执行 fn，所有权转移不会插入两者之间
//
// fn 内（包括同步 Emitter）不得再调用 Owned 的方法。
func (o *Owned) guarded(caller common.Address, fn func() error) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if caller != o.owner {
		return types.NewError(types.CodeNotOwner, "%s is not the owner", caller.Hex())
	}
	return fn()
}

// TransferOwnership 转移所有权
func (o *Owned) TransferOwnership(caller, newOwner common.Address) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if caller != o.owner {
		return types.NewError(types.CodeNotOwner, "%s is not the owner", caller.Hex())
	}
	if newOwner == (common.Address{}) {
		return types.NewError(types.CodeNotOwner, "new owner must not be the zero address")
	}
	o.owner = newOwner
	return nil
}

// AddSuperUser 添加超级用户
func (o *Owned) AddSuperUser(caller, p common.Address) error {
	return o.guarded(caller, func() error { return o.m.AddSuperUser(p) })
}

// RemoveSuperUser 移除超级用户
func (o *Owned) RemoveSuperUser(caller, p common.Address) error {
	return o.guarded(caller, func() error { return o.m.RemoveSuperUser(p) })
}

// SetTarget 绑定受保护账户
func (o *Owned) SetTarget(caller, t common.Address) error {
	return o.guarded(caller, func() error { return o.m.SetTarget(t) })
}

// SetReviewer 设置复核人
func (o *Owned) SetReviewer(caller, r common.Address) error {
	return o.guarded(caller, func() error { return o.m.SetReviewer(r) })
}
