// Package admin 提供授权核心之上的两种管理适配层
//
//   - Owned：由所有者地址把关的可变配置
//   - Fixed：构造时确定配置，之后不可修改
//
// 两者共享同一个 module.Module，只决定谁能调用其管理入口。
package admin

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/module"
	"github.com/weisyn/superuser-module-go/target"
)

// Executor 执行与查询面（两种适配层共有）
type Executor interface {
	ExecuteAsSuperUser(ctx context.Context, caller common.Address, action target.Action) error
	ExecuteAsSuperUserWithReview(ctx context.Context, caller common.Address, action target.Action, sig []byte) error

	Address() common.Address
	IsSuperUser(p common.Address) bool
	SuperUsers() []common.Address
	Reviewer() common.Address
	Target() common.Address
	Nonce() uint64
	IsReady(ctx context.Context) bool
	PendingDigest(action target.Action) (common.Hash, error)
}

// core 转发执行与查询面，不暴露核心的管理入口
type core struct {
	m *module.Module
}

func (c core) ExecuteAsSuperUser(ctx context.Context, caller common.Address, action target.Action) error {
	return c.m.ExecuteAsSuperUser(ctx, caller, action)
}

func (c core) ExecuteAsSuperUserWithReview(ctx context.Context, caller common.Address, action target.Action, sig []byte) error {
	return c.m.ExecuteAsSuperUserWithReview(ctx, caller, action, sig)
}

func (c core) Address() common.Address           { return c.m.Address() }
func (c core) IsSuperUser(p common.Address) bool { return c.m.IsSuperUser(p) }
func (c core) SuperUsers() []common.Address      { return c.m.SuperUsers() }
func (c core) Reviewer() common.Address          { return c.m.Reviewer() }
func (c core) Target() common.Address            { return c.m.Target() }
func (c core) Nonce() uint64                     { return c.m.Nonce() }
func (c core) IsReady(ctx context.Context) bool  { return c.m.IsReady(ctx) }

func (c core) PendingDigest(action target.Action) (common.Hash, error) {
	return c.m.PendingDigest(action)
}

var (
	_ Executor = (*module.Module)(nil)
	_ Executor = (*Owned)(nil)
	_ Executor = (*Fixed)(nil)
)
