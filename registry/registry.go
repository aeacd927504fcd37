// Package registry 维护超级用户集合
package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/weisyn/superuser-module-go/types"
)

// Registry 超级用户集合
//
// **实现**：
// - map 提供 O(1) 成员判断
// - members 切片保存插入顺序，List 在两次变更之间顺序稳定
//
// **注意**：
// - Registry 本身不加锁，由持有者（module.Module）负责同步
type Registry struct {
	index   map[common.Address]int
	members []common.Address
}

// New 创建超级用户集合，可选初始成员（重复成员返回 ALREADY_MEMBER）
func New(initial ...common.Address) (*Registry, error) {
	r := &Registry{
		index: make(map[common.Address]int, len(initial)),
	}
	for _, p := range initial {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add 添加成员
func (r *Registry) Add(p common.Address) error {
	if _, ok := r.index[p]; ok {
		return types.NewError(types.CodeAlreadyMember, "%s is already a super user", p.Hex())
	}
	r.index[p] = len(r.members)
	r.members = append(r.members, p)
	return nil
}

// Remove 移除成员
//
// 末尾成员移到被删除位置（swap-remove），因此删除会改变 List 顺序。
func (r *Registry) Remove(p common.Address) error {
	i, ok := r.index[p]
	if !ok {
		return types.NewError(types.CodeNotMember, "%s is not a super user", p.Hex())
	}
	last := len(r.members) - 1
	if i != last {
		moved := r.members[last]
		r.members[i] = moved
		r.index[moved] = i
	}
	r.members = r.members[:last]
	delete(r.index, p)
	return nil
}

// Contains 成员判断
func (r *Registry) Contains(p common.Address) bool {
	_, ok := r.index[p]
	return ok
}

// List 返回全部成员的副本
func (r *Registry) List() []common.Address {
	out := make([]common.Address, len(r.members))
	copy(out, r.members)
	return out
}

// Len 成员数量
func (r *Registry) Len() int {
	return len(r.members)
}
