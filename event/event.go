// Package event 定义模块的可观测事件及其记录/订阅
package event

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Kind 事件类型
type Kind string

const (
	SuperUserAdded    Kind = "SuperUserAdded"
	SuperUserRemoved  Kind = "SuperUserRemoved"
	TargetChanged     Kind = "TargetChanged"
	ReviewerChanged   Kind = "ReviewerChanged"
	SuperUserExecuted Kind = "SuperUserExecuted"
)

// Event 事件
//
// Subject 的含义随 Kind 变化：
// - SuperUserAdded / SuperUserRemoved：成员地址
// - TargetChanged：新目标地址
// - ReviewerChanged：新复核人（零地址表示取消复核）
// - SuperUserExecuted：调用者；Nonce 为本次执行使用的 nonce，Digest 为动作摘要
type Event struct {
	ID        string
	Kind      Kind
	Module    common.Address
	Subject   common.Address
	Nonce     uint64
	Digest    common.Hash
	Timestamp time.Time
}

// New 创建事件（自动生成 ID 与时间戳）
func New(kind Kind, module, subject common.Address) Event {
	return Event{
		ID:        uuid.New().String(),
		Kind:      kind,
		Module:    module,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
	}
}

// Emitter 事件发送接口
//
// Emit 在模块执行路径上同步调用，实现不得阻塞。
type Emitter interface {
	Emit(e Event)
}

// Nop 丢弃所有事件
type Nop struct{}

// Emit 丢弃事件
func (Nop) Emit(Event) {}

// Multi 将事件广播给多个 Emitter
type Multi []Emitter

// Emit 依次发送
func (m Multi) Emit(e Event) {
	for _, em := range m {
		em.Emit(e)
	}
}
