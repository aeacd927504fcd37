package module

import "sync/atomic"

// guard 执行期间的忙标志
//
// 同一 Module 同一时刻最多一个执行在途：目标回调中的重入调用与
// 其他 goroutine 的并发调用都会在 enter 失败。
type guard struct {
	busy atomic.Bool
}

func (g *guard) enter() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *guard) exit() {
	g.busy.Store(false)
}

func (g *guard) held() bool {
	return g.busy.Load()
}
