package event

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Filter 事件查询过滤器
type Filter struct {
	Kind    *Kind
	Subject *common.Address
	Limit   int
	Offset  int
}

func (f *Filter) match(e Event) bool {
	if f == nil {
		return true
	}
	if f.Kind != nil && *f.Kind != e.Kind {
		return false
	}
	if f.Subject != nil && *f.Subject != e.Subject {
		return false
	}
	return true
}

// Recorder 内存事件日志
//
// **功能**：
// - 保存已发送事件（可设容量，超出时丢弃最旧的），支持按类型/主体过滤查询
// - 支持实时订阅；订阅者消费过慢时丢弃新事件，保证 Emit 不阻塞
type Recorder struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	subs     map[uint64]*subscription
	nextID   uint64
	buffer   int
}

type subscription struct {
	ch     chan Event
	filter *Filter
}

// NewRecorder 创建不限容量的事件记录器
func NewRecorder() *Recorder {
	return NewRecorderWithCapacity(0)
}

// NewRecorderWithCapacity 创建最多保留 capacity 个最新事件的记录器，capacity <= 0 表示不限
func NewRecorderWithCapacity(capacity int) *Recorder {
	if capacity < 0 {
		capacity = 0
	}
	return &Recorder{
		capacity: capacity,
		subs:     make(map[uint64]*subscription),
		buffer:   64,
	}
}

// Emit 记录事件并分发给订阅者
func (r *Recorder) Emit(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
	if r.capacity > 0 && len(r.events) > r.capacity {
		n := copy(r.events, r.events[len(r.events)-r.capacity:])
		clear(r.events[n:])
		r.events = r.events[:n]
	}
	for _, sub := range r.subs {
		if !sub.filter.match(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default:
		}
	}
}

// Query 按过滤器查询事件（按发送顺序）
func (r *Recorder) Query(f *Filter) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0)
	skipped := 0
	for _, e := range r.events {
		if !f.match(e) {
			continue
		}
		if f != nil && skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, e)
		if f != nil && f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// Len 当前保留的事件数量
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Subscribe 订阅后续事件，ctx 结束时关闭通道
//
// 订阅在 ctx 结束前一直存在，调用方必须使用可取消的 ctx 并在不再消费时取消。
func (r *Recorder) Subscribe(ctx context.Context, f *Filter) <-chan Event {
	ch := make(chan Event, r.buffer)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = &subscription{ch: ch, filter: f}
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, id)
		close(ch)
		r.mu.Unlock()
	}()

	return ch
}
