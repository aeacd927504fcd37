package event

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	module = common.HexToAddress("0x0000000000000000000000000000000000000100")
	alice  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob    = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

func TestNew(t *testing.T) {
	e := New(SuperUserAdded, module, alice)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, SuperUserAdded, e.Kind)
	assert.Equal(t, alice, e.Subject)
	assert.False(t, e.Timestamp.IsZero())
	assert.NotEqual(t, e.ID, New(SuperUserAdded, module, alice).ID)
}

func TestRecorder_Query(t *testing.T) {
	r := NewRecorder()
	r.Emit(New(SuperUserAdded, module, alice))
	r.Emit(New(SuperUserAdded, module, bob))
	r.Emit(New(SuperUserExecuted, module, alice))
	r.Emit(New(SuperUserRemoved, module, bob))

	assert.Equal(t, 4, r.Len())
	assert.Len(t, r.Query(nil), 4)

	added := SuperUserAdded
	got := r.Query(&Filter{Kind: &added})
	require.Len(t, got, 2)
	assert.Equal(t, alice, got[0].Subject)
	assert.Equal(t, bob, got[1].Subject)

	subject := alice
	got = r.Query(&Filter{Subject: &subject})
	require.Len(t, got, 2)
	assert.Equal(t, SuperUserExecuted, got[1].Kind)

	got = r.Query(&Filter{Offset: 1, Limit: 2})
	require.Len(t, got, 2)
	assert.Equal(t, bob, got[0].Subject)
	assert.Equal(t, SuperUserExecuted, got[1].Kind)

	assert.Empty(t, r.Query(&Filter{Offset: 10}))
}

func TestRecorder_Capacity(t *testing.T) {
	r := NewRecorderWithCapacity(2)
	r.Emit(New(SuperUserAdded, module, alice))
	r.Emit(New(SuperUserAdded, module, bob))
	r.Emit(New(SuperUserExecuted, module, alice))

	assert.Equal(t, 2, r.Len())
	got := r.Query(nil)
	require.Len(t, got, 2)
	assert.Equal(t, bob, got[0].Subject)
	assert.Equal(t, SuperUserExecuted, got[1].Kind)

	for i := 0; i < 100; i++ {
		r.Emit(New(SuperUserRemoved, module, bob))
	}
	assert.Equal(t, 2, r.Len())
	assert.Less(t, cap(r.events), 16)

	unbounded := NewRecorderWithCapacity(-1)
	for i := 0; i < 5; i++ {
		unbounded.Emit(New(SuperUserAdded, module, alice))
	}
	assert.Equal(t, 5, unbounded.Len())
}

func TestRecorder_CancelRemovesSubscription(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	ch := r.Subscribe(ctx, nil)

	r.mu.RLock()
	assert.Len(t, r.subs, 1)
	r.mu.RUnlock()

	cancel()
	for range ch {
	}

	r.mu.RLock()
	assert.Empty(t, r.subs)
	r.mu.RUnlock()
}

func TestRecorder_Subscribe(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	executed := SuperUserExecuted
	ch := r.Subscribe(ctx, &Filter{Kind: &executed})

	r.Emit(New(SuperUserAdded, module, alice))
	r.Emit(New(SuperUserExecuted, module, alice))

	select {
	case e := <-ch:
		assert.Equal(t, SuperUserExecuted, e.Kind)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	for range ch {
	}
}

func TestRecorder_SlowSubscriberDoesNotBlock(t *testing.T) {
	r := NewRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = r.Subscribe(ctx, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < r.buffer*2; i++ {
			r.Emit(New(SuperUserExecuted, module, alice))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on slow subscriber")
	}
	assert.Equal(t, r.buffer*2, r.Len())
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Multi{a, b, Nop{}}.Emit(New(TargetChanged, module, bob))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())
}
