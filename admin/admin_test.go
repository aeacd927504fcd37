package admin

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/superuser-module-go/event"
	"github.com/weisyn/superuser-module-go/module"
	"github.com/weisyn/superuser-module-go/target"
	"github.com/weisyn/superuser-module-go/types"
	"github.com/weisyn/superuser-module-go/wallet"
)

var (
	moduleAddr = common.HexToAddress("0x0000000000000000000000000000000000000100")
	safeAddr   = common.HexToAddress("0x0000000000000000000000000000000000005afe")
	owner      = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	alice      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	mallory    = common.HexToAddress("0x00000000000000000000000000000000000000ee")
)

type enabledTarget struct{ executed int }

func (e *enabledTarget) IsModuleEnabled(context.Context, common.Address) (bool, error) {
	return true, nil
}

func (e *enabledTarget) ExecuteAction(context.Context, target.Action) (bool, error) {
	e.executed++
	return true, nil
}

func action() target.Action {
	return target.Action{To: common.HexToAddress("0x01"), Value: big.NewInt(5), Operation: target.Call}
}

func TestOwned_OwnerGatesMutations(t *testing.T) {
	ft := &enabledTarget{}
	o, err := NewOwned(owner, &module.Config{
		Address: moduleAddr,
		Targets: target.Static{safeAddr: ft},
	})
	require.NoError(t, err)

	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.AddSuperUser(mallory, mallory)))
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.SetTarget(mallory, safeAddr)))
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.SetReviewer(mallory, mallory)))
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.RemoveSuperUser(mallory, alice)))
	assert.Empty(t, o.SuperUsers())
	assert.Equal(t, common.Address{}, o.Target())

	require.NoError(t, o.AddSuperUser(owner, alice))
	require.NoError(t, o.SetTarget(owner, safeAddr))
	assert.True(t, o.IsReady(context.Background()))

	require.NoError(t, o.ExecuteAsSuperUser(context.Background(), alice, action()))
	assert.Equal(t, uint64(1), o.Nonce())
	assert.Equal(t, 1, ft.executed)

	// 核心错误原样透出
	assert.Equal(t, types.CodeAlreadyMember, types.CodeOf(o.AddSuperUser(owner, alice)))
	assert.Equal(t, types.CodeAlreadyBound, types.CodeOf(o.SetTarget(owner, safeAddr)))
}

func TestOwned_TransferOwnership(t *testing.T) {
	o, err := NewOwned(owner, nil)
	require.NoError(t, err)

	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.TransferOwnership(mallory, mallory)))
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.TransferOwnership(owner, common.Address{})))

	require.NoError(t, o.TransferOwnership(owner, alice))
	assert.Equal(t, alice, o.Owner())
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.AddSuperUser(owner, mallory)))
	require.NoError(t, o.AddSuperUser(alice, mallory))
}

// blockingEmitter 在发出指定类型事件时通知并等待放行
type blockingEmitter struct {
	kind    event.Kind
	entered chan struct{}
	release chan struct{}
}

func (b *blockingEmitter) Emit(e event.Event) {
	if e.Kind != b.kind {
		return
	}
	close(b.entered)
	<-b.release
}

func TestOwned_TransferWaitsForInFlightMutation(t *testing.T) {
	em := &blockingEmitter{
		kind:    event.SuperUserAdded,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	o, err := NewOwned(owner, &module.Config{Address: moduleAddr, Emitter: em})
	require.NoError(t, err)

	added := make(chan error, 1)
	go func() { added <- o.AddSuperUser(owner, alice) }()
	<-em.entered

	transferred := make(chan error, 1)
	go func() { transferred <- o.TransferOwnership(owner, mallory) }()

	select {
	case <-transferred:
		t.Fatal("ownership moved while an owner-gated mutation was in progress")
	case <-time.After(50 * time.Millisecond):
	}

	close(em.release)
	require.NoError(t, <-added)
	require.NoError(t, <-transferred)
	assert.Equal(t, mallory, o.Owner())
	assert.True(t, o.IsSuperUser(alice))
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(o.RemoveSuperUser(owner, alice)))
}

func TestNewOwned_RejectsZeroOwner(t *testing.T) {
	_, err := NewOwned(common.Address{}, nil)
	assert.Equal(t, types.CodeNotOwner, types.CodeOf(err))
}

func TestFixed_ConfiguredAtConstruction(t *testing.T) {
	reviewer, err := wallet.NewWallet()
	require.NoError(t, err)

	ft := &enabledTarget{}
	f, err := NewFixed(&module.Config{
		Address:    moduleAddr,
		Targets:    target.Static{safeAddr: ft},
		Target:     safeAddr,
		Reviewer:   reviewer.Address(),
		SuperUsers: []common.Address{alice},
	})
	require.NoError(t, err)

	ctx := context.Background()
	assert.Equal(t, []common.Address{alice}, f.SuperUsers())
	assert.Equal(t, reviewer.Address(), f.Reviewer())
	assert.Equal(t, safeAddr, f.Target())
	assert.Equal(t, moduleAddr, f.Address())
	assert.True(t, f.IsSuperUser(alice))

	assert.Equal(t, types.CodeReviewRequired, types.CodeOf(f.ExecuteAsSuperUser(ctx, alice, action())))

	digest, err := f.PendingDigest(action())
	require.NoError(t, err)
	sig, err := reviewer.SignMessage(digest.Bytes())
	require.NoError(t, err)
	require.NoError(t, f.ExecuteAsSuperUserWithReview(ctx, alice, action(), sig))
	assert.Equal(t, uint64(1), f.Nonce())
}

func TestFixed_InvalidConfig(t *testing.T) {
	_, err := NewFixed(&module.Config{SuperUsers: []common.Address{alice, alice}})
	assert.Equal(t, types.CodeAlreadyMember, types.CodeOf(err))
}
