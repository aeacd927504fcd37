package rpc

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/superuser-module-go/client"
	"github.com/weisyn/superuser-module-go/target"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     interface{}       `json:"id"`
}

// fakeNode 按方法名返回预设结果，并记录收到的请求
type fakeNode struct {
	mu       sync.Mutex
	results  map[string]interface{}
	errors   map[string]map[string]interface{}
	received []rpcRequest
}

func newFakeNode(t *testing.T) (*fakeNode, client.Client) {
	t.Helper()
	n := &fakeNode{
		results: make(map[string]interface{}),
		errors:  make(map[string]map[string]interface{}),
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		n.mu.Lock()
		n.received = append(n.received, req)
		result, hasResult := n.results[req.Method]
		rpcErr := n.errors[req.Method]
		n.mu.Unlock()

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		switch {
		case rpcErr != nil:
			resp["error"] = rpcErr
		case hasResult:
			resp["result"] = result
		default:
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)

	c, err := client.NewClient(&client.Config{
		Endpoint: server.URL,
		Protocol: client.ProtocolHTTP,
		Timeout:  5,
		Retry:    &client.RetryConfig{MaxRetries: 0, NoRetryMethods: NonIdempotentMethods},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return n, c
}

func (n *fakeNode) set(method string, result interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results[method] = result
}

func (n *fakeNode) last(t *testing.T) rpcRequest {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.received)
	return n.received[len(n.received)-1]
}

func (n *fakeNode) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.received)
}

var (
	account = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	module  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

func TestTarget_IsModuleEnabled(t *testing.T) {
	node, c := newFakeNode(t)
	tgt := NewTarget(c, account)

	node.set(MethodIsEnabled, true)
	enabled, err := tgt.IsModuleEnabled(context.Background(), module)
	require.NoError(t, err)
	assert.True(t, enabled)

	req := node.last(t)
	require.Len(t, req.Params, 2)
	var gotAccount, gotModule string
	require.NoError(t, json.Unmarshal(req.Params[0], &gotAccount))
	require.NoError(t, json.Unmarshal(req.Params[1], &gotModule))
	assert.Equal(t, account.Hex(), gotAccount)
	assert.Equal(t, module.Hex(), gotModule)

	node.set(MethodIsEnabled, map[string]interface{}{"enabled": false})
	enabled, err = tgt.IsModuleEnabled(context.Background(), module)
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestTarget_ExecuteAction(t *testing.T) {
	node, c := newFakeNode(t)
	tgt := NewTarget(c, account)
	node.set(MethodExecute, true)

	to := common.HexToAddress("0x00000000000000000000000000000000000000cc")
	ok, err := tgt.ExecuteAction(context.Background(), target.Action{
		To:        to,
		Value:     big.NewInt(255),
		Data:      []byte{0xde, 0xad},
		Operation: target.DelegateCall,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	req := node.last(t)
	require.Len(t, req.Params, 2)
	var payload struct {
		To        string `json:"to"`
		Value     string `json:"value"`
		Data      string `json:"data"`
		Operation uint8  `json:"operation"`
	}
	require.NoError(t, json.Unmarshal(req.Params[1], &payload))
	assert.Equal(t, to.Hex(), payload.To)
	assert.Equal(t, "0xff", payload.Value)
	assert.Equal(t, "0xdead", payload.Data)
	assert.Equal(t, uint8(1), payload.Operation)
}

func TestTarget_ExecuteActionDefaults(t *testing.T) {
	node, c := newFakeNode(t)
	node.set(MethodExecute, false)

	ok, err := NewTarget(c, account).ExecuteAction(context.Background(), target.Action{})
	require.NoError(t, err)
	assert.False(t, ok)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(node.last(t).Params[1], &payload))
	assert.Equal(t, "0x0", payload["value"])
	assert.Equal(t, "0x", payload["data"])
}

func TestTarget_ExecuteActionNotRetried(t *testing.T) {
	node, c := newFakeNode(t)
	node.mu.Lock()
	node.errors[MethodExecute] = map[string]interface{}{"code": -32000, "message": "reverted"}
	node.mu.Unlock()

	_, err := NewTarget(c, account).ExecuteAction(context.Background(), target.Action{})
	require.Error(t, err)
	assert.Equal(t, 1, node.count())

	var cErr *client.Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, client.ErrCodeRPCError, cErr.Code)
}

func TestTarget_ExecuteActionDefaultClientSendsOnce(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","result":true,"id":1}`))
	}))
	defer server.Close()

	c, err := client.NewClient(&client.Config{
		Endpoint: server.URL,
		Protocol: client.ProtocolHTTP,
		Timeout:  5,
	})
	require.NoError(t, err)
	defer c.Close()

	ok, err := NewTarget(c, account).ExecuteAction(context.Background(), target.Action{})
	require.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, int32(1), hits.Load())

	var cErr *client.Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, client.ErrCodeNetwork, cErr.Code)
}

func TestTarget_InvalidResult(t *testing.T) {
	node, c := newFakeNode(t)
	node.set(MethodIsEnabled, "yes")

	_, err := NewTarget(c, account).IsModuleEnabled(context.Background(), module)
	var cErr *client.Error
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, client.ErrCodeInvalidResponse, cErr.Code)
}

func TestResolver(t *testing.T) {
	_, c := newFakeNode(t)
	r := NewResolver(c)

	at, ok := r.Resolve(account)
	require.True(t, ok)
	remote, isRemote := at.(*Target)
	require.True(t, isRemote)
	assert.Equal(t, account, remote.Account())
}

func TestContractSigner(t *testing.T) {
	signer := common.HexToAddress("0x00000000000000000000000000000000000000dd")
	hash := common.HexToHash("0x01")

	tests := []struct {
		name   string
		result interface{}
		want   bool
	}{
		{"bool true", true, true},
		{"bool false", false, false},
		{"magic value", "0x1626ba7e", true},
		{"magic value upper case", "0x1626BA7E", true},
		{"other selector", "0xffffffff", false},
		{"object", map[string]interface{}{"valid": true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, c := newFakeNode(t)
			node.set(MethodIsValidSignature, tt.result)

			ok, err := NewContractSigner(c, signer).IsValidSignature(context.Background(), hash, []byte{0x01, 0x02})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)

			req := node.last(t)
			require.Len(t, req.Params, 3)
			var gotHash, gotSig string
			require.NoError(t, json.Unmarshal(req.Params[1], &gotHash))
			require.NoError(t, json.Unmarshal(req.Params[2], &gotSig))
			assert.Equal(t, hash.Hex(), gotHash)
			assert.Equal(t, "0x0102", gotSig)
		})
	}
}

func TestContractSigner_Error(t *testing.T) {
	_, c := newFakeNode(t)

	_, err := NewContractSigner(c, account).IsValidSignature(context.Background(), common.Hash{}, nil)
	require.Error(t, err)
}
