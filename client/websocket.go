package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// websocketClient WebSocket 客户端实现
type websocketClient struct {
	endpoint string
	conn     *websocket.Conn
	timeout  time.Duration
	logger   Logger
	debug    bool

	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	nextID    atomic.Uint64
	requests  map[uint64]chan *jsonRPCWSResponse
	muReq     sync.Mutex
}

// jsonRPCWSResponse WebSocket 上的 JSON-RPC 响应（Result 延迟解码）
type jsonRPCWSResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

// NewWebSocketClient 创建 WebSocket 客户端
func NewWebSocketClient(config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	endpoint := config.Endpoint
	// 将 http:// 或 https:// 转换为 ws:// 或 wss://
	switch {
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case !strings.HasPrefix(endpoint, "ws://") && !strings.HasPrefix(endpoint, "wss://"):
		endpoint = "ws://" + endpoint
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(endpoint, nil)
	if err != nil {
		return nil, NewNetworkError(fmt.Errorf("dial websocket: %w", err))
	}

	client := &websocketClient{
		endpoint: endpoint,
		conn:     conn,
		timeout:  timeout,
		logger:   config.Logger,
		debug:    config.Debug,
		requests: make(map[uint64]chan *jsonRPCWSResponse),
	}

	// 启动消息读取循环
	go client.readLoop()

	return client, nil
}

// readLoop 消息读取循环
func (c *websocketClient) readLoop() {
	defer func() {
		c.closed.Store(true)
		c.muReq.Lock()
		for id, ch := range c.requests {
			close(ch)
			delete(c.requests, id)
		}
		c.muReq.Unlock()
	}()

	for {
		var resp jsonRPCWSResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			if !c.closed.Load() && c.logger != nil {
				c.logger.Warn("WebSocket read failed", "endpoint", c.endpoint, "error", err)
			}
			return
		}

		c.muReq.Lock()
		ch, exists := c.requests[resp.ID]
		if exists {
			delete(c.requests, resp.ID)
		}
		c.muReq.Unlock()

		if exists {
			ch <- &resp
		}
	}
}

// Call 调用 JSON-RPC 方法
func (c *websocketClient) Call(ctx context.Context, method string, params interface{}) (interface{}, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("websocket client is closed")
	}

	reqID := c.nextID.Add(1)
	req := jsonRPCRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      reqID,
	}

	// 缓冲为 1，readLoop 投递不阻塞
	respCh := make(chan *jsonRPCWSResponse, 1)
	c.muReq.Lock()
	c.requests[reqID] = respCh
	c.muReq.Unlock()

	forget := func() {
		c.muReq.Lock()
		delete(c.requests, reqID)
		c.muReq.Unlock()
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("JSON-RPC request", "method", method, "id", reqID)
	}

	// gorilla/websocket 不支持并发写
	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		forget()
		return nil, NewNetworkError(fmt.Errorf("write request: %w", err))
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case resp, ok := <-respCh:
		if !ok || resp == nil {
			return nil, NewNetworkError(fmt.Errorf("connection closed before response"))
		}
		if resp.Error != nil {
			return nil, rpcErrorToError(resp.Error.Code, resp.Error.Message, resp.Error.Data)
		}

		var result interface{}
		if len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, &result); err != nil {
				return nil, NewInvalidResponseError(fmt.Sprintf("unmarshal result: %v", err))
			}
		}
		return result, nil

	case <-ctx.Done():
		forget()
		return nil, ctx.Err()

	case <-timer.C:
		forget()
		return nil, NewTimeoutError()
	}
}

// Close 关闭连接
func (c *websocketClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_ = c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.conn.Close()
	})
	return err
}
