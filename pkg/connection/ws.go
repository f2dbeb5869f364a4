package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	gorilla "github.com/gorilla/websocket"

	"github.com/lumeer/lumeer.go/internal/rand"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/logger"
)

// DefaultDialer is the gorilla dialer used by WSConnection, with compression
// enabled and the cbor subprotocol announced.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
	Subprotocols:      []string{"cbor"},
}

// WSConnection multiplexes RPC calls over one websocket. Responses are routed
// back to callers through per-request channels, so calls from multiple
// goroutines interleave safely.
type WSConnection struct {
	Toolkit

	conn *gorilla.Conn
	// connLock guards reads and writes on conn, not the connect process
	// itself, to keep Send cancellable.
	connLock sync.Mutex

	// Timeout bounds waiting for the RPC response after a successful
	// write. Zero disables it in favor of context deadlines.
	Timeout time.Duration

	logger logger.Logger

	closeCh    chan struct{}
	closeErr   error
	closed     bool
	closedLock sync.Mutex
}

func NewWSConnection(conf *Config) *WSConnection {
	return &WSConnection{
		Toolkit: Toolkit{
			BaseURL:     conf.BaseURL,
			Marshaler:   conf.Marshaler,
			Unmarshaler: conf.Unmarshaler,
		},
		Timeout: conf.Timeout,
		logger:  conf.Logger,
	}
}

// Connect dials the rpc endpoint and starts the read loop.
func (c *WSConnection) Connect(ctx context.Context) error {
	if err := c.preConnectionChecks(); err != nil {
		return err
	}

	conn, res, err := DefaultDialer.DialContext(ctx, fmt.Sprintf("%s/rpc", c.BaseURL), nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	c.connLock.Lock()
	defer c.connLock.Unlock()
	c.conn = conn
	c.closeCh = make(chan struct{})

	go c.readLoop()
	return nil
}

func (c *WSConnection) Close() error {
	c.closedLock.Lock()
	defer c.closedLock.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.closeCh != nil {
		close(c.closeCh)
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.WriteMessage(
		gorilla.CloseMessage,
		gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""),
	)
	if err != nil && !errors.Is(err, gorilla.ErrCloseSent) {
		c.logger.Warn("failed to send close message", "error", err)
	}
	return c.conn.Close()
}

// IsClosed reports whether the connection has been closed, locally or by the
// server. A closed connection cannot reconnect; create a new one.
func (c *WSConnection) IsClosed() bool {
	c.closedLock.Lock()
	defer c.closedLock.Unlock()
	return c.closed
}

func (c *WSConnection) Send(ctx context.Context, method string, params ...any) (*RPCResponse[cbor.RawMessage], error) {
	select {
	case <-c.closeCh:
		return nil, constants.ErrClosed
	default:
	}

	id := rand.NewRequestID(constants.RequestIDLength)
	request := &RPCRequest{ID: id, Method: method, Params: params}

	ch, err := c.createResponseChannel(id)
	if err != nil {
		return nil, err
	}
	defer c.removeResponseChannel(id)

	if err := c.write(request); err != nil {
		return nil, err
	}
	c.logger.Debug("request sent", "method", method, "id", id)

	timeout := c.Timeout
	if timeout == 0 {
		timeout = time.Duration(1<<63 - 1)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closeCh:
		return nil, constants.ErrClosed
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s", constants.ErrTimeout, method)
	case res, open := <-ch:
		if !open {
			return nil, constants.ErrClosed
		}
		if res.Error != nil {
			return nil, res.Error
		}
		return &res, nil
	}
}

func (c *WSConnection) write(v any) error {
	data, err := c.Marshaler.Marshal(v)
	if err != nil {
		return err
	}

	c.connLock.Lock()
	defer c.connLock.Unlock()
	if c.conn == nil {
		return constants.ErrClosed
	}
	return c.conn.WriteMessage(gorilla.BinaryMessage, data)
}

func (c *WSConnection) readLoop() {
	for {
		select {
		case <-c.closeCh:
			return
		default:
		}

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}
		go c.handleResponse(data)
	}
}

func (c *WSConnection) handleReadError(err error) {
	var closeError *gorilla.CloseError
	var netError net.Error
	switch {
	case errors.As(err, &closeError):
		c.closeErr = err
	case errors.As(err, &netError):
		c.closeErr = err
		c.logger.Error("connection lost", "error", err)
	default:
		c.closeErr = err
	}
	_ = c.Close()
}

func (c *WSConnection) handleResponse(data []byte) {
	var res RPCResponse[cbor.RawMessage]
	if err := c.Unmarshaler.Unmarshal(data, &res); err != nil {
		c.logger.Error("failed to unmarshal response", "error", err)
		return
	}
	if res.ID == "" {
		c.logger.Warn("response without id dropped")
		return
	}
	ch, ok := c.getResponseChannel(res.ID)
	if !ok {
		c.logger.Warn("no channel waiting for response", "id", res.ID)
		return
	}
	ch <- res
}
