// Package connection implements the transport between the SDK and the remote
// platform API. The cache layer is transport agnostic; everything it needs is
// the Connection interface.
package connection

import (
	"context"
	"fmt"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/lumeer/lumeer.go/internal/codec"
	"github.com/lumeer/lumeer.go/pkg/constants"
)

// Connection is a single multiplexed RPC channel to the platform API.
type Connection interface {
	Connect(ctx context.Context) error
	Close() error
	// Send performs one RPC round trip and returns the raw response. Use
	// the package-level Send to decode the result into a typed value.
	Send(ctx context.Context, method string, params ...any) (*RPCResponse[cbor.RawMessage], error)
	GetUnmarshaler() codec.Unmarshaler
}

// Send performs an RPC and decodes the raw result into res.
func Send[Result any](c Connection, ctx context.Context, res *RPCResponse[Result], method string, params ...any) error {
	raw, err := c.Send(ctx, method, params...)
	if err != nil {
		return err
	}
	if res == nil {
		return nil
	}

	res.ID = raw.ID
	res.Error = raw.Error
	if raw.Result == nil {
		res.Result = nil
		return nil
	}

	var result Result
	if err := c.GetUnmarshaler().Unmarshal(*raw.Result, &result); err != nil {
		return fmt.Errorf("Send: error unmarshaling result: %w", err)
	}
	res.Result = &result
	return nil
}

// Toolkit holds the state every connection implementation shares: the wire
// codec and the table of channels awaiting a response by request id.
type Toolkit struct {
	BaseURL     string
	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler

	responseChannels     map[string]chan RPCResponse[cbor.RawMessage]
	responseChannelsLock sync.RWMutex
}

func (t *Toolkit) createResponseChannel(id string) (chan RPCResponse[cbor.RawMessage], error) {
	t.responseChannelsLock.Lock()
	defer t.responseChannelsLock.Unlock()

	if t.responseChannels == nil {
		t.responseChannels = make(map[string]chan RPCResponse[cbor.RawMessage])
	}
	if _, ok := t.responseChannels[id]; ok {
		return nil, fmt.Errorf("%w: %v", constants.ErrIDInUse, id)
	}

	ch := make(chan RPCResponse[cbor.RawMessage], 1)
	t.responseChannels[id] = ch
	return ch, nil
}

func (t *Toolkit) removeResponseChannel(id string) {
	t.responseChannelsLock.Lock()
	defer t.responseChannelsLock.Unlock()
	delete(t.responseChannels, id)
}

func (t *Toolkit) getResponseChannel(id string) (chan RPCResponse[cbor.RawMessage], bool) {
	t.responseChannelsLock.RLock()
	defer t.responseChannelsLock.RUnlock()
	ch, ok := t.responseChannels[id]
	return ch, ok
}

func (t *Toolkit) preConnectionChecks() error {
	if t.BaseURL == "" {
		return constants.ErrNoBaseURL
	}
	if t.Marshaler == nil {
		return constants.ErrNoMarshaler
	}
	if t.Unmarshaler == nil {
		return constants.ErrNoUnmarshaler
	}
	return nil
}

func (t *Toolkit) GetUnmarshaler() codec.Unmarshaler {
	return t.Unmarshaler
}
