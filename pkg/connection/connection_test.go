package connection

import (
	"context"
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeer/lumeer.go/internal/codec"
	"github.com/lumeer/lumeer.go/pkg/constants"
)

func TestToolkitResponseChannels(t *testing.T) {
	toolkit := &Toolkit{}

	ch, err := toolkit.createResponseChannel("req1")
	require.NoError(t, err)
	require.NotNil(t, ch)

	got, ok := toolkit.getResponseChannel("req1")
	assert.True(t, ok)
	assert.Equal(t, ch, got)

	_, err = toolkit.createResponseChannel("req1")
	assert.ErrorIs(t, err, constants.ErrIDInUse)

	toolkit.removeResponseChannel("req1")
	_, ok = toolkit.getResponseChannel("req1")
	assert.False(t, ok)

	_, err = toolkit.createResponseChannel("req1")
	assert.NoError(t, err, "removed ids are free again")
}

func TestPreConnectionChecks(t *testing.T) {
	wire := codec.NewCBOR()

	toolkit := &Toolkit{}
	assert.ErrorIs(t, toolkit.preConnectionChecks(), constants.ErrNoBaseURL)

	toolkit.BaseURL = "ws://localhost:8287"
	assert.ErrorIs(t, toolkit.preConnectionChecks(), constants.ErrNoMarshaler)

	toolkit.Marshaler = wire
	assert.ErrorIs(t, toolkit.preConnectionChecks(), constants.ErrNoUnmarshaler)

	toolkit.Unmarshaler = wire
	assert.NoError(t, toolkit.preConnectionChecks())
}

// stubConnection returns a canned raw response without any transport.
type stubConnection struct {
	wire     *codec.CBOR
	response *RPCResponse[cbor.RawMessage]
	err      error
}

func (s *stubConnection) Connect(ctx context.Context) error { return nil }
func (s *stubConnection) Close() error                      { return nil }

func (s *stubConnection) Send(ctx context.Context, method string, params ...any) (*RPCResponse[cbor.RawMessage], error) {
	return s.response, s.err
}

func (s *stubConnection) GetUnmarshaler() codec.Unmarshaler { return s.wire }

func rawResult(t *testing.T, wire *codec.CBOR, v any) *cbor.RawMessage {
	t.Helper()
	data, err := wire.Marshal(v)
	require.NoError(t, err)
	raw := cbor.RawMessage(data)
	return &raw
}

func TestSendDecodesResult(t *testing.T) {
	wire := codec.NewCBOR()
	conn := &stubConnection{
		wire: wire,
		response: &RPCResponse[cbor.RawMessage]{
			ID:     "req1",
			Result: rawResult(t, wire, map[string]string{"name": "first"}),
		},
	}

	var res RPCResponse[map[string]string]
	require.NoError(t, Send(conn, context.Background(), &res, "search"))
	assert.Equal(t, "req1", res.ID)
	require.NotNil(t, res.Result)
	assert.Equal(t, "first", (*res.Result)["name"])
}

func TestSendNilResult(t *testing.T) {
	wire := codec.NewCBOR()
	conn := &stubConnection{
		wire:     wire,
		response: &RPCResponse[cbor.RawMessage]{ID: "req2"},
	}

	var res RPCResponse[bool]
	require.NoError(t, Send(conn, context.Background(), &res, "deleteDocument"))
	assert.Nil(t, res.Result)
}

func TestSendNilResponseDest(t *testing.T) {
	wire := codec.NewCBOR()
	conn := &stubConnection{
		wire:     wire,
		response: &RPCResponse[cbor.RawMessage]{ID: "req3"},
	}

	assert.NoError(t, Send[bool](conn, context.Background(), nil, "deleteDocument"))
}

func TestSendPropagatesTransportError(t *testing.T) {
	sentinel := errors.New("transport down")
	conn := &stubConnection{wire: codec.NewCBOR(), err: sentinel}

	var res RPCResponse[bool]
	assert.ErrorIs(t, Send(conn, context.Background(), &res, "search"), sentinel)
}

func TestSendDecodeFailure(t *testing.T) {
	wire := codec.NewCBOR()
	conn := &stubConnection{
		wire: wire,
		response: &RPCResponse[cbor.RawMessage]{
			ID:     "req4",
			Result: rawResult(t, wire, "not a map"),
		},
	}

	var res RPCResponse[map[string]string]
	assert.Error(t, Send(conn, context.Background(), &res, "search"))
}

func TestRPCErrorIs(t *testing.T) {
	err := &RPCError{Code: -32000, Message: "boom"}
	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, error(err), &RPCError{})

	wrapped := errors.Join(err)
	var rpcErr *RPCError
	require.ErrorAs(t, wrapped, &rpcErr)
	assert.Equal(t, -32000, rpcErr.Code)
}
