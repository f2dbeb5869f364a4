package connection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/fxamacker/cbor/v2"

	"github.com/lumeer/lumeer.go/internal/rand"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/logger"
)

// HTTPConnection performs each RPC as one POST to the rpc endpoint. It has no
// multiplexing to manage, so calls are independent and safe from any
// goroutine. Use it where a long-lived websocket is impractical, e.g. behind
// proxies that drop idle upgrades.
type HTTPConnection struct {
	Toolkit

	httpClient *http.Client
	logger     logger.Logger
}

func NewHTTPConnection(conf *Config) *HTTPConnection {
	return &HTTPConnection{
		Toolkit: Toolkit{
			BaseURL:     conf.BaseURL,
			Marshaler:   conf.Marshaler,
			Unmarshaler: conf.Unmarshaler,
		},
		httpClient: &http.Client{Timeout: conf.Timeout},
		logger:     conf.Logger,
	}
}

// SetHTTPClient replaces the underlying client, e.g. to add transport-level
// instrumentation. Call before the first Send.
func (h *HTTPConnection) SetHTTPClient(client *http.Client) *HTTPConnection {
	h.httpClient = client
	return h
}

func (h *HTTPConnection) Connect(ctx context.Context) error {
	return h.preConnectionChecks()
}

func (h *HTTPConnection) Close() error {
	h.httpClient.CloseIdleConnections()
	return nil
}

func (h *HTTPConnection) Send(ctx context.Context, method string, params ...any) (*RPCResponse[cbor.RawMessage], error) {
	id := rand.NewRequestID(constants.RequestIDLength)
	request := &RPCRequest{ID: id, Method: method, Params: params}

	body, err := h.Marshaler.Marshal(request)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/rpc", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/cbor")
	req.Header.Set("Accept", "application/cbor")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", constants.ErrInvalidResponse, method, resp.StatusCode)
	}
	h.logger.Debug("request sent", "method", method, "id", id)

	var res RPCResponse[cbor.RawMessage]
	if err := h.Unmarshaler.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &res, nil
}
