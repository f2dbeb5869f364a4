package constants

import "errors"

var (
	ErrTimeout            = errors.New("timeout")
	ErrIDInUse            = errors.New("id already in use")
	ErrNoBaseURL          = errors.New("base url not set")
	ErrNoMarshaler        = errors.New("marshaler is not set")
	ErrNoUnmarshaler      = errors.New("unmarshaler is not set")
	ErrClosed             = errors.New("connection closed")
	ErrMethodNotAvailable = errors.New("method not available on this connection")

	ErrNotFound        = errors.New("resource not found")
	ErrNoCorrelationID = errors.New("correlation id not set")
	ErrInvalidResponse = errors.New("invalid platform response")
)
