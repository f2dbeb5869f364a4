// Package codec is the wire-codec seam of the SDK. Connections depend on the
// small Marshaler/Unmarshaler pair instead of a concrete encoding, keeping
// the CBOR implementation swappable in tests.
package codec

import "io"

// Encoder writes successive values to an underlying stream.
type Encoder interface {
	Encode(v any) error
}

// Decoder reads successive values from an underlying stream.
type Decoder interface {
	Decode(v any) error
}

// Marshaler turns values into wire bytes, one-shot or streaming.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
	NewEncoder(w io.Writer) Encoder
}

// Unmarshaler turns wire bytes back into values, one-shot or streaming.
type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
	NewDecoder(r io.Reader) Decoder
}
