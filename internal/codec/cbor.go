package codec

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is the default wire codec. Timestamps travel as epoch milliseconds, so
// time.Time is encoded as a unix tag and decoded back losslessly.
type CBOR struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func NewCBOR() *CBOR {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.Time = cbor.TimeUnixMicro
	encMode, err := encOpts.EncMode()
	if err != nil {
		panic(err)
	}

	decOpts := cbor.DecOptions{DefaultMapType: nil}
	decMode, err := decOpts.DecMode()
	if err != nil {
		panic(err)
	}

	return &CBOR{encMode: encMode, decMode: decMode}
}

func (c *CBOR) Marshal(v any) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c *CBOR) NewEncoder(w io.Writer) Encoder {
	return c.encMode.NewEncoder(w)
}

func (c *CBOR) Unmarshal(data []byte, dst any) error {
	return c.decMode.Unmarshal(data, dst)
}

func (c *CBOR) NewDecoder(r io.Reader) Decoder {
	return c.decMode.NewDecoder(r)
}
