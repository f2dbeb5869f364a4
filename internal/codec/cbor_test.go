package codec

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID      string         `cbor:"id"`
	Data    map[string]any `cbor:"data,omitempty"`
	Updated time.Time      `cbor:"updated"`
}

func TestRoundTrip(t *testing.T) {
	wire := NewCBOR()
	in := payload{
		ID:      "d1",
		Data:    map[string]any{"name": "first", "count": 3},
		Updated: time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC),
	}

	raw, err := wire.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, wire.Unmarshal(raw, &out))
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, "first", out.Data["name"])
	assert.EqualValues(t, 3, out.Data["count"])
	assert.True(t, in.Updated.Equal(out.Updated))
}

func TestTimeSurvivesSubSecondPrecision(t *testing.T) {
	wire := NewCBOR()
	in := time.Date(2024, 5, 17, 10, 30, 0, 123456789, time.UTC)

	raw, err := wire.Marshal(in)
	require.NoError(t, err)

	var out time.Time
	require.NoError(t, wire.Unmarshal(raw, &out))
	assert.WithinDuration(t, in, out, time.Millisecond)
}

func TestDeterministicEncoding(t *testing.T) {
	wire := NewCBOR()
	in := map[string]int{"b": 2, "a": 1, "c": 3}

	first, err := wire.Marshal(in)
	require.NoError(t, err)
	second, err := wire.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStreamEncoderDecoder(t *testing.T) {
	wire := NewCBOR()
	var buf bytes.Buffer

	enc := wire.NewEncoder(&buf)
	require.NoError(t, enc.Encode(payload{ID: "d1"}))
	require.NoError(t, enc.Encode(payload{ID: "d2"}))

	dec := wire.NewDecoder(&buf)
	var first, second payload
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "d1", first.ID)
	assert.Equal(t, "d2", second.ID)
}
