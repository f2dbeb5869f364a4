package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeer/lumeer.go/pkg/store"
)

func TestPendingColumnValues(t *testing.T) {
	p := store.NewPendingColumnValues()
	p.Set("col1", "row1", "a")
	p.Set("col1", "row2", "b")
	p.Set("col2", "row1", "x")

	got, ok := p.Get("col1", "row1")
	require.True(t, ok)
	assert.Equal(t, "a", got)
	assert.Equal(t, 3, p.Len())

	// Re-editing the same slot keeps the latest value only.
	p.Set("col1", "row1", "a2")
	got, _ = p.Get("col1", "row1")
	assert.Equal(t, "a2", got)
	assert.Equal(t, 3, p.Len())
}

func TestPendingColumnValuesDrain(t *testing.T) {
	p := store.NewPendingColumnValues()
	p.Set("col1", "row1", 1)
	p.Set("col1", "row2", 2)
	p.Set("col2", "row1", 3)

	drained := p.Drain("col1")
	assert.Len(t, drained, 2)
	byRow := map[string]any{}
	for _, v := range drained {
		byRow[v.Row] = v.Value
	}
	assert.Equal(t, map[string]any{"row1": 1, "row2": 2}, byRow)

	_, ok := p.Get("col1", "row1")
	assert.False(t, ok, "drained edits are gone")
	assert.Equal(t, 1, p.Len(), "other columns keep their edits")

	assert.Empty(t, p.Drain("col1"), "second drain finds nothing")
}
