package scripting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlock struct {
	id          string
	visibility  BlockVisibility
	registerErr error

	registered []BlockContext
	workspaces []any
}

func (b *fakeBlock) ID() string                  { return b.id }
func (b *fakeBlock) Visibility() BlockVisibility { return b.visibility }

func (b *fakeBlock) RegisterBlock(ctx BlockContext) error {
	b.registered = append(b.registered, ctx)
	return b.registerErr
}

func (b *fakeBlock) OnWorkspaceChange(workspace any) {
	b.workspaces = append(b.workspaces, workspace)
}

func ids(blocks []Block) []string {
	var out []string
	for _, block := range blocks {
		out = append(out, block.ID())
	}
	return out
}

func TestVisibleFiltersByPlacement(t *testing.T) {
	registry := NewRegistry(
		&fakeBlock{id: "everywhere", visibility: VisibilityAll},
		&fakeBlock{id: "doc-only", visibility: VisibilityDocument},
		&fakeBlock{id: "link-only", visibility: VisibilityLink},
		&fakeBlock{id: "internal", visibility: VisibilityHidden},
	)

	assert.Equal(t, []string{"everywhere", "doc-only"}, ids(registry.Visible(VisibilityDocument)))
	assert.Equal(t, []string{"everywhere", "link-only"}, ids(registry.Visible(VisibilityLink)))
	assert.Equal(t, []string{"everywhere", "doc-only", "link-only"}, ids(registry.Visible(VisibilityAll)),
		"hidden blocks never appear, even in the full listing")
}

func TestAddAppends(t *testing.T) {
	registry := NewRegistry()
	assert.Empty(t, registry.Visible(VisibilityAll))

	registry.Add(&fakeBlock{id: "late", visibility: VisibilityAll})
	assert.Equal(t, []string{"late"}, ids(registry.Visible(VisibilityAll)))
}

func TestRegisterAllSkipsHidden(t *testing.T) {
	visible := &fakeBlock{id: "visible", visibility: VisibilityDocument}
	hidden := &fakeBlock{id: "internal", visibility: VisibilityHidden}
	registry := NewRegistry(visible, hidden)

	ctx := BlockContext{
		CollectionIDs: []string{"c1"},
		Attributes:    map[string][]string{"c1": {"a1", "a2"}},
	}
	require.NoError(t, registry.RegisterAll(ctx))

	require.Len(t, visible.registered, 1)
	assert.Equal(t, ctx, visible.registered[0])
	assert.Empty(t, hidden.registered)
}

func TestRegisterAllStopsOnError(t *testing.T) {
	boom := errors.New("editor rejected block")
	first := &fakeBlock{id: "first", visibility: VisibilityAll}
	failing := &fakeBlock{id: "failing", visibility: VisibilityAll, registerErr: boom}
	never := &fakeBlock{id: "never", visibility: VisibilityAll}
	registry := NewRegistry(first, failing, never)

	assert.ErrorIs(t, registry.RegisterAll(BlockContext{}), boom)
	assert.Len(t, first.registered, 1)
	assert.Empty(t, never.registered)
}
