// Package scripting defines the seam between the SDK and the visual
// automation-rule editor. The third-party editor widget stays entirely behind
// ScriptBlockCatalog; the SDK only registers blocks and collects generated
// code.
package scripting

// BlockVisibility controls where the editor offers a block.
type BlockVisibility string

const (
	VisibilityAll      BlockVisibility = "all"
	VisibilityDocument BlockVisibility = "document"
	VisibilityLink     BlockVisibility = "link"
	VisibilityHidden   BlockVisibility = "hidden"
)

// BlockContext carries what a block needs at registration time.
type BlockContext struct {
	CollectionIDs []string
	LinkTypeIDs   []string
	Attributes    map[string][]string
}

// Block is one registrable editor block. Blocks are independent value
// objects in a flat registry, not a class hierarchy.
type Block interface {
	ID() string
	Visibility() BlockVisibility
	RegisterBlock(ctx BlockContext) error
	OnWorkspaceChange(workspace any)
}

// ScriptBlockCatalog is the capability the editor widget implements.
type ScriptBlockCatalog interface {
	RegisterBlock(ctx BlockContext) error
	GenerateCode(workspace any) (string, error)
}

// Registry is a flat list of blocks filtered by visibility.
type Registry struct {
	blocks []Block
}

func NewRegistry(blocks ...Block) *Registry {
	return &Registry{blocks: blocks}
}

func (r *Registry) Add(block Block) {
	r.blocks = append(r.blocks, block)
}

// Visible returns the blocks offered for the given visibility. VisibilityAll
// blocks appear everywhere except hidden listings.
func (r *Registry) Visible(visibility BlockVisibility) []Block {
	var visible []Block
	for _, block := range r.blocks {
		v := block.Visibility()
		if v == VisibilityHidden {
			continue
		}
		if v == visibility || v == VisibilityAll || visibility == VisibilityAll {
			visible = append(visible, block)
		}
	}
	return visible
}

// RegisterAll registers every non-hidden block with the editor.
func (r *Registry) RegisterAll(ctx BlockContext) error {
	for _, block := range r.blocks {
		if block.Visibility() == VisibilityHidden {
			continue
		}
		if err := block.RegisterBlock(ctx); err != nil {
			return err
		}
	}
	return nil
}
