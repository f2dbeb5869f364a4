package pivot

import "github.com/lumeer/lumeer.go/pkg/models"

// CellType classifies a table cell for rendering.
type CellType string

const (
	// CellTypeEmpty fills the top-left rectangle where the row and column
	// header regions intersect.
	CellTypeEmpty CellType = "empty"
	// CellTypeHeader is a row or column header, leaf or group.
	CellTypeHeader CellType = "header"
	// CellTypeGroupHeader labels a synthetic summary row or column.
	CellTypeGroupHeader CellType = "group-header"
	// CellTypeValue holds a formatted leaf value.
	CellTypeValue CellType = "value"
	// CellTypeGroupValue holds an aggregated value inside a summary row or
	// column.
	CellTypeGroupValue CellType = "group-value"
)

// Cell is one renderable cell of the pivot grid.
type Cell struct {
	Value      string
	RowSpan    int
	ColSpan    int
	Type       CellType
	Background string

	// DataResources are the records contributing to a value cell.
	DataResources []*models.DataResource
}

// Table is the converter output. Cells[r][c] is nil when that grid position
// is subsumed by the RowSpan/ColSpan of another cell.
type Table struct {
	Cells [][]*Cell
}
