// Package pivot implements the pivot table computation engine: it shapes
// nested row/column header trees plus a dense value matrix into a renderable
// grid of spanned cells with summary rows, aggregated values and background
// shading.
//
// The engine is pure: Transform keeps all scratch state in a per-call
// conversion context, so concurrent invocations never share mutable state.
package pivot

import (
	"github.com/lumeer/lumeer.go/pkg/constraints"
	"github.com/lumeer/lumeer.go/pkg/models"
)

// Aggregation selects how a summary cell combines the values it covers.
type Aggregation string

const (
	AggregationSum     Aggregation = "sum"
	AggregationMin     Aggregation = "min"
	AggregationMax     Aggregation = "max"
	AggregationAverage Aggregation = "avg"
	AggregationCount   Aggregation = "count"
	// AggregationJoin concatenates formatted values instead of computing a
	// number. Used for text series where summing is meaningless.
	AggregationJoin Aggregation = "join"
)

// ValueType changes what a displayed value is divided by.
type ValueType string

const (
	ValueTypeDefault          ValueType = ""
	ValueTypeAllPercentage    ValueType = "all"
	ValueTypeRowPercentage    ValueType = "row"
	ValueTypeColumnPercentage ValueType = "column"
)

// DataHeader is one node of a row or column header forest. A header is a leaf
// iff TargetIndex is set; leaves point into the value matrix.
type DataHeader struct {
	Title         string
	Children      []DataHeader
	TargetIndex   *int
	Color         string
	Constraint    constraints.Constraint
	AttributeName string
}

// IsLeaf reports whether the header addresses a value row/column directly.
func (h *DataHeader) IsLeaf() bool {
	return h.TargetIndex != nil && len(h.Children) == 0
}

// Sort describes the ordering of one header level. An empty ValueTitle sorts
// by header title through the header's constraint; otherwise headers are
// ordered by the aggregated value of the selected series, targeted either at
// the grand total across the opposite axis (BySummary) or at the opposite
// subtree reached by walking Path titles. The zero value sorts ascending.
type Sort struct {
	Descending bool
	ValueTitle string
	Path       []string
	BySummary  bool
}

// StemData is everything one pivot stem needs to become a table.
type StemData struct {
	RowHeaders    []DataHeader
	ColumnHeaders []DataHeader

	// ValueTitles names the configured value series. The column of a cell
	// decomposes as columnGroupIndex*len(ValueTitles) + seriesIndex.
	ValueTitles []string

	// Values is the dense matrix indexed by row-leaf and column-leaf
	// target indexes.
	Values [][]any

	// DataResources parallels Values with the records contributing to each
	// cell, kept for click-through provenance.
	DataResources [][][]*models.DataResource

	// RowShowSums / ColumnShowSums request a trailing summary row/column
	// per nesting level.
	RowShowSums    []bool
	ColumnShowSums []bool

	// StickyRowLevels is the number of leading row header levels rendered
	// sticky; header cells never span across the sticky boundary.
	StickyRowLevels int

	ValueTypes        []ValueType
	ValueAggregations []Aggregation
	ValueConstraints  []constraints.Constraint

	// RowSorts / ColumnSorts are indexed by header level; a nil entry
	// leaves that level in declared order.
	RowSorts    []*Sort
	ColumnSorts []*Sort

	ConstraintData *constraints.ConstraintData
}

// Data is the batched converter input, one entry per configured stem.
type Data struct {
	Stems []StemData
}

func (s *StemData) seriesCount() int {
	return len(s.ValueTitles)
}

func (s *StemData) aggregation(series int) Aggregation {
	if series < 0 || series >= len(s.ValueAggregations) {
		return AggregationSum
	}
	switch agg := s.ValueAggregations[series]; agg {
	case AggregationSum, AggregationMin, AggregationMax,
		AggregationAverage, AggregationCount, AggregationJoin:
		return agg
	default:
		return AggregationSum
	}
}

func (s *StemData) valueType(series int) ValueType {
	if series < 0 || series >= len(s.ValueTypes) {
		return ValueTypeDefault
	}
	return s.ValueTypes[series]
}

func (s *StemData) valueConstraint(series int) constraints.Constraint {
	if series < 0 || series >= len(s.ValueConstraints) {
		return nil
	}
	return s.ValueConstraints[series]
}

// seriesOf maps a leaf column target index to its value series.
func (s *StemData) seriesOf(column int) int {
	if count := s.seriesCount(); count > 0 {
		return column % count
	}
	return 0
}

func (s *StemData) valueAt(row, column int) (any, bool) {
	if row < 0 || row >= len(s.Values) {
		return nil, false
	}
	if column < 0 || column >= len(s.Values[row]) {
		return nil, false
	}
	return s.Values[row][column], true
}

func (s *StemData) dataResourcesAt(row, column int) []*models.DataResource {
	if row < 0 || row >= len(s.DataResources) {
		return nil
	}
	if column < 0 || column >= len(s.DataResources[row]) {
		return nil
	}
	return s.DataResources[row][column]
}

func showSumsAt(levels []bool, level int) bool {
	return level >= 0 && level < len(levels) && levels[level]
}
