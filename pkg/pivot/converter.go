package pivot

// Converter turns pivot stem data into renderable tables. It carries only
// immutable configuration; every Transform call builds its own conversion
// context, so a single Converter is safe for concurrent use.
type Converter struct {
	summaryLabel string
}

const defaultSummaryLabel = "Summary"

type Option func(*Converter)

// WithSummaryLabel overrides the label of the level-0 (grand total) summary
// header.
func WithSummaryLabel(label string) Option {
	return func(c *Converter) {
		c.summaryLabel = label
	}
}

func NewConverter(opts ...Option) *Converter {
	c := &Converter{summaryLabel: defaultSummaryLabel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform converts every stem into one table. Empty stems produce empty
// tables rather than errors; the engine degrades on sparse input.
func (c *Converter) Transform(data *Data) []*Table {
	if data == nil {
		return nil
	}
	tables := make([]*Table, 0, len(data.Stems))
	for i := range data.Stems {
		tables = append(tables, c.transformStem(&data.Stems[i]))
	}
	return tables
}

func (c *Converter) transformStem(stem *StemData) *Table {
	if len(stem.RowHeaders) == 0 && len(stem.ColumnHeaders) == 0 && len(stem.Values) == 0 {
		return &Table{Cells: [][]*Cell{}}
	}

	sorted := *stem
	sorted.RowHeaders = sortHeaders(stem, stem.RowHeaders, stem.RowSorts, stem.ColumnHeaders, true)
	sorted.ColumnHeaders = sortHeaders(stem, stem.ColumnHeaders, stem.ColumnSorts, stem.RowHeaders, false)

	ctx := newConversion(c, &sorted)
	ctx.fillHeaders()
	ctx.fillValues()
	return &Table{Cells: ctx.cells}
}

// conversion holds all per-call scratch state of one stem transformation.
type conversion struct {
	converter *Converter
	stem      *StemData

	rowLevels    int
	colLevels    int
	dataRowCount int
	dataColCount int

	cells [][]*Cell

	// leaf target index -> grid row / column
	rowLeafCells map[int]int
	colLeafCells map[int]int

	rowGroups []summaryGroup
	colGroups []summaryGroup

	totals *seriesTotals
}

// summaryGroup records one synthetic summary row/column and the leaf target
// indexes it aggregates.
type summaryGroup struct {
	gridIndex int
	level     int
	targets   []int
}

func newConversion(converter *Converter, stem *StemData) *conversion {
	ctx := &conversion{
		converter:    converter,
		stem:         stem,
		rowLevels:    forestDepth(stem.RowHeaders),
		colLevels:    forestDepth(stem.ColumnHeaders),
		rowLeafCells: map[int]int{},
		colLeafCells: map[int]int{},
	}

	switch {
	case len(stem.RowHeaders) > 0:
		ctx.dataRowCount = countWithSums(stem.RowHeaders, stem.RowShowSums, 0)
	case len(stem.Values) > 0:
		ctx.dataRowCount = len(stem.Values)
	case ctx.colLevels > 0:
		ctx.dataRowCount = 1
	}

	switch {
	case len(stem.ColumnHeaders) > 0:
		ctx.dataColCount = countWithSums(stem.ColumnHeaders, stem.ColumnShowSums, 0)
	case maxRowWidth(stem.Values) > 0:
		ctx.dataColCount = maxRowWidth(stem.Values)
	case ctx.rowLevels > 0:
		ctx.dataColCount = 1
	}

	rows := ctx.colLevels + ctx.dataRowCount
	cols := ctx.rowLevels + ctx.dataColCount
	ctx.cells = make([][]*Cell, rows)
	for r := range ctx.cells {
		ctx.cells[r] = make([]*Cell, cols)
	}
	return ctx
}

func forestDepth(headers []DataHeader) int {
	depth := 0
	for i := range headers {
		d := 1
		if len(headers[i].Children) > 0 {
			d = 1 + forestDepth(headers[i].Children)
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// countWithSums counts the data rows/columns a header forest occupies,
// including the summary slots requested per level.
func countWithSums(headers []DataHeader, sums []bool, level int) int {
	count := 0
	for i := range headers {
		if len(headers[i].Children) == 0 {
			count++
		} else {
			count += countWithSums(headers[i].Children, sums, level+1)
		}
	}
	if showSumsAt(sums, level) {
		count++
	}
	return count
}

func maxRowWidth(values [][]any) int {
	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func (ctx *conversion) fillHeaders() {
	// The top-left rectangle reserved for the header intersection.
	for r := 0; r < ctx.colLevels; r++ {
		for c := 0; c < ctx.rowLevels; c++ {
			ctx.cells[r][c] = &Cell{RowSpan: 1, ColSpan: 1, Type: CellTypeEmpty}
		}
	}

	if len(ctx.stem.RowHeaders) > 0 {
		ctx.fillRowHeaders(ctx.stem.RowHeaders, 0, ctx.colLevels, "")
	} else {
		for i := 0; i < ctx.dataRowCount; i++ {
			ctx.rowLeafCells[i] = ctx.colLevels + i
		}
	}

	if len(ctx.stem.ColumnHeaders) > 0 {
		ctx.fillColumnHeaders(ctx.stem.ColumnHeaders, 0, ctx.rowLevels, "")
	} else {
		for i := 0; i < ctx.dataColCount; i++ {
			ctx.colLeafCells[i] = ctx.rowLevels + i
		}
	}
}

// fillRowHeaders walks one level of the row header forest, writing header
// cells and the trailing summary slot when the level requests sums. It
// returns the next free grid row and the leaf target indexes it covered.
func (ctx *conversion) fillRowHeaders(headers []DataHeader, level, gridRow int, parentTitle string) (int, []int) {
	var leaves []int
	for i := range headers {
		h := &headers[i]
		if len(h.Children) == 0 {
			ctx.setRowHeaderCell(gridRow, level, 1, ctx.rowLevels-level,
				h.Title, CellTypeHeader, headerBackground(h.Color, level))
			if h.TargetIndex != nil {
				ctx.rowLeafCells[*h.TargetIndex] = gridRow
				leaves = append(leaves, *h.TargetIndex)
			}
			gridRow++
			continue
		}
		span := countWithSums(h.Children, ctx.stem.RowShowSums, level+1)
		ctx.setRowHeaderCell(gridRow, level, span, 1,
			h.Title, CellTypeHeader, headerBackground(h.Color, level))
		_, childLeaves := ctx.fillRowHeaders(h.Children, level+1, gridRow, h.Title)
		gridRow += span
		leaves = append(leaves, childLeaves...)
	}

	if showSumsAt(ctx.stem.RowShowSums, level) {
		title := parentTitle
		if level == 0 {
			title = ctx.converter.summaryLabel
		}
		ctx.setRowHeaderCell(gridRow, level, 1, ctx.rowLevels-level,
			title, CellTypeGroupHeader, groupHeaderColor(level))
		ctx.rowGroups = append(ctx.rowGroups, summaryGroup{
			gridIndex: gridRow,
			level:     level,
			targets:   append([]int(nil), leaves...),
		})
		gridRow++
	}
	return gridRow, leaves
}

func (ctx *conversion) fillColumnHeaders(headers []DataHeader, level, gridCol int, parentTitle string) (int, []int) {
	var leaves []int
	for i := range headers {
		h := &headers[i]
		if len(h.Children) == 0 {
			ctx.setCell(level, gridCol, &Cell{
				Value:      h.Title,
				RowSpan:    ctx.colLevels - level,
				ColSpan:    1,
				Type:       CellTypeHeader,
				Background: headerBackground(h.Color, level),
			})
			if h.TargetIndex != nil {
				ctx.colLeafCells[*h.TargetIndex] = gridCol
				leaves = append(leaves, *h.TargetIndex)
			}
			gridCol++
			continue
		}
		span := countWithSums(h.Children, ctx.stem.ColumnShowSums, level+1)
		ctx.setCell(level, gridCol, &Cell{
			Value:      h.Title,
			RowSpan:    1,
			ColSpan:    span,
			Type:       CellTypeHeader,
			Background: headerBackground(h.Color, level),
		})
		_, childLeaves := ctx.fillColumnHeaders(h.Children, level+1, gridCol, h.Title)
		gridCol += span
		leaves = append(leaves, childLeaves...)
	}

	if showSumsAt(ctx.stem.ColumnShowSums, level) {
		title := parentTitle
		if level == 0 {
			title = ctx.converter.summaryLabel
		}
		ctx.setCell(level, gridCol, &Cell{
			Value:      title,
			RowSpan:    ctx.colLevels - level,
			ColSpan:    1,
			Type:       CellTypeGroupHeader,
			Background: groupHeaderColor(level),
		})
		ctx.colGroups = append(ctx.colGroups, summaryGroup{
			gridIndex: gridCol,
			level:     level,
			targets:   append([]int(nil), leaves...),
		})
		gridCol++
	}
	return gridCol, leaves
}

// setRowHeaderCell writes a row-axis header cell, splitting it at the sticky
// boundary when its column span would cross from the sticky levels into the
// non-sticky ones. Downstream sticky rendering cannot span that divide.
func (ctx *conversion) setRowHeaderCell(gridRow, level, rowSpan, colSpan int, value string, cellType CellType, background string) {
	sticky := ctx.stem.StickyRowLevels
	if colSpan > 1 && sticky > level && sticky < level+colSpan && sticky < ctx.rowLevels {
		first := sticky - level
		ctx.setCell(gridRow, level, &Cell{
			Value:      value,
			RowSpan:    rowSpan,
			ColSpan:    first,
			Type:       cellType,
			Background: background,
		})
		ctx.setCell(gridRow, sticky, &Cell{
			Value:      value,
			RowSpan:    rowSpan,
			ColSpan:    colSpan - first,
			Type:       cellType,
			Background: background,
		})
		return
	}
	ctx.setCell(gridRow, level, &Cell{
		Value:      value,
		RowSpan:    rowSpan,
		ColSpan:    colSpan,
		Type:       cellType,
		Background: background,
	})
}

func (ctx *conversion) setCell(row, col int, cell *Cell) {
	if row < 0 || row >= len(ctx.cells) || col < 0 || col >= len(ctx.cells[row]) {
		return
	}
	ctx.cells[row][col] = cell
}

func (ctx *conversion) fillValues() {
	ctx.totals = computeSeriesTotals(ctx.stem)

	rowTargets := sortedKeys(ctx.rowLeafCells)
	colTargets := sortedKeys(ctx.colLeafCells)

	for _, r := range rowTargets {
		for _, c := range colTargets {
			ctx.setCell(ctx.rowLeafCells[r], ctx.colLeafCells[c], &Cell{
				Value:         ctx.formatCellValue([]int{r}, []int{c}),
				RowSpan:       1,
				ColSpan:       1,
				Type:          CellTypeValue,
				DataResources: ctx.cellDataResources([]int{r}, []int{c}),
			})
		}
	}

	for _, group := range ctx.rowGroups {
		for _, c := range colTargets {
			ctx.setCell(group.gridIndex, ctx.colLeafCells[c], &Cell{
				Value:         ctx.formatCellValue(group.targets, []int{c}),
				RowSpan:       1,
				ColSpan:       1,
				Type:          CellTypeGroupValue,
				Background:    groupValueColor(group.level),
				DataResources: ctx.cellDataResources(group.targets, []int{c}),
			})
		}
	}

	for _, group := range ctx.colGroups {
		for _, r := range rowTargets {
			ctx.setCell(ctx.rowLeafCells[r], group.gridIndex, &Cell{
				Value:         ctx.formatCellValue([]int{r}, group.targets),
				RowSpan:       1,
				ColSpan:       1,
				Type:          CellTypeGroupValue,
				Background:    groupValueColor(group.level),
				DataResources: ctx.cellDataResources([]int{r}, group.targets),
			})
		}
	}

	for _, rowGroup := range ctx.rowGroups {
		for _, colGroup := range ctx.colGroups {
			background := groupValueColor(minInt(rowGroup.level, colGroup.level))
			if rowGroup.level == 0 && colGroup.level == 0 {
				background = grandTotalColor
			}
			ctx.setCell(rowGroup.gridIndex, colGroup.gridIndex, &Cell{
				Value:         ctx.formatCellValue(rowGroup.targets, colGroup.targets),
				RowSpan:       1,
				ColSpan:       1,
				Type:          CellTypeGroupValue,
				Background:    background,
				DataResources: ctx.cellDataResources(rowGroup.targets, colGroup.targets),
			})
		}
	}
}
