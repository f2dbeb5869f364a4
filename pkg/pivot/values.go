package pivot

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lumeer/lumeer.go/pkg/constraints"
	"github.com/lumeer/lumeer.go/pkg/models"
)

// seriesTotals holds the divisor sums percentage value types divide by. They
// are computed once per transformation, before any cell is formatted.
type seriesTotals struct {
	// grand[s] is the sum of series s across the whole matrix.
	grand map[int]float64
	// row[r][s] is the sum of series s within value row r.
	row map[int]map[int]float64
	// column[c] is the sum of leaf column c down all value rows.
	column map[int]float64
}

func computeSeriesTotals(stem *StemData) *seriesTotals {
	totals := &seriesTotals{
		grand:  map[int]float64{},
		row:    map[int]map[int]float64{},
		column: map[int]float64{},
	}
	for r, rowValues := range stem.Values {
		for c, raw := range rowValues {
			num, ok := constraints.ToNumber(raw)
			if !ok {
				continue
			}
			series := stem.seriesOf(c)
			totals.grand[series] += num
			if totals.row[r] == nil {
				totals.row[r] = map[int]float64{}
			}
			totals.row[r][series] += num
			totals.column[c] += num
		}
	}
	return totals
}

// formatCellValue renders the cell covering the given leaf row and column
// target indexes. Single-cell and grouped formatting share the same divisor
// and aggregation semantics.
func (ctx *conversion) formatCellValue(rows, cols []int) string {
	if len(rows) == 0 || len(cols) == 0 {
		return ""
	}
	stem := ctx.stem
	series := stem.seriesOf(cols[0])
	aggregation := stem.aggregation(series)
	valueType := stem.valueType(series)

	raws := ctx.collectRaws(rows, cols)

	if valueType == ValueTypeDefault {
		if aggregation == AggregationJoin {
			return ctx.joinFormatted(raws, series)
		}
		if len(rows) == 1 && len(cols) == 1 {
			return ctx.formatSingle(raws, series)
		}
		return ctx.formatAggregate(aggregate(aggregation, raws), raws, series)
	}

	dividend := aggregate(aggregation, raws)
	if dividend == nil {
		return ""
	}
	divisor := ctx.percentageDivisor(valueType, rows, cols)
	ratio := 0.0
	if divisor != 0 {
		ratio = *dividend / divisor
	}
	value := constraints.NewPercentageConstraint(2).
		CreateDataValue(ratio, stem.ConstraintData)
	return value.Format()
}

// percentageDivisor nests divisors the same way numerators nest: a grouped
// cell divides by the sum of the per-row or per-column partial sums across
// the whole group.
func (ctx *conversion) percentageDivisor(valueType ValueType, rows, cols []int) float64 {
	stem := ctx.stem
	divisor := 0.0
	switch valueType {
	case ValueTypeAllPercentage:
		for _, series := range distinctSeries(stem, cols) {
			divisor += ctx.totals.grand[series]
		}
	case ValueTypeRowPercentage:
		seriesList := distinctSeries(stem, cols)
		for _, r := range rows {
			for _, series := range seriesList {
				divisor += ctx.totals.row[r][series]
			}
		}
	case ValueTypeColumnPercentage:
		for _, c := range cols {
			divisor += ctx.totals.column[c]
		}
	}
	return divisor
}

func distinctSeries(stem *StemData, cols []int) []int {
	seen := map[int]bool{}
	var list []int
	for _, c := range cols {
		series := stem.seriesOf(c)
		if !seen[series] {
			seen[series] = true
			list = append(list, series)
		}
	}
	return list
}

func (ctx *conversion) collectRaws(rows, cols []int) []any {
	var raws []any
	for _, r := range rows {
		for _, c := range cols {
			if raw, ok := ctx.stem.valueAt(r, c); ok {
				raws = append(raws, raw)
			}
		}
	}
	return raws
}

func (ctx *conversion) cellDataResources(rows, cols []int) []*models.DataResource {
	resources := []*models.DataResource{}
	for _, r := range rows {
		for _, c := range cols {
			resources = append(resources, ctx.stem.dataResourcesAt(r, c)...)
		}
	}
	return resources
}

// formatSingle renders one raw matrix value through the series constraint,
// falling back to a 2-decimal number for fractional values and to plain text
// otherwise.
func (ctx *conversion) formatSingle(raws []any, series int) string {
	if len(raws) == 0 || raws[0] == nil {
		return ""
	}
	raw := raws[0]
	if constraint := ctx.stem.valueConstraint(series); constraint != nil {
		return constraint.CreateDataValue(raw, ctx.stem.ConstraintData).Format()
	}
	if num, ok := constraints.ToNumber(raw); ok && !constraints.IsInteger(raw) {
		return strconv.FormatFloat(num, 'f', 2, 64)
	}
	return constraints.NewUnknownConstraint().
		CreateDataValue(raw, ctx.stem.ConstraintData).Format()
}

func (ctx *conversion) formatAggregate(num *float64, raws []any, series int) string {
	if num == nil {
		return ""
	}
	if constraint := ctx.stem.valueConstraint(series); constraint != nil {
		return constraint.CreateDataValue(*num, ctx.stem.ConstraintData).Format()
	}
	if anyNonInteger(raws) || !constraints.IsInteger(*num) {
		return strconv.FormatFloat(*num, 'f', 2, 64)
	}
	return strconv.FormatFloat(*num, 'f', -1, 64)
}

func anyNonInteger(raws []any) bool {
	for _, raw := range raws {
		if _, ok := constraints.ToNumber(raw); ok && !constraints.IsInteger(raw) {
			return true
		}
	}
	return false
}

func (ctx *conversion) joinFormatted(raws []any, series int) string {
	constraint := ctx.stem.valueConstraint(series)
	if constraint == nil {
		constraint = constraints.NewUnknownConstraint()
	}
	var parts []string
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		formatted := constraint.CreateDataValue(raw, ctx.stem.ConstraintData).Format()
		if formatted != "" {
			parts = append(parts, formatted)
		}
	}
	return strings.Join(parts, ", ")
}

// aggregate combines the numeric raws using the given aggregation. It returns
// nil when there is nothing to aggregate, which renders as an empty cell.
func aggregate(aggregation Aggregation, raws []any) *float64 {
	if aggregation == AggregationCount {
		count := 0.0
		for _, raw := range raws {
			if raw != nil {
				count++
			}
		}
		return &count
	}

	var nums []float64
	for _, raw := range raws {
		if num, ok := constraints.ToNumber(raw); ok {
			nums = append(nums, num)
		}
	}
	if len(nums) == 0 {
		return nil
	}

	result := nums[0]
	switch aggregation {
	case AggregationMin:
		for _, n := range nums[1:] {
			if n < result {
				result = n
			}
		}
	case AggregationMax:
		for _, n := range nums[1:] {
			if n > result {
				result = n
			}
		}
	case AggregationAverage:
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		result = sum / float64(len(nums))
	default: // sum
		result = 0
		for _, n := range nums {
			result += n
		}
	}
	return &result
}

func sortedKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
