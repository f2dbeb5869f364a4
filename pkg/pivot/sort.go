package pivot

import (
	"sort"

	"github.com/lumeer/lumeer.go/pkg/constraints"
)

// sortHeaders orders one header forest by the per-level sort specs. Sorting
// is recursive and stable: each level is ordered first, then every header's
// children are sorted independently, so ordering never crosses parent
// boundaries. An unresolvable sort (unknown value title, opposite path with
// no match) leaves that level in declared order.
func sortHeaders(stem *StemData, headers []DataHeader, sorts []*Sort, opposite []DataHeader, isRows bool) []DataHeader {
	if len(headers) == 0 || len(sorts) == 0 {
		return headers
	}
	// When multiple value series were auto-promoted to a pseudo header
	// level, those headers stay in declared order.
	if !isRows && mirrorsValueTitles(headers, stem.ValueTitles) {
		return headers
	}
	return sortHeadersLevel(stem, headers, sorts, opposite, isRows, 0)
}

func sortHeadersLevel(stem *StemData, headers []DataHeader, sorts []*Sort, opposite []DataHeader, isRows bool, level int) []DataHeader {
	sorted := append([]DataHeader(nil), headers...)

	if level < len(sorts) && sorts[level] != nil {
		spec := sorts[level]
		compare := headerComparator(stem, sorted, spec, opposite, isRows)
		if compare != nil {
			sort.SliceStable(sorted, func(i, j int) bool {
				result := compare(&sorted[i], &sorted[j])
				if spec.Descending {
					result = -result
				}
				return result < 0
			})
		}
	}

	for i := range sorted {
		if len(sorted[i].Children) > 0 {
			sorted[i].Children = sortHeadersLevel(stem, sorted[i].Children, sorts, opposite, isRows, level+1)
		}
	}
	return sorted
}

func mirrorsValueTitles(headers []DataHeader, valueTitles []string) bool {
	if len(valueTitles) < 2 || len(headers) != len(valueTitles) {
		return false
	}
	for i := range headers {
		if headers[i].Title != valueTitles[i] {
			return false
		}
	}
	return true
}

// headerComparator builds the comparison for one level, or nil when the sort
// target cannot be resolved.
func headerComparator(stem *StemData, headers []DataHeader, spec *Sort, opposite []DataHeader, isRows bool) func(a, b *DataHeader) int {
	if spec.ValueTitle == "" && !spec.BySummary && len(spec.Path) == 0 {
		constraint := levelConstraint(headers)
		data := stem.ConstraintData
		return func(a, b *DataHeader) int {
			return constraint.CreateDataValue(a.Title, data).
				CompareTo(constraint.CreateDataValue(b.Title, data))
		}
	}

	targets := resolveSortTargets(stem, spec, opposite, isRows)
	if targets == nil {
		return nil
	}
	return func(a, b *DataHeader) int {
		keyA := sortKey(stem, a, targets, isRows)
		keyB := sortKey(stem, b, targets, isRows)
		switch {
		case keyA < keyB:
			return -1
		case keyA > keyB:
			return 1
		default:
			return 0
		}
	}
}

func levelConstraint(headers []DataHeader) constraints.Constraint {
	for i := range headers {
		if headers[i].Constraint != nil {
			return headers[i].Constraint
		}
	}
	return constraints.NewUnknownConstraint()
}

// resolveSortTargets finds the opposite-axis leaf target indexes a value sort
// aggregates over. It returns nil when any path segment fails to match, which
// degrades to no sort for the level.
func resolveSortTargets(stem *StemData, spec *Sort, opposite []DataHeader, isRows bool) []int {
	var targets []int

	switch {
	case spec.BySummary || len(spec.Path) == 0:
		targets = forestLeafTargets(opposite)
		if len(opposite) == 0 {
			targets = implicitTargets(stem, isRows)
		}
	default:
		nodes := opposite
		var matched *DataHeader
		for _, segment := range spec.Path {
			matched = nil
			for i := range nodes {
				if nodes[i].Title == segment {
					matched = &nodes[i]
					break
				}
			}
			if matched == nil {
				return nil
			}
			nodes = matched.Children
		}
		targets = headerLeafTargets(matched)
	}

	// The value series restriction only applies on the column axis, where
	// series interleave the leaf columns.
	if isRows && spec.ValueTitle != "" && stem.seriesCount() > 0 {
		series := -1
		for i, title := range stem.ValueTitles {
			if title == spec.ValueTitle {
				series = i
				break
			}
		}
		if series < 0 {
			return nil
		}
		var filtered []int
		for _, c := range targets {
			if stem.seriesOf(c) == series {
				filtered = append(filtered, c)
			}
		}
		targets = filtered
	}
	if len(targets) == 0 {
		return nil
	}
	return targets
}

func implicitTargets(stem *StemData, isRows bool) []int {
	count := len(stem.Values)
	if isRows {
		count = maxRowWidth(stem.Values)
	}
	targets := make([]int, count)
	for i := range targets {
		targets[i] = i
	}
	return targets
}

// sortKey sums the values a header subtree covers at the resolved opposite
// targets.
func sortKey(stem *StemData, header *DataHeader, targets []int, isRows bool) float64 {
	key := 0.0
	for _, own := range headerLeafTargets(header) {
		for _, other := range targets {
			row, col := own, other
			if !isRows {
				row, col = other, own
			}
			if raw, ok := stem.valueAt(row, col); ok {
				if num, numeric := constraints.ToNumber(raw); numeric {
					key += num
				}
			}
		}
	}
	return key
}

func headerLeafTargets(header *DataHeader) []int {
	if header == nil {
		return nil
	}
	if len(header.Children) == 0 {
		if header.TargetIndex == nil {
			return nil
		}
		return []int{*header.TargetIndex}
	}
	return forestLeafTargets(header.Children)
}

func forestLeafTargets(headers []DataHeader) []int {
	var targets []int
	for i := range headers {
		targets = append(targets, headerLeafTargets(&headers[i])...)
	}
	return targets
}
