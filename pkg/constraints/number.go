package constraints

import (
	"math"
	"strconv"
)

// NumberConstraint formats numeric values with a fixed number of decimals.
// Decimals < 0 keeps the shortest representation.
type NumberConstraint struct {
	Decimals int
}

func NewNumberConstraint(decimals int) *NumberConstraint {
	return &NumberConstraint{Decimals: decimals}
}

func (c *NumberConstraint) Type() ConstraintType { return TypeNumber }

func (c *NumberConstraint) CreateDataValue(value any, _ *ConstraintData) DataValue {
	return &NumberDataValue{value: value, decimals: c.Decimals}
}

type NumberDataValue struct {
	value    any
	decimals int
}

func (v *NumberDataValue) Format() string {
	num, ok := ToNumber(v.value)
	if !ok {
		return toString(v.value)
	}
	if v.decimals < 0 {
		return strconv.FormatFloat(num, 'f', -1, 64)
	}
	return strconv.FormatFloat(num, 'f', v.decimals, 64)
}

func (v *NumberDataValue) Preview() string { return v.Format() }

func (v *NumberDataValue) CompareTo(other DataValue) int {
	return compareAny(v.Serialize(), other.Serialize())
}

func (v *NumberDataValue) Serialize() any { return v.value }

// ToNumber coerces scalar values and numeric strings to float64.
func ToNumber(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// IsInteger reports whether value is numeric with no fractional part.
func IsInteger(value any) bool {
	num, ok := ToNumber(value)
	if !ok {
		return false
	}
	return num == math.Trunc(num)
}
