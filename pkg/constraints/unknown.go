package constraints

import (
	"fmt"
	"strconv"
	"strings"
)

// UnknownConstraint is the fallback for attributes with no configured
// constraint. It passes values through and compares numerically when both
// sides are numeric, lexicographically otherwise.
type UnknownConstraint struct{}

func NewUnknownConstraint() *UnknownConstraint { return &UnknownConstraint{} }

func (c *UnknownConstraint) Type() ConstraintType { return TypeUnknown }

func (c *UnknownConstraint) CreateDataValue(value any, _ *ConstraintData) DataValue {
	return &UnknownDataValue{value: value}
}

type UnknownDataValue struct {
	value any
}

func (v *UnknownDataValue) Format() string { return toString(v.value) }

func (v *UnknownDataValue) Preview() string { return v.Format() }

func (v *UnknownDataValue) CompareTo(other DataValue) int {
	return compareAny(v.value, other.Serialize())
}

func (v *UnknownDataValue) Serialize() any { return v.value }

func toString(value any) string {
	switch s := value.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func compareAny(a, b any) int {
	an, aok := ToNumber(a)
	bn, bok := ToNumber(b)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(toString(a), toString(b))
}
