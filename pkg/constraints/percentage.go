package constraints

import "strconv"

// PercentageConstraint formats a fraction (0..1) as a percentage.
type PercentageConstraint struct {
	Decimals int
}

func NewPercentageConstraint(decimals int) *PercentageConstraint {
	return &PercentageConstraint{Decimals: decimals}
}

func (c *PercentageConstraint) Type() ConstraintType { return TypePercentage }

func (c *PercentageConstraint) CreateDataValue(value any, _ *ConstraintData) DataValue {
	return &PercentageDataValue{value: value, decimals: c.Decimals}
}

type PercentageDataValue struct {
	value    any
	decimals int
}

func (v *PercentageDataValue) Format() string {
	if v.value == nil {
		return ""
	}
	num, ok := ToNumber(v.value)
	if !ok {
		return toString(v.value)
	}
	return strconv.FormatFloat(num*100, 'f', v.decimals, 64) + "%"
}

func (v *PercentageDataValue) Preview() string { return v.Format() }

func (v *PercentageDataValue) CompareTo(other DataValue) int {
	return compareAny(v.Serialize(), other.Serialize())
}

func (v *PercentageDataValue) Serialize() any { return v.value }
