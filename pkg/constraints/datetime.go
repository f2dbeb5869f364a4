package constraints

import "time"

// DateTimeConstraint formats time values using a Go time layout.
type DateTimeConstraint struct {
	Layout string
}

func NewDateTimeConstraint(layout string) *DateTimeConstraint {
	if layout == "" {
		layout = "2006-01-02 15:04"
	}
	return &DateTimeConstraint{Layout: layout}
}

func (c *DateTimeConstraint) Type() ConstraintType { return TypeDateTime }

func (c *DateTimeConstraint) CreateDataValue(value any, _ *ConstraintData) DataValue {
	return &DateTimeDataValue{value: value, layout: c.Layout}
}

type DateTimeDataValue struct {
	value  any
	layout string
}

func (v *DateTimeDataValue) asTime() (time.Time, bool) {
	switch t := v.value.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	default:
		// Epoch milliseconds arriving from the wire.
		if ms, ok := ToNumber(v.value); ok {
			return time.UnixMilli(int64(ms)).UTC(), true
		}
		return time.Time{}, false
	}
}

func (v *DateTimeDataValue) Format() string {
	t, ok := v.asTime()
	if !ok {
		return toString(v.value)
	}
	return t.Format(v.layout)
}

func (v *DateTimeDataValue) Preview() string { return v.Format() }

func (v *DateTimeDataValue) CompareTo(other DataValue) int {
	t1, ok1 := v.asTime()
	o, isDate := other.(*DateTimeDataValue)
	if !ok1 || !isDate {
		return compareAny(v.Serialize(), other.Serialize())
	}
	t2, ok2 := o.asTime()
	if !ok2 {
		return compareAny(v.Serialize(), other.Serialize())
	}
	switch {
	case t1.Before(t2):
		return -1
	case t1.After(t2):
		return 1
	default:
		return 0
	}
}

func (v *DateTimeDataValue) Serialize() any { return v.value }
