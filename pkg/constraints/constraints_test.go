package constraints

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
		ok    bool
	}{
		{"int", 42, 42, true},
		{"int64", int64(-7), -7, true},
		{"uint8", uint8(255), 255, true},
		{"float64", 1.5, 1.5, true},
		{"float32", float32(2.5), 2.5, true},
		{"numeric string", "3.25", 3.25, true},
		{"integer string", "10", 10, true},
		{"text", "abc", 0, false},
		{"nil", nil, 0, false},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.value)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestIsInteger(t *testing.T) {
	assert.True(t, IsInteger(5))
	assert.True(t, IsInteger(5.0))
	assert.True(t, IsInteger("5"))
	assert.False(t, IsInteger(5.5))
	assert.False(t, IsInteger("5.5"))
	assert.False(t, IsInteger("text"))
	assert.False(t, IsInteger(nil))
}

func TestNumberConstraintFormat(t *testing.T) {
	assert.Equal(t, "1.50", NewNumberConstraint(2).CreateDataValue(1.5, nil).Format())
	assert.Equal(t, "2", NewNumberConstraint(0).CreateDataValue(1.5, nil).Format())
	assert.Equal(t, "1.5", NewNumberConstraint(-1).CreateDataValue(1.5, nil).Format())
	assert.Equal(t, "3.25", NewNumberConstraint(-1).CreateDataValue("3.25", nil).Format())
	assert.Equal(t, "text", NewNumberConstraint(2).CreateDataValue("text", nil).Format())
}

func TestNumberCompare(t *testing.T) {
	c := NewNumberConstraint(-1)
	two := c.CreateDataValue(2, nil)
	ten := c.CreateDataValue(10, nil)

	assert.Negative(t, two.CompareTo(ten))
	assert.Positive(t, ten.CompareTo(two))
	assert.Zero(t, two.CompareTo(c.CreateDataValue("2", nil)))
}

func TestPercentageFormat(t *testing.T) {
	assert.Equal(t, "16.67%", NewPercentageConstraint(2).CreateDataValue(1.0/6, nil).Format())
	assert.Equal(t, "50%", NewPercentageConstraint(0).CreateDataValue(0.5, nil).Format())
	assert.Equal(t, "", NewPercentageConstraint(2).CreateDataValue(nil, nil).Format())
	assert.Equal(t, "n/a", NewPercentageConstraint(2).CreateDataValue("n/a", nil).Format())
}

func TestDateTimeFormat(t *testing.T) {
	moment := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	c := NewDateTimeConstraint("")

	assert.Equal(t, "2024-05-01 10:30", c.CreateDataValue(moment, nil).Format())
	assert.Equal(t, "2024-05-01 10:30", c.CreateDataValue(&moment, nil).Format())
	assert.Equal(t, "2024-05-01 10:30", c.CreateDataValue(moment.UnixMilli(), nil).Format())
	assert.Equal(t, "not a date", c.CreateDataValue("not a date", nil).Format())

	var nilTime *time.Time
	assert.Equal(t, "<nil>", NewDateTimeConstraint("2006").CreateDataValue(nilTime, nil).Format())
}

func TestDateTimeCompare(t *testing.T) {
	c := NewDateTimeConstraint("")
	earlier := c.CreateDataValue(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	later := c.CreateDataValue(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), nil)

	assert.Negative(t, earlier.CompareTo(later))
	assert.Positive(t, later.CompareTo(earlier))
	assert.Zero(t, earlier.CompareTo(earlier))
}

func TestUnknownConstraint(t *testing.T) {
	c := NewUnknownConstraint()

	assert.Equal(t, "hello", c.CreateDataValue("hello", nil).Format())
	assert.Equal(t, "1.5", c.CreateDataValue(1.5, nil).Format())
	assert.Equal(t, "", c.CreateDataValue(nil, nil).Format())

	// Numeric when both sides parse, lexicographic otherwise.
	assert.Negative(t, c.CreateDataValue("2", nil).CompareTo(c.CreateDataValue("10", nil)))
	assert.Negative(t, c.CreateDataValue("apple", nil).CompareTo(c.CreateDataValue("banana", nil)))
	assert.Positive(t, c.CreateDataValue("2x", nil).CompareTo(c.CreateDataValue("10x", nil)))
}
