// Package constraints implements the value formatting capability the platform
// attaches to attributes. A Constraint turns a raw attribute value into a
// DataValue that knows how to render itself and how to compare against other
// values of the same constraint.
package constraints

// ConstraintType identifies the kind of formatting a constraint performs.
type ConstraintType string

const (
	TypeUnknown    ConstraintType = "Unknown"
	TypeNumber     ConstraintType = "Number"
	TypePercentage ConstraintType = "Percentage"
	TypeDateTime   ConstraintType = "DateTime"
)

// ConstraintData carries environment info formatting may depend on, such as
// the locale currency. It is shared across all constraints of a view.
type ConstraintData struct {
	Locale       string
	CurrencyCode string
}

// DataValue is a raw value bound to its constraint, ready to be rendered or
// compared.
type DataValue interface {
	// Format renders the value for display.
	Format() string
	// Preview renders the value for compact display. Most constraints
	// preview the same way they format.
	Preview() string
	// CompareTo orders this value against another value of the same
	// constraint: negative when this sorts first, positive when other does.
	CompareTo(other DataValue) int
	// Serialize returns the raw value suitable for storage.
	Serialize() any
}

// Constraint creates DataValues for raw attribute values.
type Constraint interface {
	Type() ConstraintType
	CreateDataValue(value any, data *ConstraintData) DataValue
}
