package store

// PendingColumnValues tracks edits entered into a column whose backing
// attribute is still being created server-side. It belongs to the owning
// view's session, passed in rather than shared globally: created on the first
// edit of an uncommitted column and drained once the attribute is confirmed.
type PendingColumnValues struct {
	values map[pendingKey]any
}

type pendingKey struct {
	column string
	row    string
}

// PendingValue is one drained edit, addressed by the row it belongs to.
type PendingValue struct {
	Row   string
	Value any
}

func NewPendingColumnValues() *PendingColumnValues {
	return &PendingColumnValues{values: map[pendingKey]any{}}
}

// Set records an edit for the (column, row) slot, overwriting earlier edits
// of the same slot.
func (p *PendingColumnValues) Set(column, row string, value any) {
	p.values[pendingKey{column: column, row: row}] = value
}

// Get returns the pending edit for the slot.
func (p *PendingColumnValues) Get(column, row string) (any, bool) {
	value, ok := p.values[pendingKey{column: column, row: row}]
	return value, ok
}

// Drain removes and returns every pending edit of the column, called once the
// backing attribute exists and the edits can be committed under its id.
func (p *PendingColumnValues) Drain(column string) []PendingValue {
	var drained []PendingValue
	for key, value := range p.values {
		if key.column == column {
			drained = append(drained, PendingValue{Row: key.row, Value: value})
			delete(p.values, key)
		}
	}
	return drained
}

// Len reports the number of pending edits across all columns.
func (p *PendingColumnValues) Len() int {
	return len(p.values)
}
