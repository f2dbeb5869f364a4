// Package models holds the platform entities the SDK caches and exchanges
// with the remote API: documents, link instances, queries and their wire
// representations.
package models

import (
	"time"

	"github.com/lumeer/lumeer.go/pkg/constraints"
)

// DataResource is the shared base of Document and LinkInstance: a versioned
// record of attribute data.
//
// ID is assigned by the server; an entity created optimistically on the client
// has no ID yet and is tracked through CorrelationID until the create
// round-trip completes.
type DataResource struct {
	ID            string
	CorrelationID string

	// Data maps attribute id to raw value.
	Data map[string]any

	// DataVersion increases by one on every committed mutation. Zero means
	// the server never reported a version.
	DataVersion int

	CreationDate *time.Time
	UpdateDate   *time.Time

	// CommentsCount is transient metadata sourced independently of Data.
	// A nil pointer means "not known", which must never overwrite a known
	// count during merges.
	CommentsCount *int64
}

// IsNewerThan implements the newer-wins rule: strictly greater DataVersion
// wins; with versions tied or absent, strictly later UpdateDate wins.
func (r *DataResource) IsNewerThan(other *DataResource) bool {
	if r.DataVersion > 0 || other.DataVersion > 0 {
		if r.DataVersion != other.DataVersion {
			return r.DataVersion > other.DataVersion
		}
	}
	if r.UpdateDate == nil || other.UpdateDate == nil {
		return false
	}
	return r.UpdateDate.After(*other.UpdateDate)
}

func (r *DataResource) cloneInto(dst *DataResource) {
	*dst = *r
	if r.Data != nil {
		dst.Data = make(map[string]any, len(r.Data))
		for k, v := range r.Data {
			dst.Data[k] = v
		}
	}
	if r.CommentsCount != nil {
		count := *r.CommentsCount
		dst.CommentsCount = &count
	}
}

// Attribute describes one column of a collection or link type schema.
type Attribute struct {
	ID         string
	Name       string
	Constraint constraints.Constraint
}

// CreateDataValues binds every attribute's raw value to its constraint.
// Attributes without a constraint fall back to the unknown constraint.
func CreateDataValues(
	data map[string]any,
	attributes []Attribute,
	constraintData *constraints.ConstraintData,
) map[string]constraints.DataValue {
	values := make(map[string]constraints.DataValue, len(attributes))
	for _, attr := range attributes {
		constraint := attr.Constraint
		if constraint == nil {
			constraint = constraints.NewUnknownConstraint()
		}
		values[attr.ID] = constraint.CreateDataValue(data[attr.ID], constraintData)
	}
	return values
}
