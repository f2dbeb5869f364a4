package models

import "reflect"

// AttributeFilter restricts records by a single attribute condition.
type AttributeFilter struct {
	AttributeID string `json:"attributeId" cbor:"attributeId"`
	Condition   string `json:"condition" cbor:"condition"`
	Value       any    `json:"value,omitempty" cbor:"value,omitempty"`
}

// QueryStem selects records reachable from one collection, optionally
// traversing link types.
type QueryStem struct {
	CollectionID string            `json:"collectionId" cbor:"collectionId"`
	LinkTypeIDs  []string          `json:"linkTypeIds,omitempty" cbor:"linkTypeIds,omitempty"`
	DocumentIDs  []string          `json:"documentIds,omitempty" cbor:"documentIds,omitempty"`
	Filters      []AttributeFilter `json:"filters,omitempty" cbor:"filters,omitempty"`
	LinkFilters  []AttributeFilter `json:"linkFilters,omitempty" cbor:"linkFilters,omitempty"`
}

// Query is a serializable description of which documents and links are
// wanted. Queries are compared structurally, never by reference, because the
// cache keys loaded and in-flight state by query.
type Query struct {
	Stems     []QueryStem `json:"stems,omitempty" cbor:"stems,omitempty"`
	FullTexts []string    `json:"fullTexts,omitempty" cbor:"fullTexts,omitempty"`
	Page      *int        `json:"page,omitempty" cbor:"page,omitempty"`
	PageSize  *int        `json:"pageSize,omitempty" cbor:"pageSize,omitempty"`
}

// Equal reports deep structural equality, treating nil and empty slices the
// same.
func (q *Query) Equal(other *Query) bool {
	if q == nil || other == nil {
		return q == other
	}
	return reflect.DeepEqual(q.normalized(), other.normalized())
}

func (q *Query) normalized() Query {
	norm := Query{Page: q.Page, PageSize: q.PageSize}
	if len(q.Stems) > 0 {
		norm.Stems = make([]QueryStem, len(q.Stems))
		for i, stem := range q.Stems {
			norm.Stems[i] = stem.normalized()
		}
	}
	if len(q.FullTexts) > 0 {
		norm.FullTexts = q.FullTexts
	}
	return norm
}

func (s QueryStem) normalized() QueryStem {
	norm := QueryStem{CollectionID: s.CollectionID}
	if len(s.LinkTypeIDs) > 0 {
		norm.LinkTypeIDs = s.LinkTypeIDs
	}
	if len(s.DocumentIDs) > 0 {
		norm.DocumentIDs = s.DocumentIDs
	}
	if len(s.Filters) > 0 {
		norm.Filters = s.Filters
	}
	if len(s.LinkFilters) > 0 {
		norm.LinkFilters = s.LinkFilters
	}
	return norm
}

// ContainsCollection reports whether any stem reads from the collection.
func (q *Query) ContainsCollection(collectionID string) bool {
	for _, stem := range q.Stems {
		if stem.CollectionID == collectionID {
			return true
		}
	}
	return false
}

// ContainsLinkType reports whether any stem traverses the link type.
func (q *Query) ContainsLinkType(linkTypeID string) bool {
	for _, stem := range q.Stems {
		for _, id := range stem.LinkTypeIDs {
			if id == linkTypeID {
				return true
			}
		}
	}
	return false
}
