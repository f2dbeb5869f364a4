// Package store implements the client-side cache of data resources: a
// normalized entity map per resource kind plus bookkeeping of which queries
// are loaded or in flight.
//
// Mutation happens through a tagged-union Command applied by a pure reducer,
// mirroring serialized dispatch: the Store wrapper applies commands under a
// single lock, and the final cache content is independent of the order in
// which network responses arrive because merging is driven solely by the
// newer-wins version/timestamp rule.
package store

import (
	"github.com/lumeer/lumeer.go/pkg/models"
)

// Resource is a pointer type carrying an embedded models.DataResource, i.e.
// *models.Document or *models.LinkInstance.
type Resource[R any] interface {
	Resource() *models.DataResource
	Clone() R
}

// State is an immutable snapshot of one resource kind's cache. Apply returns
// a new State, sharing unmodified maps with its predecessor.
type State[R Resource[R]] struct {
	entities map[string]R
	// pending holds optimistically created entities that have no server id
	// yet, keyed by correlation id.
	pending map[string]R

	// queries whose results are fully merged.
	queries []*models.Query
	// loading is the set of queries currently in flight; it closes the
	// dedup race window between two near-simultaneous requests.
	loading []*models.Query

	// results records which entity ids each loaded query returned, so a
	// projection serves exactly its own query's result set. Without it a
	// broad query on a collection would leak entities into every narrower
	// query on the same collection.
	results []queryResult

	// queryMatchesOwner scopes query invalidation to one owning resource
	// (collection for documents, link type for link instances).
	queryMatchesOwner func(q *models.Query, ownerID string) bool
}

// NewDocumentsState returns an empty cache state for documents.
func NewDocumentsState() State[*models.Document] {
	return State[*models.Document]{
		entities: map[string]*models.Document{},
		pending:  map[string]*models.Document{},
		queryMatchesOwner: func(q *models.Query, ownerID string) bool {
			return q.ContainsCollection(ownerID)
		},
	}
}

// NewLinkInstancesState returns an empty cache state for link instances.
func NewLinkInstancesState() State[*models.LinkInstance] {
	return State[*models.LinkInstance]{
		entities: map[string]*models.LinkInstance{},
		pending:  map[string]*models.LinkInstance{},
		queryMatchesOwner: func(q *models.Query, ownerID string) bool {
			return q.ContainsLinkType(ownerID)
		},
	}
}

// Get returns the cached entity by server id.
func (s State[R]) Get(id string) (R, bool) {
	entity, ok := s.entities[id]
	return entity, ok
}

// GetByCorrelationID returns an entity by the client-generated correlation
// id, finding it whether or not the create round-trip completed already.
func (s State[R]) GetByCorrelationID(correlationID string) (R, bool) {
	if entity, ok := s.pending[correlationID]; ok {
		return entity, true
	}
	for _, entity := range s.entities {
		if entity.Resource().CorrelationID == correlationID {
			return entity, true
		}
	}
	var zero R
	return zero, false
}

// All returns the cached entities in unspecified order.
func (s State[R]) All() []R {
	all := make([]R, 0, len(s.entities))
	for _, entity := range s.entities {
		all = append(all, entity)
	}
	return all
}

// Pending returns the optimistically created entities awaiting a server id.
func (s State[R]) Pending() []R {
	pending := make([]R, 0, len(s.pending))
	for _, entity := range s.pending {
		pending = append(pending, entity)
	}
	return pending
}

// Queries returns the queries whose results are loaded.
func (s State[R]) Queries() []*models.Query {
	return s.queries
}

// IsLoaded reports whether an equivalent query has been fully merged.
func (s State[R]) IsLoaded(query *models.Query) bool {
	return containsQuery(s.queries, query)
}

// IsLoading reports whether an equivalent query is in flight.
func (s State[R]) IsLoading(query *models.Query) bool {
	return containsQuery(s.loading, query)
}

// ByQuery returns the entities delivered by the load of an equivalent query.
// Ids deleted since the load are skipped. A query that was never loaded
// yields nil.
func (s State[R]) ByQuery(query *models.Query) []R {
	for _, result := range s.results {
		if !result.query.Equal(query) {
			continue
		}
		matched := make([]R, 0, len(result.ids))
		for _, id := range result.ids {
			if entity, ok := s.entities[id]; ok {
				matched = append(matched, entity)
			}
		}
		return matched
	}
	return nil
}

// queryResult pairs a loaded query with the ids its load returned.
type queryResult struct {
	query *models.Query
	ids   []string
}

// withQueryResult replaces the recorded ids of an equivalent query, or
// appends a new record, always on a fresh slice.
func withQueryResult(list []queryResult, query *models.Query, ids []string) []queryResult {
	next := make([]queryResult, 0, len(list)+1)
	for _, r := range list {
		if !r.query.Equal(query) {
			next = append(next, r)
		}
	}
	return append(next, queryResult{query: query, ids: ids})
}

func resultsWithoutOwner(list []queryResult, matches func(*models.Query, string) bool, ownerID string) []queryResult {
	if matches == nil {
		return list
	}
	filtered := make([]queryResult, 0, len(list))
	for _, r := range list {
		if !matches(r.query, ownerID) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func containsQuery(list []*models.Query, query *models.Query) bool {
	for _, q := range list {
		if q.Equal(query) {
			return true
		}
	}
	return false
}

func withoutQuery(list []*models.Query, query *models.Query) []*models.Query {
	filtered := make([]*models.Query, 0, len(list))
	for _, q := range list {
		if !q.Equal(query) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

func (s State[R]) cloneEntities() map[string]R {
	entities := make(map[string]R, len(s.entities))
	for id, entity := range s.entities {
		entities[id] = entity
	}
	return entities
}

func (s State[R]) clonePending() map[string]R {
	pending := make(map[string]R, len(s.pending))
	for id, entity := range s.pending {
		pending[id] = entity
	}
	return pending
}
