package store

import "github.com/lumeer/lumeer.go/pkg/models"

// Apply is the pure reducer: it returns the state after the command, never
// mutating the receiver. Unknown commands leave the state unchanged.
func (s State[R]) Apply(cmd Command) State[R] {
	switch c := cmd.(type) {
	case MarkLoading:
		if containsQuery(s.loading, c.Query) {
			return s
		}
		next := s
		next.loading = append(copyQueries(s.loading), c.Query)
		return next

	case GetSuccess[R]:
		next := s
		next.loading = withoutQuery(s.loading, c.Query)
		if !containsQuery(s.queries, c.Query) {
			next.queries = append(copyQueries(s.queries), c.Query)
		}
		next.results = withQueryResult(s.results, c.Query, resourceIDs(c.Resources))
		next.entities = s.cloneEntities()
		next.pending = s.clonePending()
		for _, incoming := range c.Resources {
			mergeResource(next.entities, next.pending, incoming)
		}
		return next

	case GetFailure:
		next := s
		next.loading = withoutQuery(s.loading, c.Query)
		return next

	case Create[R]:
		correlationID := c.Resource.Resource().CorrelationID
		if correlationID == "" {
			return s
		}
		next := s
		next.pending = s.clonePending()
		next.pending[correlationID] = c.Resource.Clone()
		return next

	case CreateSuccess[R]:
		next := s
		next.pending = s.clonePending()
		delete(next.pending, c.CorrelationID)
		next.entities = s.cloneEntities()
		mergeResource(next.entities, next.pending, c.Resource)
		return next

	case CreateFailure:
		next := s
		next.pending = s.clonePending()
		delete(next.pending, c.CorrelationID)
		return next

	case UpdateData:
		entity, ok := s.entities[c.ID]
		if !ok {
			return s
		}
		updated := entity.Clone()
		resource := updated.Resource()
		resource.Data = copyData(c.Data)
		resource.DataVersion++
		next := s
		next.entities = s.cloneEntities()
		next.entities[c.ID] = updated
		return next

	case PatchData:
		entity, ok := s.entities[c.ID]
		if !ok {
			return s
		}
		patched := entity.Clone()
		resource := patched.Resource()
		if resource.Data == nil {
			resource.Data = map[string]any{}
		}
		for key, value := range c.Data {
			resource.Data[key] = value
		}
		resource.DataVersion++
		next := s
		next.entities = s.cloneEntities()
		next.entities[c.ID] = patched
		return next

	case UpdateSuccess[R]:
		next := s
		next.entities = s.cloneEntities()
		next.pending = s.clonePending()
		mergeResource(next.entities, next.pending, c.Resource)
		return next

	case UpdateFailure[R]:
		original := c.Original
		id := original.Resource().ID
		if id == "" {
			return s
		}
		next := s
		next.entities = s.cloneEntities()
		next.entities[id] = original.Clone()
		return next

	case Delete:
		if _, ok := s.entities[c.ID]; !ok {
			return s
		}
		next := s
		next.entities = s.cloneEntities()
		delete(next.entities, c.ID)
		return next

	case DeleteFailure[R]:
		original := c.Original
		id := original.Resource().ID
		if id == "" {
			return s
		}
		next := s
		next.entities = s.cloneEntities()
		next.entities[id] = original.Clone()
		return next

	case RefreshSuccess[R]:
		next := s
		for _, q := range c.Queries {
			next.loading = withoutQuery(next.loading, q)
			if !containsQuery(next.queries, q) {
				next.queries = append(copyQueries(next.queries), q)
			}
		}
		next.results = s.results
		next.entities = s.cloneEntities()
		next.pending = s.clonePending()
		for _, result := range c.Results {
			next.results = withQueryResult(next.results, result.Query, resourceIDs(result.Resources))
			for _, incoming := range result.Resources {
				mergeResource(next.entities, next.pending, incoming)
			}
		}
		return next

	case ClearQueriesByOwner:
		next := s
		next.queries = withoutOwner(s.queries, s.queryMatchesOwner, c.OwnerID)
		next.loading = withoutOwner(s.loading, s.queryMatchesOwner, c.OwnerID)
		next.results = resultsWithoutOwner(s.results, s.queryMatchesOwner, c.OwnerID)
		return next

	case Clear:
		next := s
		next.entities = map[string]R{}
		next.pending = map[string]R{}
		next.queries = nil
		next.loading = nil
		next.results = nil
		return next

	default:
		return s
	}
}

// mergeResource applies the newer-wins rule for one incoming entity. A stale
// incoming copy may still surface fresher transient metadata, but must never
// regress fields committed by a more recent, narrower operation.
func mergeResource[R Resource[R]](entities, pending map[string]R, incoming R) {
	base := incoming.Resource()
	if base.ID == "" {
		return
	}
	// A persisted copy of an entity still tracked as pending resolves the
	// optimistic-create window.
	if base.CorrelationID != "" {
		delete(pending, base.CorrelationID)
	}

	current, exists := entities[base.ID]
	if !exists {
		entities[base.ID] = incoming.Clone()
		return
	}

	cached := current.Resource()
	if base.IsNewerThan(cached) {
		merged := incoming.Clone()
		if merged.Resource().CommentsCount == nil && cached.CommentsCount != nil {
			count := *cached.CommentsCount
			merged.Resource().CommentsCount = &count
		}
		entities[base.ID] = merged
		return
	}

	if base.CommentsCount != nil &&
		(cached.CommentsCount == nil || *cached.CommentsCount != *base.CommentsCount) {
		patched := current.Clone()
		count := *base.CommentsCount
		patched.Resource().CommentsCount = &count
		entities[base.ID] = patched
	}
}

func resourceIDs[R Resource[R]](resources []R) []string {
	ids := make([]string, 0, len(resources))
	for _, r := range resources {
		if id := r.Resource().ID; id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func copyQueries(list []*models.Query) []*models.Query {
	return append([]*models.Query(nil), list...)
}

func withoutOwner(list []*models.Query, matches func(*models.Query, string) bool, ownerID string) []*models.Query {
	if matches == nil {
		return list
	}
	filtered := make([]*models.Query, 0, len(list))
	for _, q := range list {
		if !matches(q, ownerID) {
			filtered = append(filtered, q)
		}
	}
	return filtered
}

func copyData(data map[string]any) map[string]any {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return copied
}
