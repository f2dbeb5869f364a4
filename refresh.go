package lumeer

import (
	"context"
	"sync"

	"github.com/lumeer/lumeer.go/pkg/connection"
	"github.com/lumeer/lumeer.go/pkg/models"
	"github.com/lumeer/lumeer.go/pkg/store"
)

// RefreshQueries re-fetches every loaded query of both caches concurrently
// and merges all results in a single dispatch per cache. A branch that fails
// contributes nothing and is logged; its query keeps serving the previous
// results. Entities from the branches that succeeded still land, and the
// newer-wins rule keeps the outcome independent of the order the responses
// arrived in.
func (c *Client) RefreshQueries(ctx context.Context) {
	docQueries := c.documents.Snapshot().Queries()
	linkQueries := c.links.Snapshot().Queries()
	queries := unionQueries(docQueries, linkQueries)
	if len(queries) == 0 {
		return
	}

	type branch struct {
		query  *models.Query
		result *SearchResult
	}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		branches = make([]branch, 0, len(queries))
	)
	for _, query := range queries {
		wg.Add(1)
		go func(query *models.Query) {
			defer wg.Done()
			var res connection.RPCResponse[SearchResult]
			if err := connection.Send(c.conn, ctx, &res, connection.MethodSearch, c.searchParams(query)); err != nil {
				c.logger.Warn("refresh branch failed", "error", err)
				return
			}
			if res.Result == nil {
				return
			}
			mu.Lock()
			branches = append(branches, branch{query: query, result: res.Result})
			mu.Unlock()
		}(query)
	}
	wg.Wait()

	var (
		docResults  []store.QueryResult[*models.Document]
		linkResults []store.QueryResult[*models.LinkInstance]
	)
	for _, b := range branches {
		if queryListContains(docQueries, b.query) {
			docResults = append(docResults, store.QueryResult[*models.Document]{
				Query:     b.query,
				Resources: documentsFromDTOs(b.result.Documents),
			})
		}
		if queryListContains(linkQueries, b.query) {
			linkResults = append(linkResults, store.QueryResult[*models.LinkInstance]{
				Query:     b.query,
				Resources: linkInstancesFromDTOs(b.result.LinkInstances),
			})
		}
	}

	if len(docQueries) > 0 {
		c.documents.Dispatch(store.RefreshSuccess[*models.Document]{
			Queries: docQueries,
			Results: docResults,
		})
	}
	if len(linkQueries) > 0 {
		c.links.Dispatch(store.RefreshSuccess[*models.LinkInstance]{
			Queries: linkQueries,
			Results: linkResults,
		})
	}
}

func unionQueries(lists ...[]*models.Query) []*models.Query {
	var union []*models.Query
	for _, list := range lists {
		for _, q := range list {
			if !queryListContains(union, q) {
				union = append(union, q)
			}
		}
	}
	return union
}

func queryListContains(list []*models.Query, query *models.Query) bool {
	for _, q := range list {
		if q.Equal(query) {
			return true
		}
	}
	return false
}
