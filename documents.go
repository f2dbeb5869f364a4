package lumeer

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/lumeer/lumeer.go/pkg/connection"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/models"
	"github.com/lumeer/lumeer.go/pkg/store"
)

type searchParams struct {
	Workspace       Workspace     `json:"workspace" cbor:"workspace"`
	Query           *models.Query `json:"query" cbor:"query"`
	IncludeSubItems bool          `json:"includeSubItems,omitempty" cbor:"includeSubItems,omitempty"`
}

func (c *Client) searchParams(query *models.Query) searchParams {
	return searchParams{
		Workspace:       c.workspace,
		Query:           query,
		IncludeSubItems: c.includeSubItems,
	}
}

// GetDocuments returns the documents matching the query, fetching them only
// when no equivalent query has been loaded or is already in flight. Cached
// hits never touch the network; a caller deduplicated against an in-flight
// fetch waits for that fetch to settle instead of returning early.
func (c *Client) GetDocuments(ctx context.Context, query *models.Query) ([]*models.Document, error) {
	begin, done := c.documents.BeginLoad(query)
	switch {
	case begin:
		result, err := c.search(ctx, query)
		if err != nil {
			c.documents.Dispatch(store.GetFailure{Query: query, Err: err})
			c.logger.Error("search failed", "error", err)
			return nil, err
		}
		c.documents.Dispatch(store.GetSuccess[*models.Document]{
			Query:     query,
			Resources: documentsFromDTOs(result.Documents),
		})
	case done != nil:
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if !c.documents.Snapshot().IsLoaded(query) {
			// The load we waited on failed; run our own fetch.
			return c.GetDocuments(ctx, query)
		}
	}
	return c.documentsByQuery(query), nil
}

// CreateDocument stores the document optimistically under a fresh correlation
// id, then replaces it with the server's copy once the call returns. On
// failure the pending entry is dropped and the error surfaced.
func (c *Client) CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error) {
	correlationID, err := newCorrelationID()
	if err != nil {
		return nil, err
	}

	pending := doc.Clone()
	pending.CorrelationID = correlationID
	c.documents.Dispatch(store.Create[*models.Document]{Resource: pending})

	var res connection.RPCResponse[models.DocumentDTO]
	dto := models.DocumentToDTO(pending)
	if err := connection.Send(c.conn, ctx, &res, connection.MethodCreateDocument, dto); err != nil {
		c.documents.Dispatch(store.CreateFailure{CorrelationID: correlationID, Err: err})
		return nil, err
	}

	if res.Result == nil {
		c.documents.Dispatch(store.CreateFailure{CorrelationID: correlationID, Err: constants.ErrInvalidResponse})
		return nil, constants.ErrInvalidResponse
	}
	created := models.DocumentFromDTO(res.Result)
	created.CorrelationID = correlationID
	c.documents.Dispatch(store.CreateSuccess[*models.Document]{
		CorrelationID: correlationID,
		Resource:      created,
	})
	return created, nil
}

// UpdateDocumentData replaces the document's data optimistically and confirms
// with the server. On failure the cache rolls back to the pre-update snapshot.
func (c *Client) UpdateDocumentData(ctx context.Context, id string, data map[string]any) (*models.Document, error) {
	return c.mutateDocument(ctx, id, data,
		store.UpdateData{ID: id, Data: data}, connection.MethodUpdateDocumentData)
}

// PatchDocumentData merges partial data into the document optimistically and
// confirms with the server. On failure the cache rolls back.
func (c *Client) PatchDocumentData(ctx context.Context, id string, data map[string]any) (*models.Document, error) {
	return c.mutateDocument(ctx, id, data,
		store.PatchData{ID: id, Data: data}, connection.MethodPatchDocumentData)
}

func (c *Client) mutateDocument(ctx context.Context, id string, data map[string]any, cmd store.Command, method string) (*models.Document, error) {
	original, ok := c.documents.Snapshot().Get(id)
	if !ok {
		return nil, fmt.Errorf("document %q: %w", id, constants.ErrNotFound)
	}
	snapshot := original.Clone()
	c.documents.Dispatch(cmd)

	var res connection.RPCResponse[models.DocumentDTO]
	if err := connection.Send(c.conn, ctx, &res, method, id, data); err != nil {
		c.documents.Dispatch(store.UpdateFailure[*models.Document]{Original: snapshot, Err: err})
		return nil, err
	}

	if res.Result == nil {
		c.documents.Dispatch(store.UpdateFailure[*models.Document]{Original: snapshot, Err: constants.ErrInvalidResponse})
		return nil, constants.ErrInvalidResponse
	}
	committed := models.DocumentFromDTO(res.Result)
	c.documents.Dispatch(store.UpdateSuccess[*models.Document]{Resource: committed})
	return committed, nil
}

// DeleteDocument removes the document optimistically; a failed round-trip
// restores the pre-delete snapshot.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	original, ok := c.documents.Snapshot().Get(id)
	if !ok {
		return fmt.Errorf("document %q: %w", id, constants.ErrNotFound)
	}
	snapshot := original.Clone()
	c.documents.Dispatch(store.Delete{ID: id})

	var res connection.RPCResponse[bool]
	if err := connection.Send(c.conn, ctx, &res, connection.MethodDeleteDocument, id); err != nil {
		c.documents.Dispatch(store.DeleteFailure[*models.Document]{Original: snapshot, Err: err})
		return err
	}
	return nil
}

func (c *Client) search(ctx context.Context, query *models.Query) (*SearchResult, error) {
	var res connection.RPCResponse[SearchResult]
	if err := connection.Send(c.conn, ctx, &res, connection.MethodSearch, c.searchParams(query)); err != nil {
		return nil, err
	}
	if res.Result == nil {
		return nil, constants.ErrInvalidResponse
	}
	// Link instances ride along on every search; merge them so link lookups
	// following a document search hit the cache.
	if len(res.Result.LinkInstances) > 0 {
		c.links.Dispatch(store.GetSuccess[*models.LinkInstance]{
			Query:     query,
			Resources: linkInstancesFromDTOs(res.Result.LinkInstances),
		})
	}
	return res.Result, nil
}

// documentsByQuery serves exactly the ids the query's own load returned, so
// results never absorb entities merged by broader queries on the same
// collection.
func (c *Client) documentsByQuery(query *models.Query) []*models.Document {
	return c.documents.Snapshot().ByQuery(query)
}

func documentsFromDTOs(dtos []*models.DocumentDTO) []*models.Document {
	documents := make([]*models.Document, 0, len(dtos))
	for _, dto := range dtos {
		documents = append(documents, models.DocumentFromDTO(dto))
	}
	return documents
}

func newCorrelationID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
