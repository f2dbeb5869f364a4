package lumeer

import (
	"context"
	"fmt"

	"github.com/lumeer/lumeer.go/pkg/connection"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/models"
	"github.com/lumeer/lumeer.go/pkg/store"
)

// GetLinkInstances returns the link instances matching the query, fetching
// only when no equivalent query is loaded or in flight. A caller
// deduplicated against an in-flight fetch waits for that fetch to settle.
func (c *Client) GetLinkInstances(ctx context.Context, query *models.Query) ([]*models.LinkInstance, error) {
	begin, done := c.links.BeginLoad(query)
	switch {
	case begin:
		var res connection.RPCResponse[SearchResult]
		if err := connection.Send(c.conn, ctx, &res, connection.MethodSearch, c.searchParams(query)); err != nil {
			c.links.Dispatch(store.GetFailure{Query: query, Err: err})
			c.logger.Error("link search failed", "error", err)
			return nil, err
		}
		var links []*models.LinkInstance
		if res.Result != nil {
			links = linkInstancesFromDTOs(res.Result.LinkInstances)
		}
		c.links.Dispatch(store.GetSuccess[*models.LinkInstance]{
			Query:     query,
			Resources: links,
		})
	case done != nil:
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if !c.links.Snapshot().IsLoaded(query) {
			return c.GetLinkInstances(ctx, query)
		}
	}
	return c.linkInstancesByQuery(query), nil
}

// CreateLinkInstance stores the link optimistically under a fresh correlation
// id, then replaces it with the server's copy once the call returns.
func (c *Client) CreateLinkInstance(ctx context.Context, link *models.LinkInstance) (*models.LinkInstance, error) {
	correlationID, err := newCorrelationID()
	if err != nil {
		return nil, err
	}

	pending := link.Clone()
	pending.CorrelationID = correlationID
	c.links.Dispatch(store.Create[*models.LinkInstance]{Resource: pending})

	var res connection.RPCResponse[models.LinkInstanceDTO]
	dto := models.LinkInstanceToDTO(pending)
	if err := connection.Send(c.conn, ctx, &res, connection.MethodCreateLinkInstance, dto); err != nil {
		c.links.Dispatch(store.CreateFailure{CorrelationID: correlationID, Err: err})
		return nil, err
	}

	if res.Result == nil {
		c.links.Dispatch(store.CreateFailure{CorrelationID: correlationID, Err: constants.ErrInvalidResponse})
		return nil, constants.ErrInvalidResponse
	}
	created := models.LinkInstanceFromDTO(res.Result)
	created.CorrelationID = correlationID
	c.links.Dispatch(store.CreateSuccess[*models.LinkInstance]{
		CorrelationID: correlationID,
		Resource:      created,
	})
	return created, nil
}

// UpdateLinkInstanceData replaces the link's data optimistically and confirms
// with the server, rolling back on failure.
func (c *Client) UpdateLinkInstanceData(ctx context.Context, id string, data map[string]any) (*models.LinkInstance, error) {
	return c.mutateLinkInstance(ctx, id, data,
		store.UpdateData{ID: id, Data: data}, connection.MethodUpdateLinkInstance)
}

// PatchLinkInstanceData merges partial data into the link optimistically and
// confirms with the server, rolling back on failure.
func (c *Client) PatchLinkInstanceData(ctx context.Context, id string, data map[string]any) (*models.LinkInstance, error) {
	return c.mutateLinkInstance(ctx, id, data,
		store.PatchData{ID: id, Data: data}, connection.MethodPatchLinkInstanceData)
}

func (c *Client) mutateLinkInstance(ctx context.Context, id string, data map[string]any, cmd store.Command, method string) (*models.LinkInstance, error) {
	original, ok := c.links.Snapshot().Get(id)
	if !ok {
		return nil, fmt.Errorf("link instance %q: %w", id, constants.ErrNotFound)
	}
	snapshot := original.Clone()
	c.links.Dispatch(cmd)

	var res connection.RPCResponse[models.LinkInstanceDTO]
	if err := connection.Send(c.conn, ctx, &res, method, id, data); err != nil {
		c.links.Dispatch(store.UpdateFailure[*models.LinkInstance]{Original: snapshot, Err: err})
		return nil, err
	}

	if res.Result == nil {
		c.links.Dispatch(store.UpdateFailure[*models.LinkInstance]{Original: snapshot, Err: constants.ErrInvalidResponse})
		return nil, constants.ErrInvalidResponse
	}
	committed := models.LinkInstanceFromDTO(res.Result)
	c.links.Dispatch(store.UpdateSuccess[*models.LinkInstance]{Resource: committed})
	return committed, nil
}

// DeleteLinkInstance removes the link optimistically; a failed round-trip
// restores the pre-delete snapshot.
func (c *Client) DeleteLinkInstance(ctx context.Context, id string) error {
	original, ok := c.links.Snapshot().Get(id)
	if !ok {
		return fmt.Errorf("link instance %q: %w", id, constants.ErrNotFound)
	}
	snapshot := original.Clone()
	c.links.Dispatch(store.Delete{ID: id})

	var res connection.RPCResponse[bool]
	if err := connection.Send(c.conn, ctx, &res, connection.MethodDeleteLinkInstance, id); err != nil {
		c.links.Dispatch(store.DeleteFailure[*models.LinkInstance]{Original: snapshot, Err: err})
		return err
	}
	return nil
}

// linkInstancesByQuery serves exactly the ids the query's own load returned.
func (c *Client) linkInstancesByQuery(query *models.Query) []*models.LinkInstance {
	return c.links.Snapshot().ByQuery(query)
}

func linkInstancesFromDTOs(dtos []*models.LinkInstanceDTO) []*models.LinkInstance {
	links := make([]*models.LinkInstance, 0, len(dtos))
	for _, dto := range dtos {
		links = append(links, models.LinkInstanceFromDTO(dto))
	}
	return links
}
