package lumeer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lumeer/lumeer.go/pkg/connection"
	"github.com/lumeer/lumeer.go/pkg/constants"
	"github.com/lumeer/lumeer.go/pkg/logger"
	"github.com/lumeer/lumeer.go/pkg/models"
	"github.com/lumeer/lumeer.go/pkg/store"
)

// Workspace addresses the organization/project the client operates in. It is
// sent along with every search request.
type Workspace struct {
	OrganizationID string `json:"organizationId" cbor:"organizationId"`
	ProjectID      string `json:"projectId" cbor:"projectId"`
}

// SearchResult is the wire shape of a search response.
type SearchResult struct {
	Documents     []*models.DocumentDTO     `json:"documents" cbor:"documents"`
	LinkInstances []*models.LinkInstanceDTO `json:"linkInstances" cbor:"linkInstances"`
}

// Client is the SDK entry point: one connection plus the serialized caches of
// documents and link instances.
type Client struct {
	conn connection.Connection

	documents *store.Store[*models.Document]
	links     *store.Store[*models.LinkInstance]

	workspace       Workspace
	includeSubItems bool
	logger          logger.Logger
}

type ClientOption func(*Client)

// WithWorkspace scopes all searches to the workspace.
func WithWorkspace(w Workspace) ClientOption {
	return func(c *Client) {
		c.workspace = w
	}
}

// WithSubItems includes child documents of matched documents in searches.
func WithSubItems(include bool) ClientOption {
	return func(c *Client) {
		c.includeSubItems = include
	}
}

func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// New connects to the platform endpoint, e.g. "ws://localhost:8287".
// Websocket schemes get the multiplexed connection; http and https fall back
// to one POST per call.
func New(ctx context.Context, endpointURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.ParseRequestURI(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url: %w", err)
	}
	conf := connection.NewConfig(u)

	var conn connection.Connection
	switch u.Scheme {
	case constants.WebsocketScheme, constants.WebsocketSecureScheme:
		conn = connection.NewWSConnection(conf)
	case constants.HTTPScheme, constants.HTTPSecureScheme:
		conn = connection.NewHTTPConnection(conf)
	default:
		return nil, fmt.Errorf("%w: scheme %q", constants.ErrMethodNotAvailable, u.Scheme)
	}

	return FromConnection(ctx, conn, opts...)
}

// FromConnection builds a client over an already configured connection and
// connects it.
func FromConnection(ctx context.Context, conn connection.Connection, opts ...ClientOption) (*Client, error) {
	client := &Client{
		conn:      conn,
		documents: store.New(store.NewDocumentsState()),
		links:     store.New(store.NewLinkInstancesState()),
		logger:    noopLogger{},
	}
	for _, opt := range opts {
		opt(client)
	}

	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Documents returns the current immutable snapshot of the document cache.
func (c *Client) Documents() store.State[*models.Document] {
	return c.documents.Snapshot()
}

// LinkInstances returns the current immutable snapshot of the link cache.
func (c *Client) LinkInstances() store.State[*models.LinkInstance] {
	return c.links.Snapshot()
}

// ClearCache resets both caches to their initial state.
func (c *Client) ClearCache() {
	c.documents.Dispatch(store.Clear{})
	c.links.Dispatch(store.Clear{})
}

// InvalidateCollection forgets all cached queries reading from the
// collection, leaving unrelated queries intact.
func (c *Client) InvalidateCollection(collectionID string) {
	c.documents.Dispatch(store.ClearQueriesByOwner{OwnerID: collectionID})
}

// InvalidateLinkType forgets all cached queries traversing the link type.
func (c *Client) InvalidateLinkType(linkTypeID string) {
	c.links.Dispatch(store.ClearQueriesByOwner{OwnerID: linkTypeID})
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Debug(string, ...any) {}
