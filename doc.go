// Package lumeer is the Go client SDK for the collaborative
// tables/documents/links platform.
//
// # Client and cache
//
// [Client] talks to the platform API over an RPC connection and maintains a
// local cache of documents and link instances. Reads go through query-scoped
// caching: fetching the same query twice issues one network request, and a
// query already in flight is never fetched again concurrently. Writes are
// optimistic: the local cache mutates immediately and rolls back to the
// pre-mutation snapshot when the server rejects the change.
//
// Concurrent responses may arrive in any order; the final cache content
// depends only on each entity's own version and update timestamp, never on
// network completion order.
//
// # Pivot engine
//
// The [github.com/lumeer/lumeer.go/pkg/pivot] package turns header trees and
// a value matrix into a renderable pivot table. It is a pure computation with
// no connection to the cache; feed it any [pivot.StemData].
//
// # Transports
//
// The default transport is a websocket carrying CBOR-encoded RPC messages,
// created from an endpoint URL by [New]. An http or https endpoint selects
// the POST-per-call fallback instead. Any implementation of
// [connection.Connection] can be supplied through [FromConnection].
package lumeer
