package store

import "github.com/lumeer/lumeer.go/pkg/models"

// Command is the tagged union of cache mutations. Commands are plain data;
// the reducer in Apply is the only place state transitions happen.
type Command interface {
	isCommand()
}

// MarkLoading registers an in-flight query before the fetch suspends.
type MarkLoading struct {
	Query *models.Query
}

// GetSuccess merges fetched entities and marks the query loaded.
type GetSuccess[R Resource[R]] struct {
	Query     *models.Query
	Resources []R
}

// GetFailure unregisters the in-flight query, leaving the entity map and
// loaded queries untouched so a retry stays possible.
type GetFailure struct {
	Query *models.Query
	Err   error
}

// Create stores an optimistically created entity under its correlation id.
type Create[R Resource[R]] struct {
	Resource R
}

// CreateSuccess replaces the pending entity with the persisted one.
type CreateSuccess[R Resource[R]] struct {
	CorrelationID string
	Resource      R
}

// CreateFailure drops the pending entity.
type CreateFailure struct {
	CorrelationID string
	Err           error
}

// UpdateData optimistically replaces an entity's data, bumping the version.
type UpdateData struct {
	ID   string
	Data map[string]any
}

// PatchData optimistically merges partial data into an entity's data. The
// version bumps even when the merged content is unchanged, because the
// version reflects that an update was attempted.
type PatchData struct {
	ID   string
	Data map[string]any
}

// UpdateSuccess merges the server's committed copy using the newer-wins rule.
type UpdateSuccess[R Resource[R]] struct {
	Resource R
}

// UpdateFailure rolls the entity back to the exact snapshot captured before
// the optimistic mutation.
type UpdateFailure[R Resource[R]] struct {
	Original R
	Err      error
}

// Delete removes the entity unconditionally.
type Delete struct {
	ID string
}

// DeleteFailure restores the entity from the snapshot carried on the failure.
type DeleteFailure[R Resource[R]] struct {
	Original R
	Err      error
}

// QueryResult pairs one refreshed query with the entities its branch
// returned.
type QueryResult[R Resource[R]] struct {
	Query     *models.Query
	Resources []R
}

// RefreshSuccess is the single combined success of a batched refresh: every
// attempted query stays loaded, and each successful branch merges its
// entities and replaces the id set served for its query. A failed branch
// carries no result, so its query keeps serving the previous ids.
type RefreshSuccess[R Resource[R]] struct {
	Queries []*models.Query
	Results []QueryResult[R]
}

// ClearQueriesByOwner forgets loaded/loading queries whose stems reference
// the owning resource, keeping unrelated cached queries intact.
type ClearQueriesByOwner struct {
	OwnerID string
}

// Clear resets the cache to its initial state.
type Clear struct{}

func (MarkLoading) isCommand()         {}
func (GetSuccess[R]) isCommand()       {}
func (GetFailure) isCommand()          {}
func (Create[R]) isCommand()           {}
func (CreateSuccess[R]) isCommand()    {}
func (CreateFailure) isCommand()       {}
func (UpdateData) isCommand()          {}
func (PatchData) isCommand()           {}
func (UpdateSuccess[R]) isCommand()    {}
func (UpdateFailure[R]) isCommand()    {}
func (Delete) isCommand()              {}
func (RefreshSuccess[R]) isCommand()   {}
func (DeleteFailure[R]) isCommand()    {}
func (ClearQueriesByOwner) isCommand() {}
func (Clear) isCommand()               {}
