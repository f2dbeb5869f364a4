package store_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeer/lumeer.go/pkg/models"
	"github.com/lumeer/lumeer.go/pkg/store"
)

func beginLoad(t *testing.T, s *store.Store[*models.Document], q *models.Query) bool {
	t.Helper()
	begin, _ := s.BeginLoad(q)
	return begin
}

func TestBeginLoadDeduplicates(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")

	assert.True(t, beginLoad(t, s, q), "first request fetches")
	assert.False(t, beginLoad(t, s, q), "query already in flight")
	assert.False(t, beginLoad(t, s, queryFor("c1")), "equivalent query already in flight")
	assert.True(t, beginLoad(t, s, queryFor("c2")), "different query fetches")
}

func TestBeginLoadAfterSuccess(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")

	require.True(t, beginLoad(t, s, q))
	s.Dispatch(getSuccess(q, doc("d1", 1, nil)))

	assert.False(t, beginLoad(t, s, q), "loaded query is not re-fetched")
	assert.True(t, s.Snapshot().IsLoaded(q))
}

func TestBeginLoadAfterFailure(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")

	require.True(t, beginLoad(t, s, q))
	s.Dispatch(store.GetFailure{Query: q, Err: assert.AnError})

	assert.True(t, beginLoad(t, s, q), "failed query can be retried")
}

// A deduplicated caller receives a done channel that closes only once the
// in-flight load settles, so it can wait for the actual result instead of
// reading an empty cache.
func TestBeginLoadWaiterReleasedOnSuccess(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")

	begin, done := s.BeginLoad(q)
	require.True(t, begin)
	require.Nil(t, done)

	begin, done = s.BeginLoad(queryFor("c1"))
	require.False(t, begin)
	require.NotNil(t, done)

	select {
	case <-done:
		t.Fatal("released before the load settled")
	default:
	}

	s.Dispatch(getSuccess(q, doc("d1", 1, nil)))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released by the load's success")
	}
}

func TestBeginLoadWaiterReleasedOnFailure(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")

	begin, _ := s.BeginLoad(q)
	require.True(t, begin)
	_, done := s.BeginLoad(q)
	require.NotNil(t, done)

	s.Dispatch(store.GetFailure{Query: q, Err: assert.AnError})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter not released by the load's failure")
	}
	assert.True(t, beginLoad(t, s, q), "settled query is loadable again")
}

// Exactly one of many concurrent requests for an equivalent query wins the
// load; everyone else gets a wait channel for it.
func TestBeginLoadConcurrent(t *testing.T) {
	s := store.New(store.NewDocumentsState())

	const goroutines = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		waiters int
	)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			begin, done := s.BeginLoad(queryFor("c1"))
			mu.Lock()
			defer mu.Unlock()
			if begin {
				wins++
			} else if done != nil {
				waiters++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, goroutines-1, waiters)
}

func TestSnapshotIsImmutable(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")
	s.Dispatch(getSuccess(q, doc("d1", 1, nil)))

	snapshot := s.Snapshot()
	s.Dispatch(store.Delete{ID: "d1"})

	_, ok := snapshot.Get("d1")
	assert.True(t, ok, "earlier snapshot still sees the entity")
	_, ok = s.Snapshot().Get("d1")
	assert.False(t, ok)
}

func TestDispatchConcurrent(t *testing.T) {
	s := store.New(store.NewDocumentsState())
	q := queryFor("c1")
	s.Dispatch(getSuccess(q, doc("d1", 1, map[string]any{"n": 0})))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(store.PatchData{ID: "d1", Data: map[string]any{"n": 1}})
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Snapshot().All()
		}()
	}
	wg.Wait()

	got, ok := s.Snapshot().Get("d1")
	require.True(t, ok)
	assert.Equal(t, 17, got.DataVersion, "every patch bumped the version once")
}

func TestGetByCorrelationIDFindsPersisted(t *testing.T) {
	s := store.New(store.NewLinkInstancesState())
	link := &models.LinkInstance{
		DataResource: models.DataResource{ID: "l1", CorrelationID: "corr-9", DataVersion: 1},
		LinkTypeID:   "lt1",
	}
	q := &models.Query{Stems: []models.QueryStem{{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}}}
	s.Dispatch(store.GetSuccess[*models.LinkInstance]{Query: q, Resources: []*models.LinkInstance{link}})

	got, ok := s.Snapshot().GetByCorrelationID("corr-9")
	require.True(t, ok)
	assert.Equal(t, "l1", got.ID)
}
