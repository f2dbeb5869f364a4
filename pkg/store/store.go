package store

import (
	"sync"

	"github.com/lumeer/lumeer.go/pkg/models"
)

// Store serializes command dispatch over a State: all mutation goes through
// Dispatch under one lock, while fetches themselves run outside it.
type Store[R Resource[R]] struct {
	mu    sync.RWMutex
	state State[R]

	// waiters carries one done channel per in-flight query, closed when the
	// load settles either way. Callers deduplicated against the load park on
	// it instead of returning before the result exists.
	waiters []loadWaiter
}

type loadWaiter struct {
	query *models.Query
	done  chan struct{}
}

func New[R Resource[R]](initial State[R]) *Store[R] {
	return &Store[R]{state: initial}
}

// Dispatch applies one command atomically and wakes the waiters of any query
// that is no longer in flight afterwards.
func (s *Store[R]) Dispatch(cmd Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.state.Apply(cmd)
	s.releaseSettled()
}

// BeginLoad decides whether a fetch for the query is needed and, if so,
// registers it as in flight in the same critical section. The check and the
// registration must not be separated by a suspension point, otherwise two
// near-simultaneous requests for an equivalent query both pass the check.
//
// begin is true when the caller owns the fetch. Otherwise done is non-nil
// while an equivalent load is in flight; it closes once that load settles.
func (s *Store[R]) BeginLoad(query *models.Query) (begin bool, done <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsLoaded(query) {
		return false, nil
	}
	if s.state.IsLoading(query) {
		for _, w := range s.waiters {
			if w.query.Equal(query) {
				return false, w.done
			}
		}
		return false, nil
	}
	s.state = s.state.Apply(MarkLoading{Query: query})
	s.waiters = append(s.waiters, loadWaiter{query: query, done: make(chan struct{})})
	return true, nil
}

// Snapshot returns the current immutable state.
func (s *Store[R]) Snapshot() State[R] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store[R]) releaseSettled() {
	if len(s.waiters) == 0 {
		return
	}
	kept := s.waiters[:0]
	for _, w := range s.waiters {
		if s.state.IsLoading(w.query) {
			kept = append(kept, w)
			continue
		}
		close(w.done)
	}
	s.waiters = kept
}
