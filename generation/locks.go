package generation

import (
	"sync"

	"github.com/poiesic/scholia/core"
)

// notebookLocks hands out one mutex per notebook. Entries are dropped when
// no goroutine holds or waits for them.
type notebookLocks struct {
	mu    sync.Mutex
	locks map[core.ID]*notebookLock
}

type notebookLock struct {
	mu   sync.Mutex
	refs int
}

func newNotebookLocks() *notebookLocks {
	return &notebookLocks{locks: make(map[core.ID]*notebookLock)}
}

// lock blocks until the notebook's mutex is held and returns its release func.
func (l *notebookLocks) lock(id core.ID) func() {
	l.mu.Lock()
	nl, ok := l.locks[id]
	if !ok {
		nl = &notebookLock{}
		l.locks[id] = nl
	}
	nl.refs++
	l.mu.Unlock()

	nl.mu.Lock()
	return func() {
		nl.mu.Unlock()
		l.mu.Lock()
		nl.refs--
		if nl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// size returns the number of notebooks with a live lock entry.
func (l *notebookLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
