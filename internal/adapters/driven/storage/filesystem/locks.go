package filesystem

import "sync"

// docLocks holds one mutex per document ID. An entry lives only while
// some goroutine holds or waits for it.
type docLocks struct {
	mu    sync.Mutex
	locks map[string]*docLock
}

type docLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex of documentID and returns its release.
func (l *docLocks) lock(documentID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*docLock)
	}
	entry, ok := l.locks[documentID]
	if !ok {
		entry = &docLock{}
		l.locks[documentID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, documentID)
		}
		l.mu.Unlock()
	}
}

// held returns the number of documents with a live entry.
func (l *docLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
