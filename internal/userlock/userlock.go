// Package userlock serializes work per key inside one process.
package userlock

import (
	"sync"

	"github.com/google/uuid"
)

type entry struct {
	mu   sync.Mutex
	refs int
}

// Locker hands out one mutex per user id. Entries are reference counted and
// dropped once no goroutine holds or waits on them.
type Locker struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
}

func New() *Locker {
	return &Locker{entries: make(map[uuid.UUID]*entry)}
}

// Lock blocks until the caller owns id and returns the matching unlock func.
func (l *Locker) Lock(id uuid.UUID) (unlock func()) {
	l.mu.Lock()
	e, ok := l.entries[id]
	if !ok {
		e = &entry{}
		l.entries[id] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.entries, id)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of ids currently locked or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
