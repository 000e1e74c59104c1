package memory

import (
	"strings"
	"sync"
)

// StationLocks is a lazily-populated set of per-station mutexes. It is
// shared by every storage adapter: the consensus critical section must be
// serialized in-process even when station state lives in postgres.
type StationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStationLocks() *StationLocks {
	return &StationLocks{locks: make(map[string]*sync.Mutex)}
}

// LockStation acquires the mutex scoped to one polling station, creating it
// on first use. The returned closure releases it.
func (l *StationLocks) LockStation(stationID string) func() {
	key := strings.TrimSpace(stationID)
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
