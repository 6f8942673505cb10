package usecase

import "sync"

// matchLocks hands out one RWMutex per game id. Mutations of a match hold the write lock
// for the whole load-apply-store cycle; status reads hold the read lock.
type matchLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[string]*sync.RWMutex)}
}

func (that *matchLocks) get(gameID string) *sync.RWMutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[gameID]
	if !ok {
		lock = &sync.RWMutex{}
		that.locks[gameID] = lock
	}

	return lock
}

// forget drops the lock of a deleted game.
func (that *matchLocks) forget(gameID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.locks, gameID)
}
