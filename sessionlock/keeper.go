// Package sessionlock serializes all mutation of a market session behind a
// per-session mutex. Partial application of a turn or auction transition
// would corrupt the rotation or the price, so every engine operation runs
// end to end under the session's lock; operations on different sessions
// proceed in parallel.
package sessionlock

import "sync"

type Keeper struct {
	lock  sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeeper() *Keeper {
	return &Keeper{locks: map[string]*sync.Mutex{}}
}

func (k *Keeper) mutexFor(sessionID string) *sync.Mutex {
	k.lock.Lock()
	defer k.lock.Unlock()
	mutex, ok := k.locks[sessionID]
	if !ok {
		mutex = &sync.Mutex{}
		k.locks[sessionID] = mutex
	}
	return mutex
}

func (k *Keeper) Lock(sessionID string) {
	k.mutexFor(sessionID).Lock()
}

func (k *Keeper) Unlock(sessionID string) {
	k.mutexFor(sessionID).Unlock()
}
