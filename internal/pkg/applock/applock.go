package applock

import "sync"

// Registry hands out one mutex per application so that at most one mutating
// workflow command per application is in flight. Acquire fails fast on
// contention; callers surface that as a retryable error instead of queueing.
type Registry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{locks: make(map[string]*sync.Mutex)}
}

// Acquire tries to take the lock for applicationID. On success it returns a
// release func and true; on contention it returns false.
func (r *Registry) Acquire(applicationID string) (func(), bool) {
	r.mu.Lock()
	l, ok := r.locks[applicationID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[applicationID] = l
	}
	r.mu.Unlock()

	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}
