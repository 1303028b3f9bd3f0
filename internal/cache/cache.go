// Package cache provides a small in-process TTL cache used to avoid
// recomputing dashboard summaries and report previews on every request.
package cache

import "time"

// Cache is the read/write surface handlers depend on.
type Cache[T any] interface {
	Get(key string) (T, bool)

	Set(key string, data T)

	Delete(key string)

	// DeletePrefix removes every entry whose key starts with prefix and
	// returns the number removed. Used to invalidate all of a user's
	// entries after a write.
	DeletePrefix(prefix string) int

	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs periodic expiry cleanup for a set of caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the cleanup rotation. Not safe to call after
// StartCleanup.
func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

// StartCleanup begins sweeping registered caches at the given interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, c := range m.caches {
				c.CleanExpired()
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the cleanup goroutine and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
