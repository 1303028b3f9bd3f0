package http

import (
	"sync"
	"time"
)

// Simple in-memory rate limiter, counted per client per minute.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	limit        int
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		limit:       limit,
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	info, exists := rl.clients[client]
	if !exists {
		rl.clients[client] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Counter resets after a minute of inactivity.
	if now.Sub(info.lastRequest) > time.Minute {
		info.requests = 1
		info.lastRequest = now
		return true
	}

	info.requests++
	info.lastRequest = now
	return info.requests <= rl.limit
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes clients idle longer than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for client, info := range rl.clients {
		if info.lastRequest.Before(cutoff) {
			delete(rl.clients, client)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
