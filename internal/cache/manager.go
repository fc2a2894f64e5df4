package cache

import (
	"context"
	"sync"
	"time"

	"courier-tracking/internal/carriers"
)

// cachedResult is a cached track result with expiry
type cachedResult struct {
	info      *carriers.TrackInfo
	expiresAt time.Time
}

func (c *cachedResult) expired() bool {
	return time.Now().After(c.expiresAt)
}

// Manager keeps recent track results in memory so repeated lookups of the
// same shipment do not hammer the carrier's website.
type Manager struct {
	memory   sync.Map // map[string]*cachedResult
	disabled bool
	ttl      time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a cache manager. When disabled, Get always misses and
// Set is a no-op.
func NewManager(disabled bool, ttl time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	manager := &Manager{
		disabled: disabled,
		ttl:      ttl,
		ctx:      ctx,
		cancel:   cancel,
	}

	if !disabled {
		go manager.cleanupLoop()
	}

	return manager
}

func key(carrier, trackingNumber string) string {
	return carrier + "/" + trackingNumber
}

// Get retrieves a cached track result, or nil on a miss
func (m *Manager) Get(carrier, trackingNumber string) *carriers.TrackInfo {
	if m.disabled {
		return nil
	}

	value, ok := m.memory.Load(key(carrier, trackingNumber))
	if !ok {
		return nil
	}
	cached := value.(*cachedResult)
	if cached.expired() {
		m.memory.Delete(key(carrier, trackingNumber))
		return nil
	}
	return cached.info
}

// Set stores a track result
func (m *Manager) Set(carrier, trackingNumber string, info *carriers.TrackInfo) {
	if m.disabled {
		return
	}
	m.memory.Store(key(carrier, trackingNumber), &cachedResult{
		info:      info,
		expiresAt: time.Now().Add(m.ttl),
	})
}

// Invalidate drops a single cached result
func (m *Manager) Invalidate(carrier, trackingNumber string) {
	m.memory.Delete(key(carrier, trackingNumber))
}

// Close stops the cleanup goroutine
func (m *Manager) Close() {
	m.cancel()
}

// cleanupLoop periodically evicts expired entries so the map does not grow
// without bound between cache hits.
func (m *Manager) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.memory.Range(func(k, v any) bool {
				if v.(*cachedResult).expired() {
					m.memory.Delete(k)
				}
				return true
			})
		}
	}
}
