package cache

import (
	"sync"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

type ttlEntry struct {
	value     []byte
	expiresAt time.Time
}

// ttlMap is a mutex-guarded map with per-key expiry and a background sweeper.
// Expired keys are invisible even before the sweeper removes them.
type ttlMap struct {
	mu        sync.Mutex
	entries   map[string]ttlEntry
	now       func() time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newTTLMap(sweepEvery time.Duration) *ttlMap {
	m := &ttlMap{
		entries: make(map[string]ttlEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	m.wg.Add(1)
	go m.sweepLoop(sweepEvery)
	return m
}

func (m *ttlMap) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (m *ttlMap) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	m.entries[key] = ttlEntry{value: value, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()
}

// setNX stores key only if it is absent or expired and reports whether it did
func (m *ttlMap) setNX(key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	m.entries[key] = ttlEntry{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (m *ttlMap) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *ttlMap) sweep() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

func (m *ttlMap) sweepLoop(every time.Duration) {
	defer m.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *ttlMap) close() {
	m.closeOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
}
