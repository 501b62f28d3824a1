package cache

import (
	"context"
	"sync"
	"time"

	"aminashop/backend/internal/domain"
)

type entry struct {
	report    domain.SalesReport
	expiresAt time.Time
}

// MemoryReportCache is a process-local cache used when redis is not configured.
type MemoryReportCache struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemoryReportCache() *MemoryReportCache {
	return &MemoryReportCache{entries: make(map[string]entry)}
}

func (c *MemoryReportCache) Get(_ context.Context, key string) (*domain.SalesReport, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false, nil
	}
	report := e.report
	return &report, true, nil
}

func (c *MemoryReportCache) Set(_ context.Context, key string, value *domain.SalesReport, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{report: *value, expiresAt: now.Add(ttl)}
	return nil
}
