// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package orchestrator

import (
	"sync"

	"github.com/niemforge/niemgraph/pkg/mapping"
)

// mappingCache is a read-mostly, bundleId-keyed cache of active
// GraphMappings (§4.5 step 1). A sync.RWMutex favors concurrent readers,
// matching the teacher's storage.EmbeddedBackend guard style, since the
// common path across a batch is many concurrent reads of the same entry
// with rare writes on cache miss or mapping activation.
type mappingCache struct {
	mu      sync.RWMutex
	entries map[string]*mapping.GraphMapping
}

func newMappingCache() *mappingCache {
	return &mappingCache{entries: make(map[string]*mapping.GraphMapping)}
}

func (c *mappingCache) get(bundleID string) (*mapping.GraphMapping, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.entries[bundleID]
	return m, ok
}

func (c *mappingCache) put(bundleID string, m *mapping.GraphMapping) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[bundleID] = m
}

// invalidate drops a bundle's cached mapping, used when a bundle is
// re-activated with a newly compiled mapping.
func (c *mappingCache) invalidate(bundleID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, bundleID)
}
