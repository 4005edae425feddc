// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package abstraction

import (
	"slices"

	"github.com/consensys/go-cegar/pkg/util/collection/hash"
	log "github.com/sirupsen/logrus"
)

// DefaultCacheSize is the default capacity of each abstraction cache.
const DefaultCacheSize = 100000

// CacheStats records how effective a cache has been.
type CacheStats struct {
	Hits      uint
	Misses    uint
	Evictions uint
	Size      uint
}

type cacheEntry[V any] struct {
	value V
	stamp uint64
}

// Cache memoises the results of prover queries.  Every access refreshes the
// timestamp of an entry and, when the cache exceeds its capacity, the older
// half of its entries (by timestamp) are evicted together.  Since entries are
// pure query results, a cache never affects what is computed, only how
// quickly.
type Cache[K hash.Hasher[K], V any] struct {
	name     string
	capacity uint
	entries  *hash.Map[K, *cacheEntry[V]]
	// Logical clock
	tick  uint64
	stats CacheStats
}

// NewCache constructs an empty cache with a given capacity.
func NewCache[K hash.Hasher[K], V any](name string, capacity uint) *Cache[K, V] {
	return &Cache[K, V]{
		name:     name,
		capacity: capacity,
		entries:  hash.NewMap[K, *cacheEntry[V]](min(capacity, 1024)),
	}
}

// Get returns the value associated with a given key, if one exists.
func (p *Cache[K, V]) Get(key K) (V, bool) {
	if e, ok := p.entries.Get(key); ok {
		p.tick++
		e.stamp = p.tick
		p.stats.Hits++
		//
		return e.value, true
	}
	//
	var empty V
	//
	p.stats.Misses++
	//
	return empty, false
}

// Put associates a value with a given key.
func (p *Cache[K, V]) Put(key K, value V) {
	p.tick++
	//
	if e, ok := p.entries.Get(key); ok {
		e.value, e.stamp = value, p.tick
		return
	}
	//
	p.entries.Insert(key, &cacheEntry[V]{value, p.tick})
	//
	if p.entries.Size() > p.capacity {
		p.evict()
	}
}

// Size returns the number of entries in this cache.
func (p *Cache[K, V]) Size() uint {
	return p.entries.Size()
}

// Stats returns the statistics for this cache.
func (p *Cache[K, V]) Stats() CacheStats {
	stats := p.stats
	stats.Size = p.entries.Size()
	//
	return stats
}

// Clear removes all entries from this cache.
func (p *Cache[K, V]) Clear() {
	p.entries.Clear()
}

// evict removes the older half of all entries.
func (p *Cache[K, V]) evict() {
	type aged struct {
		key   K
		stamp uint64
	}
	//
	var all []aged
	//
	p.entries.ForEach(func(k K, e *cacheEntry[V]) {
		all = append(all, aged{k, e.stamp})
	})
	//
	slices.SortFunc(all, func(a, b aged) int {
		switch {
		case a.stamp < b.stamp:
			return -1
		case a.stamp > b.stamp:
			return 1
		default:
			return 0
		}
	})
	//
	n := (len(all) + 1) / 2
	//
	for _, e := range all[:n] {
		p.entries.Remove(e.key)
	}
	//
	p.stats.Evictions += uint(n)
	log.Debugf("evicted %d entries from %s cache", n, p.name)
}
