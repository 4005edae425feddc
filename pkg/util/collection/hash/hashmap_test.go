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
package hash

import (
	"math/rand"
	"testing"
)

func Test_HashMap_01(t *testing.T) {
	items := []uint{1, 2, 3, 4, 3, 2, 1}
	check_HashMap(t, items)
}

func Test_HashMap_02(t *testing.T) {
	items := generateRandomUints(10, 32)
	check_HashMap(t, items)
}

func Test_HashMap_03(t *testing.T) {
	items := generateRandomUints(100, 32)
	check_HashMap(t, items)
}

func Test_HashMap_04(t *testing.T) {
	items := generateRandomUints(1000, 1024)
	check_HashMap(t, items)
}

func Test_HashMap_05(t *testing.T) {
	items := generateRandomUints(100000, 1<<20)
	check_HashMap(t, items)
}

func Test_HashMap_Remove_01(t *testing.T) {
	items := []uint{1, 2, 3, 4, 5, 6, 7, 8, 9, 17, 33}
	check_HashMapRemove(t, items)
}

func Test_HashMap_Remove_02(t *testing.T) {
	items := generateRandomUints(1000, 64)
	check_HashMapRemove(t, items)
}

func Test_HashArray_01(t *testing.T) {
	a := NewArray([]testKey{{1}, {2}, {3}})
	b := NewArray([]testKey{{1}, {2}, {3}})
	c := NewArray([]testKey{{1}, {3}, {2}})
	//
	if !a.Equals(b) || a.Hash() != b.Hash() {
		t.Errorf("expected equal arrays with equal hashes")
	}
	//
	if a.Equals(c) {
		t.Errorf("expected distinct arrays")
	}
}

// ===================================================================
// Test Helpers
// ===================================================================

// testKey deliberately hashes into only a handful of buckets, such that
// collisions are exercised.
type testKey struct {
	value uint
}

func (p testKey) Equals(other testKey) bool {
	return p.value == other.value
}

func (p testKey) Hash() uint64 {
	return uint64(p.value % 8)
}

func check_HashMap(t *testing.T, items []uint) {
	gmap := initGoMap(items)
	hmap := NewMap[testKey, uint](0)
	// Insert items
	for key, val := range gmap {
		hmap.Insert(testKey{key}, val)
	}
	// Sanity check number of unique items
	if hmap.Size() != uint(len(gmap)) {
		t.Errorf("expected %d items, got %d", len(gmap), hmap.Size())
	}
	// Sanity check containership
	for key, val := range gmap {
		if !hmap.ContainsKey(testKey{key}) {
			t.Errorf("missing key %d", key)
		} else if v, ok := hmap.Get(testKey{key}); !ok {
			t.Errorf("missing item %d=>%d", key, val)
		} else if v != val {
			t.Errorf("expecting %d=>%d, got %d=>%d", key, val, key, v)
		}
	}
	// Sanity check iteration
	count := uint(0)
	hmap.ForEach(func(k testKey, v uint) {
		if gmap[k.value] != v {
			t.Errorf("unexpected item %d=>%d", k.value, v)
		}
		count++
	})
	//
	if count != hmap.Size() {
		t.Errorf("iterated %d items, expected %d", count, hmap.Size())
	}
}

func check_HashMapRemove(t *testing.T, items []uint) {
	gmap := initGoMap(items)
	hmap := NewMap[testKey, uint](0)
	//
	for key, val := range gmap {
		hmap.Insert(testKey{key}, val)
	}
	// Remove every other key
	removed := make(map[uint]bool)
	i := 0
	//
	for key := range gmap {
		if i%2 == 0 {
			if !hmap.Remove(testKey{key}) {
				t.Errorf("failed removing key %d", key)
			}

			removed[key] = true
		}
		i++
	}
	//
	if hmap.Size() != uint(len(gmap)-len(removed)) {
		t.Errorf("expected %d items, got %d", len(gmap)-len(removed), hmap.Size())
	}
	//
	for key := range gmap {
		if hmap.ContainsKey(testKey{key}) == removed[key] {
			t.Errorf("unexpected containership for key %d", key)
		}
	}
	// Removing twice fails
	for key := range removed {
		if hmap.Remove(testKey{key}) {
			t.Errorf("removed key %d twice", key)
		}
	}
}

func initGoMap(items []uint) map[uint]uint {
	gmap := make(map[uint]uint)
	//
	for _, v := range items {
		if w, ok := gmap[v]; ok {
			gmap[v] = w + 1
		} else {
			gmap[v] = 1
		}
	}
	//
	return gmap
}

func generateRandomUints(n uint, m uint) []uint {
	items := make([]uint, n)
	for i := uint(0); i < n; i++ {
		items[i] = uint(rand.Intn(int(m)))
	}

	return items
}
