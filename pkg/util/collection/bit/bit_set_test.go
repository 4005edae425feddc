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
package bit

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_BitSet_00(t *testing.T) {
	check_BitSet_Insert(t, 5, 10)
}

func Test_BitSet_01(t *testing.T) {
	// Really hammer it.
	for i := 0; i < 1000; i++ {
		check_BitSet_Insert(t, 10, 128)
	}
}

func Test_BitSet_02(t *testing.T) {
	check_BitSet_Insert(t, 100, 256)
}

func Test_BitSet_03(t *testing.T) {
	check_BitSet_Insert(t, 1000, 512)
}

func Test_BitSet_04(t *testing.T) {
	check_BitSet_Insert(t, 100000, 1024)
}

func Test_BitSet_Remove_01(t *testing.T) {
	set := toBitSet([]uint{1, 64, 65, 200})
	set.Remove(64)
	set.Remove(1000)
	//
	assert.Equal(t, []uint{1, 65, 200}, set.Elements())
	assert.Equal(t, "[1, 65, 200]", set.String())
	assert.False(t, set.Contains(64))
	assert.Equal(t, uint(3), set.Count())
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_BitSet_Insert(t *testing.T, n uint, m uint) {
	var (
		items = make([]uint, n)
		seen  = make(map[uint]bool)
	)
	//
	for i := range items {
		items[i] = rand.UintN(m)
		seen[items[i]] = true
	}
	//
	bset := toBitSet(items)
	count := uint(len(seen))
	//
	assert.Equal(t, count, bset.Count(), "insert")
	assert.Equal(t, count, uint(len(bset.Elements())), "elements")
	//
	for i := uint(0); i < m; i++ {
		assert.Equal(t, seen[i], bset.Contains(i), "item %d (insert)", i)
	}
	//
	assert.True(t, slices.IsSorted(bset.Elements()))
}

func toBitSet(items []uint) Set {
	set := Set{}
	for _, v := range items {
		set.Insert(v)
	}

	return set
}
