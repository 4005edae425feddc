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
package set

import (
	"cmp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AnySortedSet_01(t *testing.T) {
	s := NewAnySortedSet(item(3), item(1), item(3), item(2))
	//
	assert.Equal(t, []item{1, 2, 3}, s.ToArray())
	assert.True(t, s.Contains(2))
	assert.False(t, s.Contains(4))
	assert.Equal(t, uint(1), s.Find(2))
}

func Test_AnySortedSet_02(t *testing.T) {
	s := NewAnySortedSet[item]()
	//
	for _, i := range []item{5, 1, 4, 1, 3} {
		s.Insert(i)
	}
	//
	assert.Equal(t, []item{1, 3, 4, 5}, s.ToArray())
	assert.Equal(t, 4, s.Len())
}

func Test_AnySortedSet_03(t *testing.T) {
	s := NewAnySortedSet(item(1), item(3))
	before := s.ToArray()
	//
	assert.True(t, s.InsertSorted(NewAnySortedSet(item(2), item(3))))
	assert.False(t, s.InsertSorted(NewAnySortedSet(item(1))))
	assert.Equal(t, []item{1, 2, 3}, s.ToArray())
	assert.Equal(t, []item{1, 3}, before)
}

// ===================================================================
// Test Helpers
// ===================================================================

type item int

func (lhs item) Cmp(rhs item) int {
	return cmp.Compare(lhs, rhs)
}
