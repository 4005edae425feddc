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
	"fmt"
	"math/bits"
	"strings"
)

// Set is a set of (unsigned) integer values implemented as an array of bits.
// This suits sets over densely allocated identifiers, such as the nodes of an
// arena.
type Set struct {
	words []uint64
}

// Insert a given value into this set.
func (p *Set) Insert(val uint) {
	word := val / 64
	bit := val % 64
	//
	for uint(len(p.words)) <= word {
		p.words = append(p.words, 0)
	}
	//
	p.words[word] |= uint64(1) << bit
}

// Remove a given value from this set.
func (p *Set) Remove(val uint) {
	word := val / 64
	bit := val % 64
	//
	if uint(len(p.words)) > word {
		p.words[word] &^= uint64(1) << bit
	}
}

// Contains checks whether a given value is contained, or not.
func (p *Set) Contains(val uint) bool {
	word := val / 64
	//
	if uint(len(p.words)) <= word {
		return false
	}
	//
	return p.words[word]&(uint64(1)<<(val%64)) != 0
}

// Count returns the number of elements in this set.
func (p *Set) Count() uint {
	count := 0
	//
	for _, w := range p.words {
		count += bits.OnesCount64(w)
	}
	//
	return uint(count)
}

// ForEach applies a given function to each element of this set, in increasing
// order.  The set should not be modified during iteration.
func (p *Set) ForEach(fn func(uint)) {
	for i, w := range p.words {
		for w != 0 {
			bit := uint(bits.TrailingZeros64(w))
			fn(uint(i)*64 + bit)
			w &= w - 1
		}
	}
}

// Elements returns the elements of this set in increasing order.
func (p *Set) Elements() []uint {
	elements := make([]uint, 0, p.Count())
	p.ForEach(func(v uint) { elements = append(elements, v) })
	//
	return elements
}

func (p *Set) String() string {
	var (
		builder strings.Builder
		first   = true
	)
	//
	builder.WriteString("[")
	//
	p.ForEach(func(v uint) {
		if !first {
			builder.WriteString(", ")
		}
		//
		first = false
		//
		builder.WriteString(fmt.Sprintf("%d", v))
	})
	//
	builder.WriteString("]")
	//
	return builder.String()
}
