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
	"hash/fnv"
)

// A reasonably simple hashmap implementation which permits collisions.  Keys
// are compared structurally using Equals, with Hash only selecting a bucket.
// This matters for formulas, where two syntactically different objects can be
// structurally equal and must therefore share a single cache entry.

// Hasher provides a generic definition of a hashing function suitable for use
// within the hashmap.  This is similar to the Hasher interface provided in
// go-set, except that it additionally includes equality.
type Hasher[T any] interface {
	// Check whether two items are equal (or not).
	Equals(T) bool
	// Return a suitable hashcode.
	Hash() uint64
}

const (
	offset64 uint64 = 14695981039346656037
	prime64  uint64 = 1099511628211
)

// Seed returns the initial value for an incremental FNV1a hash computation,
// mixed with a tag distinguishing the kind of object being hashed.
func Seed(tag uint64) uint64 {
	return Mix(offset64, tag)
}

// Mix folds a 64-bit value into a running FNV1a hash.
func Mix(hash uint64, value uint64) uint64 {
	hash ^= value
	hash *= prime64
	//
	return hash
}

// String generates a 64-bit hashcode for a given string.
func String(s string) uint64 {
	hash := fnv.New64a()
	hash.Write([]byte(s))
	// Done
	return hash.Sum64()
}

// ============================================================================
// Array Implementation
// ============================================================================

// Array provides a mechanism for hashing sequences of hashable items, such as
// a tuple of formulas forming a composite cache key.
type Array[F Hasher[F]] struct {
	elements []F
}

// NewArray constructs a new array key.
func NewArray[F Hasher[F]](elements []F) Array[F] {
	return Array[F]{elements}
}

// Elements returns the elements making up this key.
func (p Array[F]) Elements() []F {
	return p.elements
}

// Equals compares two arrays element-wise.
func (p Array[F]) Equals(other Array[F]) bool {
	var (
		n = len(p.elements)
		m = len(other.elements)
	)
	//
	if n != m {
		return false
	}
	//
	for i := range n {
		if !p.elements[i].Equals(other.elements[i]) {
			return false
		}
	}
	//
	return true
}

// Hash generates a 64-bit hashcode from the underlying elements.
func (p Array[F]) Hash() uint64 {
	hash := offset64
	//
	for _, c := range p.elements {
		hash = Mix(hash, c.Hash())
	}
	//
	return hash
}
