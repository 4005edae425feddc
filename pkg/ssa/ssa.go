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
package ssa

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/consensys/go-cegar/pkg/formula"
)

// DefaultIndex is the index given to a variable which is referenced before
// ever being assigned.  This corresponds to the variable's initial value.
const DefaultIndex uint = 1

// Map records, for each variable, the index of its latest SSA version.
// Function applications are tracked separately for each (instantiated)
// argument tuple, such that "a[i] := 1" advances only the version of "a[i]".
// Maps are immutable, and are modified only by way of a Builder.
type Map struct {
	indices map[string]uint
}

// Empty is the map which assigns no index to any variable.
var Empty = &Map{map[string]uint{}}

// Key returns the key used to identify the SSA version of a given
// (uninstantiated) leaf.  For variables this is their name, whilst for
// function applications it additionally includes the arguments.
func Key(leaf formula.Term) string {
	switch t := leaf.(type) {
	case *formula.Var:
		return t.Name
	case *formula.App:
		return (&formula.App{Func: t.Func, Args: t.Args}).String()
	default:
		panic(fmt.Sprintf("invalid SSA leaf %s", leaf))
	}
}

// Get returns the index for a given key, or false if no index is assigned.
func (p *Map) Get(key string) (uint, bool) {
	index, ok := p.indices[key]
	return index, ok
}

// Size returns the number of keys with an assigned index.
func (p *Map) Size() uint {
	return uint(len(p.indices))
}

// Keys returns the keys of this map in sorted order.
func (p *Map) Keys() []string {
	keys := make([]string, 0, len(p.indices))
	//
	for k := range p.indices {
		keys = append(keys, k)
	}
	//
	slices.Sort(keys)
	//
	return keys
}

// Builder returns a builder initialised with the contents of this map.
func (p *Map) Builder() *Builder {
	return &Builder{maps.Clone(p.indices)}
}

func (p *Map) String() string {
	var builder strings.Builder
	//
	builder.WriteString("{")
	//
	for i, k := range p.Keys() {
		if i != 0 {
			builder.WriteString(", ")
		}
		//
		builder.WriteString(fmt.Sprintf("%s@%d", k, p.indices[k]))
	}
	//
	builder.WriteString("}")
	//
	return builder.String()
}

// Builder is a mutable SSA map used whilst walking a path.  Looking up a key
// without an index assigns it DefaultIndex, thus ensuring subsequent lookups
// agree.
type Builder struct {
	indices map[string]uint
}

// NewBuilder constructs an empty builder.
func NewBuilder() *Builder {
	return &Builder{make(map[string]uint)}
}

// Index returns the current index of a given key, assigning DefaultIndex if
// there is none.
func (p *Builder) Index(key string) uint {
	if index, ok := p.indices[key]; ok {
		return index
	}
	//
	p.indices[key] = DefaultIndex
	//
	return DefaultIndex
}

// Fresh advances the index of a given key, returning the new index.
func (p *Builder) Fresh(key string) uint {
	index := p.Index(key) + 1
	p.indices[key] = index
	//
	return index
}

// Instantiate binds every uninstantiated leaf of a formula to its current
// version in this builder.
func (p *Builder) Instantiate(f formula.Formula) formula.Formula {
	return formula.Instantiate(f, p.lookup)
}

// InstantiateTerm binds every uninstantiated leaf of a term to its current
// version in this builder.
func (p *Builder) InstantiateTerm(t formula.Term) formula.Term {
	return formula.InstantiateTerm(t, p.lookup)
}

func (p *Builder) lookup(leaf formula.Term) uint {
	return p.Index(Key(leaf))
}

// Build returns an immutable snapshot of this builder.
func (p *Builder) Build() *Map {
	return &Map{maps.Clone(p.indices)}
}
