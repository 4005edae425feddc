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
package predicate

import (
	"slices"
	"strings"

	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/util/collection/set"
)

// Map records the predicates which are relevant at each location.  The set of
// predicates at a location only ever grows.
type Map struct {
	location map[*cfa.Location]*set.AnySortedSet[*Predicate]
}

// NewMap constructs an empty predicate map.
func NewMap() *Map {
	return &Map{make(map[*cfa.Location]*set.AnySortedSet[*Predicate])}
}

// RelevantPredicates returns the predicates relevant at a given location,
// ordered by their index.
func (p *Map) RelevantPredicates(loc *cfa.Location) []*Predicate {
	if preds, ok := p.location[loc]; ok {
		return preds.ToArray()
	}
	//
	return nil
}

// Update adds a set of predicates to those relevant at a given location, and
// reports whether this changed anything.
func (p *Map) Update(loc *cfa.Location, preds []*Predicate) bool {
	var (
		added       = set.NewAnySortedSet(preds...)
		current, ok = p.location[loc]
	)
	//
	if added.Len() == 0 {
		return false
	} else if !ok {
		p.location[loc] = added
		return true
	}
	//
	return current.InsertSorted(added)
}

// Size returns the total number of (location, predicate) pairs recorded.
func (p *Map) Size() uint {
	var n uint
	//
	for _, preds := range p.location {
		n += uint(preds.Len())
	}
	//
	return n
}

func (p *Map) String() string {
	var (
		builder strings.Builder
		locs    []*cfa.Location
	)
	//
	for loc := range p.location {
		locs = append(locs, loc)
	}
	//
	slices.SortFunc(locs, func(l1, l2 *cfa.Location) int {
		return int(l1.ID) - int(l2.ID)
	})
	//
	for _, loc := range locs {
		builder.WriteString(loc.String())
		builder.WriteString(":")
		//
		for _, pred := range p.location[loc].ToArray() {
			builder.WriteString(" ")
			builder.WriteString(pred.definition.String())
		}
		//
		builder.WriteString("\n")
	}
	//
	return builder.String()
}
