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
	"cmp"
	"fmt"

	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
)

// Predicate is an atomic fact about program variables, used as one dimension
// of the abstract domain.  Each predicate is identified by a propositional
// indicator variable, whose index doubles as the predicate's variable in the
// boolean lattice.  Predicates are immutable.
type Predicate struct {
	id         uint
	indicator  *formula.Prop
	definition formula.Formula
}

// ID returns the unique index of this predicate.
func (p *Predicate) ID() uint {
	return p.id
}

// Indicator returns the propositional variable standing for this predicate.
func (p *Predicate) Indicator() *formula.Prop {
	return p.indicator
}

// Definition returns the (uninstantiated) formula defining this predicate.
func (p *Predicate) Definition() formula.Formula {
	return p.definition
}

// Cmp orders predicates by their index.
func (p *Predicate) Cmp(other *Predicate) int {
	return cmp.Compare(p.id, other.id)
}

func (p *Predicate) String() string {
	return fmt.Sprintf("%s:%s", p.indicator, p.definition)
}

// Manager is responsible for allocating predicates, such that structurally
// equal definitions always give the same predicate.
type Manager struct {
	predicates []*Predicate
	index      *hash.Map[formula.Formula, *Predicate]
}

// NewManager constructs an empty predicate manager.
func NewManager() *Manager {
	return &Manager{nil, hash.NewMap[formula.Formula, *Predicate](64)}
}

// MakePredicate returns the predicate for a given definition, allocating it if
// it does not already exist.
func (p *Manager) MakePredicate(definition formula.Formula) *Predicate {
	if pred, ok := p.index.Get(definition); ok {
		return pred
	}
	//
	id := uint(len(p.predicates))
	pred := &Predicate{id, &formula.Prop{Name: fmt.Sprintf("PRED%d", id)}, definition}
	p.predicates = append(p.predicates, pred)
	p.index.Insert(definition, pred)
	//
	return pred
}

// Get returns the predicate with a given index.
func (p *Manager) Get(id uint) *Predicate {
	return p.predicates[id]
}

// Size returns the number of predicates allocated.
func (p *Manager) Size() uint {
	return uint(len(p.predicates))
}

// ByIndicator returns the predicate for a given indicator name, or nil if
// there is none.
func (p *Manager) ByIndicator(name string) *Predicate {
	var id uint
	//
	if _, err := fmt.Sscanf(name, "PRED%d", &id); err != nil || id >= p.Size() {
		return nil
	}
	//
	return p.predicates[id]
}
