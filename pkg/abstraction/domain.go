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

// Domain is the abstract domain of predicate abstraction, ordered by
// entailment.
type Domain struct {
	lattice *Lattice
}

// NewDomain constructs a domain over a given lattice.
func NewDomain(lattice *Lattice) *Domain {
	return &Domain{lattice}
}

// Top returns the greatest element, denoting all states.
func (d *Domain) Top() *Formula {
	return d.lattice.Top()
}

// Bottom returns the least element, denoting no states.
func (d *Domain) Bottom() *Formula {
	return d.lattice.Bottom()
}

// LessOrEqual checks whether one element is below another.
func (d *Domain) LessOrEqual(a *Formula, b *Formula) bool {
	return d.lattice.Entails(a, b)
}

// Join returns the least upper bound of two elements.
func (d *Domain) Join(a *Formula, b *Formula) *Formula {
	return d.lattice.Or(a, b)
}

// IsBottom checks whether an element denotes no states.
func (d *Domain) IsBottom(a *Formula) bool {
	return d.lattice.IsFalse(a)
}
