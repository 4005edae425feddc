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
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/dalzilio/rudd"
	"github.com/pkg/errors"
)

// ErrTooManyPredicates is returned when a predicate's index exceeds the number
// of variables available in the boolean lattice.
var ErrTooManyPredicates = errors.New("too many predicates for lattice")

// bdd captures the operations of the underlying BDD library used by the
// lattice.  Nodes never escape this package.
type bdd interface {
	True() rudd.Node
	False() rudd.Node
	Ithvar(i int) rudd.Node
	NIthvar(i int) rudd.Node
	Not(n rudd.Node) rudd.Node
	And(n ...rudd.Node) rudd.Node
	Or(n ...rudd.Node) rudd.Node
	Imp(n1, n2 rudd.Node) rudd.Node
	Equal(n1, n2 rudd.Node) bool
	Errored() bool
	Error() string
}

// Formula is an abstract formula, i.e. a boolean combination of predicates
// denoting a set of concrete states.  Formulas are immutable, and are
// represented by a BDD node over predicate indices alongside an equivalent
// formula over predicate indicators.
type Formula struct {
	node     rudd.Node
	symbolic formula.Formula
}

// Symbolic returns this abstract formula as a formula over predicate
// indicators.
func (p *Formula) Symbolic() formula.Formula {
	return p.symbolic
}

func (p *Formula) String() string {
	return p.symbolic.String()
}

// Lattice is the boolean lattice of abstract formulas.
type Lattice struct {
	bdd    bdd
	varnum int
	top    *Formula
	bottom *Formula
	// Predicates registered as lattice variables, indexed by ID.
	predicates []*predicate.Predicate
}

// NewLattice constructs a new lattice with a given number of variables, and
// given initial node and cache sizes for the underlying BDD.
func NewLattice(varnum, nodesize, cachesize int) (*Lattice, error) {
	b, err := rudd.New(varnum, rudd.Nodesize(nodesize), rudd.Cachesize(cachesize))
	//
	if err != nil {
		return nil, errors.Wrap(err, "initialising BDD")
	}
	//
	return newLattice(b, varnum), nil
}

func newLattice(b bdd, varnum int) *Lattice {
	return &Lattice{
		bdd:    b,
		varnum: varnum,
		top:    &Formula{b.True(), formula.True},
		bottom: &Formula{b.False(), formula.False},
	}
}

// Top returns the abstract formula denoting all states.
func (l *Lattice) Top() *Formula {
	return l.top
}

// Bottom returns the abstract formula denoting no states.
func (l *Lattice) Bottom() *Formula {
	return l.bottom
}

// Var returns the abstract formula denoting exactly those states satisfying a
// given predicate.
func (l *Lattice) Var(pred *predicate.Predicate) (*Formula, error) {
	id := int(pred.ID())
	//
	if id >= l.varnum {
		return nil, errors.Wrapf(ErrTooManyPredicates, "predicate %d exceeds %d variables", id, l.varnum)
	}
	//
	for len(l.predicates) <= id {
		l.predicates = append(l.predicates, nil)
	}
	//
	l.predicates[id] = pred
	//
	return &Formula{l.bdd.Ithvar(id), pred.Indicator()}, nil
}

// Not returns the complement of an abstract formula.
func (l *Lattice) Not(f *Formula) *Formula {
	return l.make(l.bdd.Not(f.node), formula.MkNot(f.symbolic))
}

// And returns the meet of zero or more abstract formulas.
func (l *Lattice) And(fs ...*Formula) *Formula {
	var (
		nodes = make([]rudd.Node, len(fs))
		syms  = make([]formula.Formula, len(fs))
	)
	//
	for i, f := range fs {
		nodes[i], syms[i] = f.node, f.symbolic
	}
	//
	if len(fs) == 0 {
		return l.top
	}
	//
	return l.reuse(l.make(l.bdd.And(nodes...), formula.MkAnd(syms...)), fs)
}

// Or returns the join of zero or more abstract formulas.
func (l *Lattice) Or(fs ...*Formula) *Formula {
	var (
		nodes = make([]rudd.Node, len(fs))
		syms  = make([]formula.Formula, len(fs))
	)
	//
	for i, f := range fs {
		nodes[i], syms[i] = f.node, f.symbolic
	}
	//
	if len(fs) == 0 {
		return l.bottom
	}
	//
	return l.reuse(l.make(l.bdd.Or(nodes...), formula.MkOr(syms...)), fs)
}

// Entails checks whether every state denoted by one abstract formula is
// denoted by another.
func (l *Lattice) Entails(a *Formula, b *Formula) bool {
	return l.bdd.Equal(l.bdd.Imp(a.node, b.node), l.bdd.True())
}

// IsTrue checks whether an abstract formula denotes all states.
func (l *Lattice) IsTrue(f *Formula) bool {
	return l.bdd.Equal(f.node, l.bdd.True())
}

// IsFalse checks whether an abstract formula denotes no states.
func (l *Lattice) IsFalse(f *Formula) bool {
	return l.bdd.Equal(f.node, l.bdd.False())
}

// Err returns any error raised by the underlying BDD (e.g. when it runs out
// of nodes).
func (l *Lattice) Err() error {
	if l.bdd.Errored() {
		return errors.New(l.bdd.Error())
	}
	//
	return nil
}

// ToConcrete returns the (uninstantiated) formula over program variables
// denoted by an abstract formula, obtained by replacing each indicator with
// the definition of its predicate.
func (l *Lattice) ToConcrete(f *Formula) formula.Formula {
	mapping := make(map[string]formula.Formula)
	//
	for _, pred := range l.predicates {
		if pred != nil {
			mapping[pred.Indicator().Name] = pred.Definition()
		}
	}
	//
	return formula.Substitute(f.symbolic, mapping)
}

// make constructs an abstract formula, normalising the symbolic formula of
// constants.
func (l *Lattice) make(node rudd.Node, symbolic formula.Formula) *Formula {
	switch {
	case l.bdd.Equal(node, l.bdd.True()):
		return l.top
	case l.bdd.Equal(node, l.bdd.False()):
		return l.bottom
	default:
		return &Formula{node, symbolic}
	}
}

// reuse returns an operand equivalent to a result, if one exists, in order to
// keep symbolic formulas small.
func (l *Lattice) reuse(result *Formula, operands []*Formula) *Formula {
	for _, f := range operands {
		if l.bdd.Equal(result.node, f.node) {
			return f
		}
	}
	//
	return result
}
