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
package bounded

import (
	"fmt"
	"slices"

	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
)

// MaxTuples bounds the number of value combinations enumerated when encoding
// a single atom.  Atoms over more combinations are rejected as too complex.
const MaxTuples = 1 << 20

// Domain determines the range of integer values considered by a bounded
// prover.  Every variable and function application takes a value in the
// (inclusive) range [Min, Max].  Constants outside this range cannot be
// encoded.
type Domain struct {
	Min int64
	Max int64
}

// DefaultDomain is the domain used when none is given.
var DefaultDomain = Domain{-16, 16}

// Size returns the number of values in this domain.
func (d Domain) Size() int64 {
	return d.Max - d.Min + 1
}

// Contains checks whether a given value lies in this domain.
func (d Domain) Contains(v int64) bool {
	return v >= d.Min && v <= d.Max
}

// leaf records the one-hot encoding of a variable or function application.
// The literal for value v is base+(v-Min).
type leaf struct {
	term formula.Term
	base z.Var
}

// encoder translates formulas into clauses for an underlying SAT solver.  The
// clauses it adds are definitional, in the sense that they constrain only
// fresh variables introduced by the encoding.  Therefore, they can be added
// globally and shared across scopes.
type encoder struct {
	domain Domain
	solver *gini.Gini
	// Next unused variable
	next z.Var
	// Literal which is always true
	truth z.Lit
	// Literal which, when assumed, gives every leaf its exact value.
	exact z.Lit
	// Indicates whether the truth of any encoded atom depends upon leaves
	// being bounded by the domain.  If not, solve reports unsatisfiable only
	// for formulas unsatisfiable over the integers.
	bounded bool
	// Encoded leaves
	leaves *hash.Map[formula.Term, *leaf]
	// Encoded function applications, used for functional consistency.
	apps []*formula.App
	// Encoded formulas
	lits *hash.Map[formula.Formula, z.Lit]
	// Statistics
	stats prover.Stats
}

func newEncoder(domain Domain) *encoder {
	e := &encoder{
		domain: domain,
		solver: gini.New(),
		next:   1,
		leaves: hash.NewMap[formula.Term, *leaf](64),
		lits:   hash.NewMap[formula.Formula, z.Lit](256),
	}
	//
	e.truth = e.fresh()
	e.exact = e.fresh()
	e.clause(e.truth)
	//
	return e
}

// fresh allocates a new variable, returning its positive literal.
func (e *encoder) fresh() z.Lit {
	v := e.next
	e.next++
	//
	return v.Pos()
}

// clause adds a clause to the underlying solver.
func (e *encoder) clause(lits ...z.Lit) {
	for _, l := range lits {
		e.solver.Add(l)
	}
	//
	e.solver.Add(z.LitNull)
}

// solve checks satisfiability under a given set of assumptions, returning true
// if satisfiable.  Every leaf takes exactly its value in the domain.
func (e *encoder) solve(assumptions ...z.Lit) (bool, error) {
	return e.check(slices.Concat(assumptions, []z.Lit{e.exact}))
}

// solveRelaxed checks satisfiability under a given set of assumptions, where a
// leaf at either end of the domain stands for every value beyond that end.
// Atoms whose truth is not determined by this are free to take either value.
// Hence, any formula satisfiable over the integers is satisfiable here.
func (e *encoder) solveRelaxed(assumptions ...z.Lit) (bool, error) {
	return e.check(slices.Concat(assumptions, []z.Lit{e.exact.Not()}))
}

func (e *encoder) check(assumptions []z.Lit) (bool, error) {
	e.stats.Queries++
	e.solver.Assume(assumptions...)
	//
	switch e.solver.Solve() {
	case 1:
		return true, nil
	case -1:
		return false, nil
	default:
		return false, prover.ErrUnknown
	}
}

// lit returns a literal equivalent to a given formula, encoding it if
// necessary.
func (e *encoder) lit(f formula.Formula) (z.Lit, error) {
	if l, ok := e.lits.Get(f); ok {
		return l, nil
	}
	//
	l, err := e.encode(f)
	if err != nil {
		return z.LitNull, err
	}
	//
	e.lits.Insert(f, l)
	//
	return l, nil
}

func (e *encoder) encode(f formula.Formula) (z.Lit, error) {
	switch p := f.(type) {
	case *formula.Bool:
		if p.Value {
			return e.truth, nil
		}
		//
		return e.truth.Not(), nil
	case *formula.Prop:
		return e.fresh(), nil
	case *formula.Cmp:
		return e.encodeAtom(p)
	case *formula.Not:
		l, err := e.lit(p.Arg)
		//
		return l.Not(), err
	case *formula.And:
		args, err := e.litsOf(p.Args)
		if err != nil {
			return z.LitNull, err
		}
		//
		return e.and(args), nil
	case *formula.Or:
		args, err := e.litsOf(p.Args)
		if err != nil {
			return z.LitNull, err
		}
		// De Morgan
		for i := range args {
			args[i] = args[i].Not()
		}
		//
		return e.and(args).Not(), nil
	case *formula.Iff:
		lhs, err := e.lit(p.Left)
		if err != nil {
			return z.LitNull, err
		}
		//
		rhs, err := e.lit(p.Right)
		if err != nil {
			return z.LitNull, err
		}
		//
		g := e.fresh()
		e.clause(g.Not(), lhs.Not(), rhs)
		e.clause(g.Not(), lhs, rhs.Not())
		e.clause(g, lhs, rhs)
		e.clause(g, lhs.Not(), rhs.Not())
		//
		return g, nil
	default:
		return z.LitNull, fmt.Errorf("unknown formula %s", f)
	}
}

func (e *encoder) litsOf(formulas []formula.Formula) ([]z.Lit, error) {
	lits := make([]z.Lit, len(formulas))
	//
	for i, f := range formulas {
		l, err := e.lit(f)
		if err != nil {
			return nil, err
		}
		//
		lits[i] = l
	}
	//
	return lits, nil
}

// and returns a literal equivalent to the conjunction of the given literals.
func (e *encoder) and(args []z.Lit) z.Lit {
	g := e.fresh()
	back := make([]z.Lit, 0, len(args)+1)
	//
	for _, arg := range args {
		e.clause(g.Not(), arg)
		back = append(back, arg.Not())
	}
	//
	e.clause(append(back, g)...)
	//
	return g
}

// encodeAtom encodes a comparison by enumerating every combination of values
// for the leaves it contains.  Combinations for which the atom's truth depends
// upon the bounds of the domain are constrained only when the exact literal
// holds.
func (e *encoder) encodeAtom(atom *formula.Cmp) (z.Lit, error) {
	var leaves []*leaf
	//
	if c, ok := e.outsideDomain(atom.Left, atom.Right); ok {
		return z.LitNull, errors.Wrapf(prover.ErrUnknown, "constant %d outside domain in %s", c, atom)
	}
	//
	for _, t := range topLeaves(atom, nil) {
		l, err := e.leafOf(t)
		if err != nil {
			return z.LitNull, err
		}
		//
		leaves = append(leaves, l)
	}
	//
	tuples := int64(1)
	for range leaves {
		tuples *= e.domain.Size()
		//
		if tuples > MaxTuples {
			return z.LitNull, errors.Wrapf(prover.ErrUnknown, "atom too complex %s", atom)
		}
	}
	//
	var (
		g      = e.fresh()
		values = make([]int64, len(leaves))
		env    = newTupleEnv(e.domain, leaves, values)
		clause = make([]z.Lit, len(leaves)+1, len(leaves)+2)
	)
	//
	for i := range values {
		values[i] = e.domain.Min
	}
	//
	for {
		// (leaves = values) ==> (g <=> holds)
		for i, l := range leaves {
			clause[i] = e.valueLit(l, values[i]).Not()
		}
		//
		if atom.Op.Holds(env.eval(atom.Left), env.eval(atom.Right)) {
			clause[len(leaves)] = g
		} else {
			clause[len(leaves)] = g.Not()
		}
		//
		if _, ok := compareIntervals(atom.Op, env.saturated(atom.Left), env.saturated(atom.Right)); ok {
			e.clause(clause...)
		} else {
			e.bounded = true
			e.clause(append(clause, e.exact.Not())...)
		}
		// Advance to next tuple
		if !e.nextTuple(values) {
			return g, nil
		}
	}
}

func (e *encoder) nextTuple(values []int64) bool {
	for i := range values {
		if values[i] < e.domain.Max {
			values[i]++
			return true
		}
		//
		values[i] = e.domain.Min
	}
	//
	return false
}

// valueLit returns the literal indicating that a leaf has a given value.
func (e *encoder) valueLit(l *leaf, value int64) z.Lit {
	return (l.base + z.Var(value-e.domain.Min)).Pos()
}

// leafOf returns the encoding of a given variable or function application,
// creating it if necessary.
func (e *encoder) leafOf(t formula.Term) (*leaf, error) {
	if l, ok := e.leaves.Get(t); ok {
		return l, nil
	}
	//
	var (
		n    = z.Var(e.domain.Size())
		l    = &leaf{t, e.next}
		lits = make([]z.Lit, n)
	)
	//
	e.next += n
	e.leaves.Insert(t, l)
	// Exactly one value
	for i := range n {
		lits[i] = (l.base + i).Pos()
	}
	//
	e.clause(lits...)
	//
	for i := range lits {
		for j := i + 1; j < len(lits); j++ {
			e.clause(lits[i].Not(), lits[j].Not())
		}
	}
	//
	if app, ok := t.(*formula.App); ok {
		if err := e.addFunctionalConsistency(app); err != nil {
			return nil, err
		}
	}
	//
	return l, nil
}

// addFunctionalConsistency ensures that a given function application agrees
// with all other applications of the same function on equal arguments.
func (e *encoder) addFunctionalConsistency(app *formula.App) error {
	others := e.apps
	e.apps = append(e.apps, app)
	//
	for _, other := range others {
		if other.Func != app.Func || other.Index != app.Index || len(other.Args) != len(app.Args) {
			continue
		}
		//
		clause := make([]z.Lit, 0, len(app.Args)+1)
		//
		for i := range app.Args {
			l, err := e.lit(formula.Eq(app.Args[i], other.Args[i]))
			if err != nil {
				return err
			}
			//
			clause = append(clause, l.Not())
		}
		//
		l, err := e.lit(formula.Eq(app, other))
		if err != nil {
			return err
		}
		//
		e.clause(append(clause, l)...)
	}
	//
	return nil
}

// value returns the value of a given leaf in the most recent model.
func (e *encoder) value(l *leaf) int64 {
	for v := e.domain.Min; v <= e.domain.Max; v++ {
		if e.solver.Value(e.valueLit(l, v)) {
			return v
		}
	}
	// Unreachable, since every leaf has exactly one value.
	return e.domain.Min
}

// model returns the values of all encoded leaves in the most recent model.
func (e *encoder) model() map[string]int64 {
	m := make(map[string]int64)
	//
	e.leaves.ForEach(func(t formula.Term, l *leaf) {
		m[t.String()] = e.value(l)
	})
	//
	return m
}

// topLeaves collects the variables and function applications of a comparison,
// without descending into the arguments of applications.
func topLeaves(atom *formula.Cmp, leaves []formula.Term) []formula.Term {
	leaves = collectLeaves(atom.Left, leaves)
	return collectLeaves(atom.Right, leaves)
}

func collectLeaves(t formula.Term, leaves []formula.Term) []formula.Term {
	switch p := t.(type) {
	case *formula.Var, *formula.App:
		for _, l := range leaves {
			if l.Equals(t) {
				return leaves
			}
		}
		//
		return append(leaves, t)
	case *formula.BinOp:
		leaves = collectLeaves(p.Left, leaves)
		return collectLeaves(p.Right, leaves)
	default:
		return leaves
	}
}

// outsideDomain returns the first constant in a given set of terms which lies
// outside the domain, if any.
func (e *encoder) outsideDomain(terms ...formula.Term) (int64, bool) {
	for _, t := range terms {
		switch t := t.(type) {
		case *formula.Const:
			if !e.domain.Contains(t.Value) {
				return t.Value, true
			}
		case *formula.BinOp:
			if c, ok := e.outsideDomain(t.Left, t.Right); ok {
				return c, true
			}
		}
	}
	//
	return 0, false
}

// tupleEnv evaluates terms given values for a fixed sequence of leaves.
type tupleEnv struct {
	domain Domain
	leaves []*leaf
	values []int64
}

func newTupleEnv(domain Domain, leaves []*leaf, values []int64) *tupleEnv {
	return &tupleEnv{domain, leaves, values}
}

func (p *tupleEnv) eval(t formula.Term) int64 {
	switch t := t.(type) {
	case *formula.Const:
		return t.Value
	case *formula.BinOp:
		return formula.ApplyArith(t.Op, p.eval(t.Left), p.eval(t.Right))
	default:
		return p.values[p.indexOf(t)]
	}
}

// saturated evaluates a term where a leaf at either end of the domain stands
// for every value beyond that end.
func (p *tupleEnv) saturated(t formula.Term) interval {
	switch t := t.(type) {
	case *formula.Const:
		return point(t.Value)
	case *formula.BinOp:
		return applyInterval(t.Op, p.saturated(t.Left), p.saturated(t.Right))
	default:
		return p.domain.saturate(p.values[p.indexOf(t)])
	}
}

func (p *tupleEnv) indexOf(t formula.Term) int {
	for i, l := range p.leaves {
		if l.term.Equals(t) {
			return i
		}
	}
	//
	panic(fmt.Sprintf("unknown leaf %s", t))
}
