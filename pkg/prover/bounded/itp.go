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
	"slices"
	"strings"

	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// MaxProjection bounds the number of cubes in an interpolant obtained by
// projection.
const MaxProjection = 4096

// InterpolatingProver is an interpolating prover over a bounded integer
// domain.  Each group is guarded by an activation literal, allowing any
// subset of groups to be checked.
//
// Interpolants are found by searching for a conjunction of candidate atoms
// over the shared leaves which is implied by A and inconsistent with B.
// Candidates are drawn from the atoms of A and B, and from the bounds on each
// shared leaf implied by A.  Should no such conjunction exist, the interpolant
// is the projection of A onto the shared leaves.
type InterpolatingProver struct {
	domain   Domain
	enc      *encoder
	groups   []formula.Formula
	acts     []z.Lit
	hasModel bool
}

var _ prover.InterpolatingProver = (*InterpolatingProver)(nil)
var _ prover.ModelProvider = (*InterpolatingProver)(nil)

// NewInterpolatingProver constructs a new interpolating prover over a given
// domain.
func NewInterpolatingProver(domain Domain) *InterpolatingProver {
	return &InterpolatingProver{domain: domain, enc: newEncoder(domain)}
}

// Init implementation for InterpolatingProver interface.
func (p *InterpolatingProver) Init() error {
	return p.Reset()
}

// AddFormula implementation for InterpolatingProver interface.
func (p *InterpolatingProver) AddFormula(f formula.Formula) (prover.Group, error) {
	l, err := p.enc.lit(f)
	if err != nil {
		return 0, err
	}
	//
	act := p.enc.fresh()
	p.enc.clause(act.Not(), l)
	p.groups = append(p.groups, f)
	p.acts = append(p.acts, act)
	//
	return prover.Group(len(p.groups) - 1), nil
}

// IsUnsat implementation for InterpolatingProver interface.  Since a path is
// only reported infeasible when it is infeasible over the integers, this
// returns prover.ErrUnknown when the conjunction may be satisfiable using
// values beyond the domain.
func (p *InterpolatingProver) IsUnsat() (bool, error) {
	sat, err := p.enc.solve(p.acts...)
	p.hasModel = sat
	//
	if err != nil || sat || !p.enc.bounded {
		return !sat, err
	}
	//
	if sat, err = p.enc.solveRelaxed(p.acts...); err != nil {
		return false, err
	} else if sat {
		return false, errors.Wrap(prover.ErrUnknown, "satisfiable beyond domain")
	}
	//
	return true, nil
}

// Interpolant implementation for InterpolatingProver interface.
func (p *InterpolatingProver) Interpolant(groupA []prover.Group) (formula.Formula, error) {
	var (
		inA    = make([]bool, len(p.groups))
		fa, fb []formula.Formula
		aa, ab []z.Lit
	)
	//
	p.enc.stats.Interpolants++
	p.hasModel = false
	//
	for _, g := range groupA {
		if uint(g) >= uint(len(p.groups)) {
			return nil, errors.Errorf("unknown group %d", g)
		}
		//
		inA[g] = true
	}
	//
	for i, f := range p.groups {
		if inA[i] {
			fa, aa = append(fa, f), append(aa, p.acts[i])
		} else {
			fb, ab = append(fb, f), append(ab, p.acts[i])
		}
	}
	// Trivial case
	if sat, err := p.enc.solve(aa...); err != nil || !sat {
		return formula.False, err
	}
	//
	shared := sharedLeaves(formula.MkAnd(fa...), formula.MkAnd(fb...))
	//
	candidates, err := p.candidates(fa, fb, shared, aa)
	if err != nil {
		return nil, err
	}
	// Retain only those implied by A
	var implied []formula.Formula
	//
	for _, c := range candidates {
		l, err := p.enc.lit(c)
		if err != nil {
			return nil, err
		}
		//
		if sat, err := p.enc.solve(append(aa, l.Not())...); err != nil {
			return nil, err
		} else if !sat {
			implied = append(implied, c)
		}
	}
	//
	if ok, err := p.inconsistent(implied, ab); err != nil {
		return nil, err
	} else if ok {
		return p.minimise(implied, ab)
	}
	//
	log.Debugf("no interpolant amongst %d candidates, falling back to projection", len(candidates))
	//
	return p.project(aa, ab, shared)
}

// Reset implementation for InterpolatingProver interface.
func (p *InterpolatingProver) Reset() error {
	stats := p.enc.stats
	p.enc = newEncoder(p.domain)
	p.enc.stats = stats
	p.groups = nil
	p.acts = nil
	p.hasModel = false
	//
	return nil
}

// Model implementation for ModelProvider interface.
func (p *InterpolatingProver) Model() (map[string]int64, error) {
	if !p.hasModel {
		return nil, errors.New("no model available")
	}
	//
	return p.enc.model(), nil
}

// Stats implementation for StatsProvider interface.
func (p *InterpolatingProver) Stats() prover.Stats {
	return p.enc.stats
}

// candidates returns the candidate interpolant atoms (and their negations)
// which mention only shared leaves.
func (p *InterpolatingProver) candidates(fa, fb []formula.Formula, shared *hash.Map[formula.Term, bool],
	aa []z.Lit) ([]formula.Formula, error) {
	var (
		seen       = hash.NewMap[formula.Formula, bool](64)
		candidates []formula.Formula
	)
	//
	add := func(c formula.Formula) {
		if _, ok := c.(*formula.Bool); !ok && !seen.Insert(c, true) {
			candidates = append(candidates, c)
		}
	}
	//
	for _, atom := range formula.Atoms(formula.MkAnd(append(fa, fb...)...)) {
		if _, ok := atom.(*formula.Cmp); ok && over(atom, shared) {
			add(atom)
			add(formula.MkNot(atom))
		}
	}
	// Bounds on shared leaves
	for _, t := range sortedLeaves(shared) {
		lo, hi, err := p.bounds(t, aa)
		if err != nil {
			return nil, err
		}
		//
		switch {
		case lo == hi:
			add(formula.Eq(t, formula.Int(lo)))
		default:
			if lo > p.domain.Min {
				add(formula.Ge(t, formula.Int(lo)))
			}
			//
			if hi < p.domain.Max {
				add(formula.Le(t, formula.Int(hi)))
			}
		}
	}
	//
	return candidates, nil
}

// bounds determines the smallest and largest values which a given leaf can
// take in a model of A.  This assumes A is satisfiable.
func (p *InterpolatingProver) bounds(t formula.Term, aa []z.Lit) (int64, int64, error) {
	l, err := p.enc.leafOf(t)
	if err != nil {
		return 0, 0, err
	}
	//
	lo, err := p.tighten(t, l, aa, formula.Lt)
	if err != nil {
		return 0, 0, err
	}
	//
	hi, err := p.tighten(t, l, aa, formula.Gt)
	//
	return lo, hi, err
}

// tighten repeatedly searches for a model of A in which a leaf takes a value
// strictly beyond (according to a given comparison) the value it had in the
// previous model.
func (p *InterpolatingProver) tighten(t formula.Term, l *leaf, aa []z.Lit,
	beyond func(formula.Term, formula.Term) formula.Formula) (int64, error) {
	if sat, err := p.enc.solve(aa...); err != nil {
		return 0, err
	} else if !sat {
		return 0, errors.New("interpolant requested for inconsistent A")
	}
	//
	value := p.enc.value(l)
	//
	for {
		lit, err := p.enc.lit(beyond(t, formula.Int(value)))
		if err != nil {
			return 0, err
		}
		//
		if sat, err := p.enc.solve(append(aa, lit)...); err != nil {
			return 0, err
		} else if !sat {
			return value, nil
		}
		//
		value = p.enc.value(l)
	}
}

// inconsistent checks whether a conjunction of formulas is inconsistent with
// the groups activated by a given set of literals.
func (p *InterpolatingProver) inconsistent(conjuncts []formula.Formula, acts []z.Lit) (bool, error) {
	lits, err := p.enc.litsOf(conjuncts)
	if err != nil {
		return false, err
	}
	//
	sat, err := p.enc.solve(append(lits, acts...)...)
	//
	return !sat, err
}

// minimise greedily removes conjuncts whilst remaining inconsistent with B.
// Conjuncts are considered from last to first, such that atoms drawn from A
// are preferred over bounds.
func (p *InterpolatingProver) minimise(conjuncts []formula.Formula, ab []z.Lit) (formula.Formula, error) {
	for i := len(conjuncts) - 1; i >= 0; i-- {
		without := append(append([]formula.Formula{}, conjuncts[:i]...), conjuncts[i+1:]...)
		//
		if ok, err := p.inconsistent(without, ab); err != nil {
			return nil, err
		} else if ok {
			conjuncts = without
		}
	}
	//
	return formula.MkAnd(conjuncts...), nil
}

// project computes the projection of A onto the shared leaves, as a
// disjunction of cubes assigning each shared leaf a value.
func (p *InterpolatingProver) project(aa []z.Lit, ab []z.Lit, shared *hash.Map[formula.Term, bool]) (formula.Formula, error) {
	var (
		leaves []*leaf
		terms  = sortedLeaves(shared)
		cubes  []formula.Formula
		block  = p.enc.fresh()
	)
	//
	defer p.enc.clause(block.Not())
	//
	for _, t := range terms {
		l, err := p.enc.leafOf(t)
		if err != nil {
			return nil, err
		}
		//
		leaves = append(leaves, l)
	}
	//
	for len(cubes) <= MaxProjection {
		sat, err := p.enc.solve(append(aa, block)...)
		//
		if err != nil {
			return nil, err
		} else if !sat {
			break
		}
		//
		cube := make([]formula.Formula, len(leaves))
		blocking := []z.Lit{block.Not()}
		//
		for i, l := range leaves {
			v := p.enc.value(l)
			cube[i] = formula.Eq(terms[i], formula.Int(v))
			blocking = append(blocking, p.enc.valueLit(l, v).Not())
		}
		//
		cubes = append(cubes, formula.MkAnd(cube...))
		p.enc.clause(blocking...)
	}
	//
	if len(cubes) > MaxProjection {
		return nil, errors.Wrap(prover.ErrUnknown, "interpolant too large")
	}
	//
	itp := formula.MkOr(cubes...)
	//
	if ok, err := p.inconsistent([]formula.Formula{itp}, ab); err != nil {
		return nil, err
	} else if !ok {
		return nil, errors.Wrap(prover.ErrUnknown, "projection is not an interpolant")
	}
	//
	return itp, nil
}

// sharedLeaves returns the variables and function applications common to two
// formulas.
func sharedLeaves(a formula.Formula, b formula.Formula) *hash.Map[formula.Term, bool] {
	var (
		inA    = hash.NewMap[formula.Term, bool](32)
		shared = hash.NewMap[formula.Term, bool](32)
	)
	//
	for _, t := range formula.Leaves(a) {
		inA.Insert(t, true)
	}
	//
	for _, t := range formula.Leaves(b) {
		if inA.ContainsKey(t) {
			shared.Insert(t, true)
		}
	}
	//
	return shared
}

// sortedLeaves returns the leaves of a set in a deterministic order.
func sortedLeaves(leaves *hash.Map[formula.Term, bool]) []formula.Term {
	var terms []formula.Term
	//
	leaves.ForEach(func(t formula.Term, _ bool) {
		terms = append(terms, t)
	})
	//
	slices.SortFunc(terms, func(a, b formula.Term) int {
		return strings.Compare(a.String(), b.String())
	})
	//
	return terms
}

// over checks whether every leaf of a formula is amongst a given set.
func over(f formula.Formula, leaves *hash.Map[formula.Term, bool]) bool {
	for _, t := range formula.Leaves(f) {
		if !leaves.ContainsKey(t) {
			return false
		}
	}
	//
	return true
}
