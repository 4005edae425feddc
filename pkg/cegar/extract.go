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
package cegar

import (
	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/predicate"
	"github.com/consensys/go-cegar/pkg/prover"
	"github.com/consensys/go-cegar/pkg/util/collection/stack"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// extract computes an interpolant at each position along a spurious path, and
// turns its atoms into predicates.  Position i separates the steps before i
// (group A) from the remainder (group B).  When well-scoped predicates are
// enabled, group A within a called function starts from the call step, thus
// including the binding of its parameters.  Should the resulting interpolant
// mention variables not in scope of the called function, group A starts from
// the start of the path instead.
func (a *Analyzer) extract(path []PathElement, groups []*prover.Group) (map[art.NodeID][]*predicate.Predicate, error) {
	var (
		n = len(groups)
		// Predicates found at each position
		found = make([][]*predicate.Predicate, n)
		// Positions of enclosing call steps
		cuts  = stack.NewStack[int]()
		first = -1
		last  = -1
	)
	//
	for i := 1; i < n; i++ {
		switch path[i-1].Edge.(type) {
		case *cfa.FunctionCallEdge:
			cuts.Push(i - 1)
		case *cfa.FunctionReturnEdge:
			if !cuts.IsEmpty() {
				cuts.Pop()
			}
		}
		//
		var (
			itp formula.Formula
			err error
		)
		//
		if a.options.AddWellScopedPredicates && !cuts.IsEmpty() {
			itp, err = a.wellScoped(groups, cuts.Peek(0), i, path[i-1].Edge.Target().Function)
		}
		//
		if itp == nil && err == nil {
			itp, err = a.interpolant(groups, 0, i)
		}
		//
		if err != nil {
			return nil, errors.Wrapf(err, "interpolating at position %d", i)
		}
		//
		itp = formula.Uninstantiate(itp)
		found[i] = a.predicatesOf(itp)
		//
		log.Debugf("interpolant at position %d: %s", i, itp)
		//
		if len(found[i]) > 0 {
			if first < 0 {
				first = i
			}
			//
			last = i
		}
	}
	//
	if first < 0 {
		return nil, ErrInsufficientPredicates
	}
	//
	return a.attach(path, found, first, last), nil
}

// interpolant computes the interpolant where group A consists of the steps
// from cut up to (but excluding) i.
func (a *Analyzer) interpolant(groups []*prover.Group, cut int, i int) (formula.Formula, error) {
	var groupA []prover.Group
	//
	for j := cut; j < i; j++ {
		if groups[j] != nil {
			groupA = append(groupA, *groups[j])
		}
	}
	//
	a.stats.Interpolants++
	//
	return a.itp.Interpolant(groupA)
}

// wellScoped computes the interpolant at position i within a given function,
// whose call step is at cut.  This returns nil when the interpolant cannot be
// expressed over the variables in scope.
func (a *Analyzer) wellScoped(groups []*prover.Group, cut int, i int, fn *cfa.Function) (formula.Formula, error) {
	itp, err := a.interpolant(groups, cut, i)
	//
	if errors.Is(err, prover.ErrUnknown) {
		log.Debugf("no well-scoped interpolant at position %d: %s", i, err)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	//
	for _, leaf := range formula.Leaves(itp) {
		if v, ok := leaf.(*formula.Var); ok && !fn.InScope(v.Name) {
			log.Debugf("interpolant at position %d not in scope of %s: %s", i, fn.Name, itp)
			return nil, nil
		}
	}
	//
	return itp, nil
}

// attach determines the nodes to which the predicates found at each position
// are attached.  By default, those found at position i are attached to the
// node at position i-1, whose outgoing edge leads to the location they
// describe.
func (a *Analyzer) attach(path []PathElement, found [][]*predicate.Predicate, first, last int) map[art.NodeID][]*predicate.Predicate {
	var (
		result = make(map[art.NodeID][]*predicate.Predicate)
		all    []*predicate.Predicate
	)
	//
	switch {
	case a.options.AddPredicatesGlobally:
		for _, preds := range found {
			all = union(all, preds)
		}
		// Every node with an outgoing edge
		for i := 0; i+1 < len(path); i++ {
			result[path[i].Node] = union(result[path[i].Node], all)
		}
	case a.options.UseBlastWay:
		for i := first; i <= last; i++ {
			all = union(all, found[i])
		}
		//
		for i := first; i <= last; i++ {
			result[path[i-1].Node] = union(result[path[i-1].Node], all)
		}
	default:
		for i, preds := range found {
			if len(preds) > 0 {
				result[path[i-1].Node] = union(result[path[i-1].Node], preds)
			}
		}
	}
	//
	return result
}

// predicatesOf returns the predicates for an (uninstantiated) interpolant.
func (a *Analyzer) predicatesOf(itp formula.Formula) []*predicate.Predicate {
	var preds []*predicate.Predicate
	//
	if formula.IsTrue(itp) || formula.IsFalse(itp) {
		return nil
	} else if !a.options.AtomicPredicates {
		return []*predicate.Predicate{a.manager.MakePredicate(itp)}
	}
	//
	for _, atom := range formula.Atoms(itp) {
		if cmp, ok := atom.(*formula.Cmp); ok && cmp.Op == formula.EQ && a.options.SplitItpAtoms {
			preds = union(preds, []*predicate.Predicate{
				a.manager.MakePredicate(formula.Le(cmp.Left, cmp.Right)),
				a.manager.MakePredicate(formula.Ge(cmp.Left, cmp.Right)),
			})
		} else {
			preds = union(preds, []*predicate.Predicate{a.manager.MakePredicate(atom)})
		}
	}
	//
	return preds
}

// union appends those predicates not already present.
func union(lhs []*predicate.Predicate, rhs []*predicate.Predicate) []*predicate.Predicate {
	for _, p := range rhs {
		present := false
		//
		for _, q := range lhs {
			present = present || p == q
		}
		//
		if !present {
			lhs = append(lhs, p)
		}
	}
	//
	return lhs
}
