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
package pathformula

import (
	"github.com/consensys/go-cegar/pkg/cfa"
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/ssa"
	"github.com/pkg/errors"
)

// ErrUnsupportedEdge is returned when an edge has no known transition
// semantics, or is malformed.
var ErrUnsupportedEdge = errors.New("unsupported edge")

// PathFormula is a formula describing a sequence of transitions, along with
// the SSA map giving the latest version of every variable after the last
// transition.
type PathFormula struct {
	Formula formula.Formula
	SSA     *ssa.Map
	// Indicates whether an uninterpreted function encoding was required for
	// any transition.
	UF bool
}

// Empty returns the path formula for the empty path.
func Empty() *PathFormula {
	return &PathFormula{formula.True, ssa.Empty, false}
}

// Extend returns the path formula obtained by appending a given edge onto
// this path formula, along with the formula of the appended step.
func (p *PathFormula) Extend(edge cfa.Edge) (*PathFormula, formula.Formula, error) {
	builder := p.SSA.Builder()
	//
	step, uf, err := Transition(edge, builder)
	if err != nil {
		return nil, nil, err
	}
	//
	return &PathFormula{formula.MkAnd(p.Formula, step), builder.Build(), p.UF || uf}, step, nil
}

func (p *PathFormula) String() string {
	return p.Formula.String()
}

// Transition constructs the formula for a single edge, advancing the given SSA
// builder to reflect any variables assigned by it.  The returned flag
// indicates whether the formula involves function applications (i.e. requires
// an uninterpreted function encoding).
func Transition(edge cfa.Edge, b *ssa.Builder) (formula.Formula, bool, error) {
	var f formula.Formula
	//
	switch e := edge.(type) {
	case *cfa.BlankEdge:
		f = formula.True
	case *cfa.AssumeEdge:
		f = b.Instantiate(e.Guard())
	case *cfa.StatementEdge:
		if e.LHS == nil {
			return nil, false, errors.Wrapf(ErrUnsupportedEdge, "assignment without target (%s)", edge.Source())
		}
		//
		f = assign(e.LHS, e.RHS, b)
	case *cfa.DeclarationEdge:
		b.Fresh(e.Name)
		//
		f = formula.True
	case *cfa.FunctionCallEdge:
		if len(e.Args) != len(e.Callee.Params) {
			return nil, false, errors.Wrapf(ErrUnsupportedEdge, "arity mismatch calling %s", e.Callee.Name)
		}
		// Evaluate all arguments in the caller's context before binding.
		args := make([]formula.Term, len(e.Args))
		for i, arg := range e.Args {
			args[i] = b.InstantiateTerm(arg)
		}
		//
		bindings := make([]formula.Formula, len(args))
		for i, param := range e.Callee.Params {
			bindings[i] = formula.Eq(formula.VarAt(param, b.Fresh(param)), args[i])
		}
		//
		f = formula.MkAnd(bindings...)
	case *cfa.FunctionReturnEdge:
		if e.Result == nil {
			f = formula.True
		} else if e.Call == nil || e.Call.Callee.ReturnVar == "" {
			return nil, false, errors.Wrapf(ErrUnsupportedEdge, "return without value (%s)", edge.Source())
		} else {
			f = assign(e.Result, formula.V(e.Call.Callee.ReturnVar), b)
		}
	default:
		return nil, false, errors.Wrapf(ErrUnsupportedEdge, "%T", edge)
	}
	//
	return f, usesFunctions(f), nil
}

// assign constructs the formula for assigning a given right-hand side to a
// given target.  The right-hand side (and the arguments of the target) are
// evaluated before the target is given a fresh version.  A nil right-hand side
// leaves the new version unconstrained.
func assign(lhs formula.Term, rhs formula.Term, b *ssa.Builder) formula.Formula {
	if rhs != nil {
		rhs = b.InstantiateTerm(rhs)
	}
	//
	var target formula.Term
	//
	switch t := lhs.(type) {
	case *formula.App:
		args := make([]formula.Term, len(t.Args))
		for i, arg := range t.Args {
			args[i] = b.InstantiateTerm(arg)
		}
		//
		leaf := &formula.App{Func: t.Func, Args: args}
		target = &formula.App{Func: t.Func, Index: b.Fresh(ssa.Key(leaf)), Args: args}
	case *formula.Var:
		target = formula.VarAt(t.Name, b.Fresh(t.Name))
	default:
		panic("invalid assignment target")
	}
	//
	if rhs == nil {
		return formula.True
	}
	//
	return formula.Eq(target, rhs)
}

func usesFunctions(f formula.Formula) bool {
	for _, leaf := range formula.Leaves(f) {
		if _, ok := leaf.(*formula.App); ok {
			return true
		}
	}
	//
	return false
}
