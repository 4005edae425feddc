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
package cfa

import (
	"fmt"
	"strings"

	"github.com/consensys/go-cegar/pkg/formula"
)

// Edge represents a transition between two locations of a control-flow
// automaton.
type Edge interface {
	// Source location of this edge.
	Source() *Location
	// Target location of this edge.
	Target() *Location
	// String returns a human-readable description of this edge.
	String() string
}

type edge struct {
	source *Location
	target *Location
}

// Source implementation for the Edge interface.
func (p *edge) Source() *Location { return p.source }

// Target implementation for the Edge interface.
func (p *edge) Target() *Location { return p.target }

// BlankEdge represents a transition with no effect on program state.
type BlankEdge struct {
	edge
	Label string
}

// NewBlankEdge constructs a new blank edge.
func NewBlankEdge(source, target *Location, label string) *BlankEdge {
	return &BlankEdge{edge{source, target}, label}
}

func (p *BlankEdge) String() string {
	if p.Label == "" {
		return "skip"
	}
	//
	return p.Label
}

// AssumeEdge represents a transition which is only enabled when a given
// condition evaluates to a given truth value.
type AssumeEdge struct {
	edge
	Cond  formula.Formula
	Truth bool
}

// NewAssumeEdge constructs a new assume edge.
func NewAssumeEdge(source, target *Location, cond formula.Formula, truth bool) *AssumeEdge {
	return &AssumeEdge{edge{source, target}, cond, truth}
}

// Guard returns the condition which must hold for this edge to be taken,
// taking into account the truth value.
func (p *AssumeEdge) Guard() formula.Formula {
	if p.Truth {
		return p.Cond
	}
	//
	return formula.MkNot(p.Cond)
}

func (p *AssumeEdge) String() string {
	if p.Truth {
		return fmt.Sprintf("[%s]", p.Cond)
	}
	//
	return fmt.Sprintf("[!%s]", p.Cond)
}

// StatementEdge represents an assignment to a variable, or to a function
// application (i.e. an array-like element).  A nil right-hand side indicates
// the left-hand side is assigned an arbitrary value (havoc).
type StatementEdge struct {
	edge
	LHS formula.Term
	RHS formula.Term
}

// NewStatementEdge constructs a new statement edge.
func NewStatementEdge(source, target *Location, lhs formula.Term, rhs formula.Term) *StatementEdge {
	return &StatementEdge{edge{source, target}, lhs, rhs}
}

func (p *StatementEdge) String() string {
	if p.RHS == nil {
		return fmt.Sprintf("havoc %s", p.LHS)
	}
	//
	return fmt.Sprintf("%s := %s", p.LHS, p.RHS)
}

// DeclarationEdge represents the declaration of a local variable, whose
// initial value is arbitrary.
type DeclarationEdge struct {
	edge
	Name string
}

// NewDeclarationEdge constructs a new declaration edge.
func NewDeclarationEdge(source, target *Location, name string) *DeclarationEdge {
	return &DeclarationEdge{edge{source, target}, name}
}

func (p *DeclarationEdge) String() string {
	return fmt.Sprintf("declare %s", p.Name)
}

// FunctionCallEdge represents a transition from a call site into the entry of
// the called function, binding its parameters to the given arguments.
type FunctionCallEdge struct {
	edge
	Callee *Function
	Args   []formula.Term
	// Return edge corresponding to this call.
	Return *FunctionReturnEdge
}

func (p *FunctionCallEdge) String() string {
	args := make([]string, len(p.Args))
	//
	for i, arg := range p.Args {
		args[i] = arg.String()
	}
	//
	return fmt.Sprintf("call %s(%s)", p.Callee.Name, strings.Join(args, ", "))
}

// FunctionReturnEdge represents a transition from the exit of a called
// function back to the location following its call site, optionally
// assigning the returned value.
type FunctionReturnEdge struct {
	edge
	// Variable (or element) receiving the return value, or nil if none.
	Result formula.Term
	// Call edge corresponding to this return.
	Call *FunctionCallEdge
}

func (p *FunctionReturnEdge) String() string {
	if p.Result == nil {
		return fmt.Sprintf("return from %s", p.Call.Callee.Name)
	}
	//
	return fmt.Sprintf("%s := return from %s", p.Result, p.Call.Callee.Name)
}

// NewCall constructs a matching pair of call and return edges.  The call edge
// connects the call site to the callee's entry, whilst the return edge connects
// the callee's exit to the location after the call site.
func NewCall(site, after *Location, callee *Function, args []formula.Term, result formula.Term) (*FunctionCallEdge, *FunctionReturnEdge) {
	call := &FunctionCallEdge{edge{site, callee.Entry}, callee, args, nil}
	ret := &FunctionReturnEdge{edge{callee.Exit, after}, result, call}
	call.Return = ret
	//
	return call, ret
}

// IsNoop checks whether taking a given edge can have no effect on program
// state.  Such edges pass an abstract state through unchanged.
func IsNoop(e Edge) bool {
	switch p := e.(type) {
	case *BlankEdge:
		return true
	case *FunctionReturnEdge:
		return p.Result == nil
	default:
		return false
	}
}
