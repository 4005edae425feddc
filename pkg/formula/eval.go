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
package formula

// Env provides values for the leaves of a formula, and is used to evaluate
// formulas under a concrete assignment (e.g. a satisfying model).
type Env interface {
	// Value returns the value of a variable or function application.  For
	// applications, the arguments are already evaluated into constants.
	Value(leaf Term) int64
	// Truth returns the value of a propositional variable.
	Truth(name string) bool
}

// Evaluate determines the truth of a formula in a given environment.
func Evaluate(f Formula, env Env) bool {
	switch p := f.(type) {
	case *Bool:
		return p.Value
	case *Prop:
		return env.Truth(p.Name)
	case *Cmp:
		return p.Op.Holds(EvaluateTerm(p.Left, env), EvaluateTerm(p.Right, env))
	case *Not:
		return !Evaluate(p.Arg, env)
	case *And:
		for _, arg := range p.Args {
			if !Evaluate(arg, env) {
				return false
			}
		}
		//
		return true
	case *Or:
		for _, arg := range p.Args {
			if Evaluate(arg, env) {
				return true
			}
		}
		//
		return false
	case *Iff:
		return Evaluate(p.Left, env) == Evaluate(p.Right, env)
	default:
		panic("unknown formula encountered")
	}
}

// EvaluateTerm determines the value of a term in a given environment.
func EvaluateTerm(t Term, env Env) int64 {
	switch p := t.(type) {
	case *Const:
		return p.Value
	case *Var:
		return env.Value(p)
	case *App:
		args := make([]Term, len(p.Args))
		//
		for i, arg := range p.Args {
			args[i] = &Const{EvaluateTerm(arg, env)}
		}
		//
		return env.Value(&App{p.Func, p.Index, args})
	case *BinOp:
		return ApplyArith(p.Op, EvaluateTerm(p.Left, env), EvaluateTerm(p.Right, env))
	default:
		panic("unknown term encountered")
	}
}

// Assignment is a simple environment backed by maps.  Leaves are keyed by
// their string representation, and unassigned leaves evaluate to zero (or
// false).
type Assignment struct {
	Values map[string]int64
	Truths map[string]bool
}

// NewAssignment constructs an empty assignment.
func NewAssignment() *Assignment {
	return &Assignment{make(map[string]int64), make(map[string]bool)}
}

// Set assigns a value to a given leaf.
func (p *Assignment) Set(leaf Term, value int64) {
	p.Values[leaf.String()] = value
}

// Value implementation for the Env interface.
func (p *Assignment) Value(leaf Term) int64 {
	return p.Values[leaf.String()]
}

// Truth implementation for the Env interface.
func (p *Assignment) Truth(name string) bool {
	return p.Truths[name]
}
