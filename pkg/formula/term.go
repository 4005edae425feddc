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

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/consensys/go-cegar/pkg/util/collection/hash"
)

// Term represents an integer-valued expression over program variables.  Terms
// are immutable and compared structurally.
type Term interface {
	// Equals checks whether two terms are structurally identical.
	Equals(Term) bool
	// Hash returns a hashcode consistent with Equals.
	Hash() uint64
	// String returns an S-Expression representation of this term.
	String() string
	isTerm()
}

var _ hash.Hasher[Term] = Term(nil)

// Tags used to seed hashcodes, such that structurally distinct objects of
// different kinds are unlikely to collide.
const (
	tagConst uint64 = iota + 1
	tagVar
	tagApp
	tagBinOp
	tagBool
	tagProp
	tagCmp
	tagNot
	tagAnd
	tagOr
	tagIff
)

// ============================================================================
// Const
// ============================================================================

// Const represents an integer constant.
type Const struct {
	Value int64
}

var _ Term = (*Const)(nil)

func (p *Const) isTerm() {}

// Equals implementation for the Hasher interface.
func (p *Const) Equals(other Term) bool {
	if o, ok := other.(*Const); ok {
		return p.Value == o.Value
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Const) Hash() uint64 {
	return hash.Mix(hash.Seed(tagConst), uint64(p.Value))
}

func (p *Const) String() string {
	return strconv.FormatInt(p.Value, 10)
}

// ============================================================================
// Var
// ============================================================================

// Var represents a program variable.  An index of zero indicates a program
// variable which has not been instantiated (i.e. which is not yet bound to a
// specific SSA version), whilst a positive index identifies a specific SSA
// version of that variable.
type Var struct {
	Name  string
	Index uint
}

var _ Term = (*Var)(nil)

func (p *Var) isTerm() {}

// Equals implementation for the Hasher interface.
func (p *Var) Equals(other Term) bool {
	if o, ok := other.(*Var); ok {
		return p.Name == o.Name && p.Index == o.Index
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Var) Hash() uint64 {
	return hash.Mix(hash.Mix(hash.Seed(tagVar), hash.String(p.Name)), uint64(p.Index))
}

func (p *Var) String() string {
	return indexedName(p.Name, p.Index)
}

// ============================================================================
// App
// ============================================================================

// App represents the application of an uninterpreted function to zero or
// more arguments.  This is used to encode array-like accesses (e.g. a[i] is
// encoded as the application "(a i)").  As for variables, the index
// identifies the SSA version of the function itself.
type App struct {
	Func  string
	Index uint
	Args  []Term
}

var _ Term = (*App)(nil)

func (p *App) isTerm() {}

// Equals implementation for the Hasher interface.
func (p *App) Equals(other Term) bool {
	if o, ok := other.(*App); ok {
		return p.Func == o.Func && p.Index == o.Index && termsEqual(p.Args, o.Args)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *App) Hash() uint64 {
	h := hash.Mix(hash.Mix(hash.Seed(tagApp), hash.String(p.Func)), uint64(p.Index))
	//
	for _, arg := range p.Args {
		h = hash.Mix(h, arg.Hash())
	}
	//
	return h
}

func (p *App) String() string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(indexedName(p.Func, p.Index))
	//
	for _, arg := range p.Args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}

// ============================================================================
// BinOp
// ============================================================================

// ArithOp identifies an arithmetic operator.
type ArithOp uint8

const (
	// ADD represents integer addition.
	ADD ArithOp = iota
	// SUB represents integer subtraction.
	SUB
	// MUL represents integer multiplication.
	MUL
	// DIV represents (truncated) integer division.
	DIV
	// MOD represents the remainder of (truncated) integer division.
	MOD
)

var arithOpNames = [...]string{ADD: "+", SUB: "-", MUL: "*", DIV: "/", MOD: "%"}

func (op ArithOp) String() string {
	return arithOpNames[op]
}

// BinOp represents a binary arithmetic operation.
type BinOp struct {
	Op    ArithOp
	Left  Term
	Right Term
}

var _ Term = (*BinOp)(nil)

func (p *BinOp) isTerm() {}

// Equals implementation for the Hasher interface.
func (p *BinOp) Equals(other Term) bool {
	if o, ok := other.(*BinOp); ok {
		return p.Op == o.Op && p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *BinOp) Hash() uint64 {
	h := hash.Mix(hash.Seed(tagBinOp), uint64(p.Op))
	//
	return hash.Mix(hash.Mix(h, p.Left.Hash()), p.Right.Hash())
}

func (p *BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Op, p.Left, p.Right)
}

// ============================================================================
// Helpers
// ============================================================================

func indexedName(name string, index uint) string {
	if index == 0 {
		return name
	}
	//
	return fmt.Sprintf("%s@%d", name, index)
}

func termsEqual(lhs []Term, rhs []Term) bool {
	if len(lhs) != len(rhs) {
		return false
	}
	//
	for i := range lhs {
		if !lhs[i].Equals(rhs[i]) {
			return false
		}
	}
	//
	return true
}
