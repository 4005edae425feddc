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
	"strings"

	"github.com/consensys/go-cegar/pkg/util/collection/hash"
)

// Formula represents a boolean combination of atoms, where an atom is either a
// comparison between terms or a propositional variable.  Formulas are
// immutable and compared structurally.
type Formula interface {
	// Equals checks whether two formulas are structurally identical.
	Equals(Formula) bool
	// Hash returns a hashcode consistent with Equals.
	Hash() uint64
	// String returns an S-Expression representation of this formula.
	String() string
	isFormula()
}

var _ hash.Hasher[Formula] = Formula(nil)

// ============================================================================
// Bool
// ============================================================================

// Bool represents logical truth or falsehood.
type Bool struct {
	Value bool
}

var (
	// True represents logical truth.
	True Formula = &Bool{true}
	// False represents logical falsehood.
	False Formula = &Bool{false}
)

func (p *Bool) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Bool) Equals(other Formula) bool {
	if o, ok := other.(*Bool); ok {
		return p.Value == o.Value
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Bool) Hash() uint64 {
	if p.Value {
		return hash.Mix(hash.Seed(tagBool), 1)
	}
	//
	return hash.Mix(hash.Seed(tagBool), 0)
}

func (p *Bool) String() string {
	if p.Value {
		return "true"
	}
	//
	return "false"
}

// ============================================================================
// Prop
// ============================================================================

// Prop represents a propositional variable.  These are used, for example, as
// the indicator variables of predicates.
type Prop struct {
	Name string
}

func (p *Prop) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Prop) Equals(other Formula) bool {
	if o, ok := other.(*Prop); ok {
		return p.Name == o.Name
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Prop) Hash() uint64 {
	return hash.Mix(hash.Seed(tagProp), hash.String(p.Name))
}

func (p *Prop) String() string {
	return p.Name
}

// ============================================================================
// Cmp
// ============================================================================

// CmpOp identifies a comparison operator.
type CmpOp uint8

const (
	// EQ represents equality.
	EQ CmpOp = iota
	// NEQ represents disequality.
	NEQ
	// LT represents strictly less than.
	LT
	// LTEQ represents less than or equal.
	LTEQ
	// GT represents strictly greater than.
	GT
	// GTEQ represents greater than or equal.
	GTEQ
)

var cmpOpNames = [...]string{EQ: "=", NEQ: "!=", LT: "<", LTEQ: "<=", GT: ">", GTEQ: ">="}

func (op CmpOp) String() string {
	return cmpOpNames[op]
}

// Negate returns the operator whose result is always the logical negation of
// this operator.
func (op CmpOp) Negate() CmpOp {
	switch op {
	case EQ:
		return NEQ
	case NEQ:
		return EQ
	case LT:
		return GTEQ
	case LTEQ:
		return GT
	case GT:
		return LTEQ
	default:
		return LT
	}
}

// Holds determines whether this comparison holds between two concrete values.
func (op CmpOp) Holds(lhs int64, rhs int64) bool {
	switch op {
	case EQ:
		return lhs == rhs
	case NEQ:
		return lhs != rhs
	case LT:
		return lhs < rhs
	case LTEQ:
		return lhs <= rhs
	case GT:
		return lhs > rhs
	default:
		return lhs >= rhs
	}
}

// Cmp represents a comparison between two terms, and is the primary kind of
// atomic formula.
type Cmp struct {
	Op    CmpOp
	Left  Term
	Right Term
}

func (p *Cmp) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Cmp) Equals(other Formula) bool {
	if o, ok := other.(*Cmp); ok {
		return p.Op == o.Op && p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Cmp) Hash() uint64 {
	h := hash.Mix(hash.Seed(tagCmp), uint64(p.Op))
	//
	return hash.Mix(hash.Mix(h, p.Left.Hash()), p.Right.Hash())
}

func (p *Cmp) String() string {
	return fmt.Sprintf("(%s %s %s)", p.Op, p.Left, p.Right)
}

// ============================================================================
// Not
// ============================================================================

// Not represents the logical negation of a formula.
type Not struct {
	Arg Formula
}

func (p *Not) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Not) Equals(other Formula) bool {
	if o, ok := other.(*Not); ok {
		return p.Arg.Equals(o.Arg)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Not) Hash() uint64 {
	return hash.Mix(hash.Seed(tagNot), p.Arg.Hash())
}

func (p *Not) String() string {
	return fmt.Sprintf("(not %s)", p.Arg)
}

// ============================================================================
// And / Or
// ============================================================================

// And represents the conjunction of two or more formulas.
type And struct {
	Args []Formula
}

func (p *And) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *And) Equals(other Formula) bool {
	if o, ok := other.(*And); ok {
		return formulasEqual(p.Args, o.Args)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *And) Hash() uint64 {
	return hashFormulas(hash.Seed(tagAnd), p.Args)
}

func (p *And) String() string {
	return naryString("and", p.Args)
}

// Or represents the disjunction of two or more formulas.
type Or struct {
	Args []Formula
}

func (p *Or) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Or) Equals(other Formula) bool {
	if o, ok := other.(*Or); ok {
		return formulasEqual(p.Args, o.Args)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Or) Hash() uint64 {
	return hashFormulas(hash.Seed(tagOr), p.Args)
}

func (p *Or) String() string {
	return naryString("or", p.Args)
}

// ============================================================================
// Iff
// ============================================================================

// Iff represents logical equivalence between two formulas.
type Iff struct {
	Left  Formula
	Right Formula
}

func (p *Iff) isFormula() {}

// Equals implementation for the Hasher interface.
func (p *Iff) Equals(other Formula) bool {
	if o, ok := other.(*Iff); ok {
		return p.Left.Equals(o.Left) && p.Right.Equals(o.Right)
	}
	//
	return false
}

// Hash implementation for the Hasher interface.
func (p *Iff) Hash() uint64 {
	return hash.Mix(hash.Mix(hash.Seed(tagIff), p.Left.Hash()), p.Right.Hash())
}

func (p *Iff) String() string {
	return fmt.Sprintf("(iff %s %s)", p.Left, p.Right)
}

// ============================================================================
// Helpers
// ============================================================================

// IsTrue checks whether a formula is (syntactically) logical truth.
func IsTrue(f Formula) bool {
	b, ok := f.(*Bool)
	return ok && b.Value
}

// IsFalse checks whether a formula is (syntactically) logical falsehood.
func IsFalse(f Formula) bool {
	b, ok := f.(*Bool)
	return ok && !b.Value
}

// IsAtom checks whether a formula is atomic, meaning either a comparison or a
// propositional variable.
func IsAtom(f Formula) bool {
	switch f.(type) {
	case *Cmp, *Prop:
		return true
	default:
		return false
	}
}

func formulasEqual(lhs []Formula, rhs []Formula) bool {
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

func hashFormulas(h uint64, args []Formula) uint64 {
	for _, arg := range args {
		h = hash.Mix(h, arg.Hash())
	}
	//
	return h
}

func naryString(op string, args []Formula) string {
	var builder strings.Builder
	//
	builder.WriteString("(")
	builder.WriteString(op)
	//
	for _, arg := range args {
		builder.WriteString(" ")
		builder.WriteString(arg.String())
	}
	//
	builder.WriteString(")")
	//
	return builder.String()
}
