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

// Int constructs an integer constant.
func Int(value int64) Term {
	return &Const{value}
}

// V constructs an uninstantiated program variable.
func V(name string) Term {
	return &Var{name, 0}
}

// VarAt constructs a variable instantiated at a given SSA index.
func VarAt(name string, index uint) Term {
	return &Var{name, index}
}

// Apply constructs an uninstantiated function application.
func Apply(fn string, args ...Term) Term {
	return &App{fn, 0, args}
}

// Plus constructs the sum of two terms, folding constants where possible.
func Plus(lhs Term, rhs Term) Term {
	return arith(ADD, lhs, rhs)
}

// Minus constructs the difference of two terms, folding constants where
// possible.
func Minus(lhs Term, rhs Term) Term {
	return arith(SUB, lhs, rhs)
}

// Times constructs the product of two terms, folding constants where possible.
func Times(lhs Term, rhs Term) Term {
	return arith(MUL, lhs, rhs)
}

// Divide constructs the quotient of two terms.
func Divide(lhs Term, rhs Term) Term {
	return arith(DIV, lhs, rhs)
}

// Modulo constructs the remainder of two terms.
func Modulo(lhs Term, rhs Term) Term {
	return arith(MOD, lhs, rhs)
}

func arith(op ArithOp, lhs Term, rhs Term) Term {
	l, lok := lhs.(*Const)
	r, rok := rhs.(*Const)
	//
	if lok && rok {
		return &Const{ApplyArith(op, l.Value, r.Value)}
	}
	//
	return &BinOp{op, lhs, rhs}
}

// ApplyArith evaluates an arithmetic operator over concrete values.  Division
// by zero yields zero, and the remainder of division by zero yields the
// dividend.
func ApplyArith(op ArithOp, lhs int64, rhs int64) int64 {
	switch op {
	case ADD:
		return lhs + rhs
	case SUB:
		return lhs - rhs
	case MUL:
		return lhs * rhs
	case DIV:
		if rhs == 0 {
			return 0
		}
		//
		return lhs / rhs
	default:
		if rhs == 0 {
			return lhs
		}
		//
		return lhs % rhs
	}
}

// Compare constructs a comparison, folding it into a constant when both sides
// are constants.
func Compare(op CmpOp, lhs Term, rhs Term) Formula {
	l, lok := lhs.(*Const)
	r, rok := rhs.(*Const)
	//
	if lok && rok {
		return MkBool(op.Holds(l.Value, r.Value))
	}
	//
	return &Cmp{op, lhs, rhs}
}

// Eq constructs an equality.
func Eq(lhs Term, rhs Term) Formula { return Compare(EQ, lhs, rhs) }

// Ne constructs a disequality.
func Ne(lhs Term, rhs Term) Formula { return Compare(NEQ, lhs, rhs) }

// Lt constructs a strict less-than comparison.
func Lt(lhs Term, rhs Term) Formula { return Compare(LT, lhs, rhs) }

// Le constructs a non-strict less-than comparison.
func Le(lhs Term, rhs Term) Formula { return Compare(LTEQ, lhs, rhs) }

// Gt constructs a strict greater-than comparison.
func Gt(lhs Term, rhs Term) Formula { return Compare(GT, lhs, rhs) }

// Ge constructs a non-strict greater-than comparison.
func Ge(lhs Term, rhs Term) Formula { return Compare(GTEQ, lhs, rhs) }

// MkBool converts a Go boolean into a formula.
func MkBool(value bool) Formula {
	if value {
		return True
	}
	//
	return False
}

// P constructs a propositional variable.
func P(name string) Formula {
	return &Prop{name}
}

// MkNot constructs the negation of a formula, eliminating double negation and
// folding constants.
func MkNot(arg Formula) Formula {
	switch a := arg.(type) {
	case *Bool:
		return MkBool(!a.Value)
	case *Not:
		return a.Arg
	default:
		return &Not{arg}
	}
}

// MkAnd constructs the conjunction of zero or more formulas.  Nested
// conjunctions are flattened, occurrences of true are dropped and any
// occurrence of false makes the whole conjunction false.
func MkAnd(args ...Formula) Formula {
	var nargs []Formula
	//
	for _, arg := range args {
		switch a := arg.(type) {
		case *Bool:
			if !a.Value {
				return False
			}
		case *And:
			nargs = append(nargs, a.Args...)
		default:
			nargs = append(nargs, arg)
		}
	}
	//
	switch len(nargs) {
	case 0:
		return True
	case 1:
		return nargs[0]
	default:
		return &And{nargs}
	}
}

// MkOr constructs the disjunction of zero or more formulas.  This is the dual
// of MkAnd.
func MkOr(args ...Formula) Formula {
	var nargs []Formula
	//
	for _, arg := range args {
		switch a := arg.(type) {
		case *Bool:
			if a.Value {
				return True
			}
		case *Or:
			nargs = append(nargs, a.Args...)
		default:
			nargs = append(nargs, arg)
		}
	}
	//
	switch len(nargs) {
	case 0:
		return False
	case 1:
		return nargs[0]
	default:
		return &Or{nargs}
	}
}

// MkIff constructs the equivalence of two formulas.
func MkIff(lhs Formula, rhs Formula) Formula {
	switch {
	case IsTrue(lhs):
		return rhs
	case IsTrue(rhs):
		return lhs
	case IsFalse(lhs):
		return MkNot(rhs)
	case IsFalse(rhs):
		return MkNot(lhs)
	case lhs.Equals(rhs):
		return True
	}
	//
	return &Iff{lhs, rhs}
}

// Implies constructs the implication lhs ==> rhs.
func Implies(lhs Formula, rhs Formula) Formula {
	return MkOr(MkNot(lhs), rhs)
}
