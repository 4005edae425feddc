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

	"github.com/consensys/go-cegar/pkg/sexp"
)

// ParseError is returned when an S-Expression does not describe a valid formula
// or term.  This records the offending S-Expression, such that it can be
// mapped back to a span within the enclosing source file.
type ParseError struct {
	Node    sexp.SExp
	Message string
}

func (p *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", p.Message, p.Node)
}

func parseError(node sexp.SExp, msg string, args ...any) *ParseError {
	return &ParseError{node, fmt.Sprintf(msg, args...)}
}

// ParseFormula parses a formula from its textual (S-Expression) form.
func ParseFormula(text string) (Formula, error) {
	node, err := sexp.Parse(text)
	//
	if err != nil {
		return nil, err
	} else if node == nil {
		return nil, fmt.Errorf("empty formula")
	}
	//
	return FormulaFromSExp(node)
}

// ParseTerm parses a term from its textual (S-Expression) form.
func ParseTerm(text string) (Term, error) {
	node, err := sexp.Parse(text)
	//
	if err != nil {
		return nil, err
	} else if node == nil {
		return nil, fmt.Errorf("empty term")
	}
	//
	return TermFromSExp(node)
}

var cmpOps = map[string]CmpOp{"=": EQ, "!=": NEQ, "<": LT, "<=": LTEQ, ">": GT, ">=": GTEQ}

var arithOps = map[string]ArithOp{"+": ADD, "-": SUB, "*": MUL, "/": DIV, "%": MOD}

// FormulaFromSExp translates an S-Expression into a formula.  Symbols in
// formula position are propositional variables (other than true and false).
func FormulaFromSExp(node sexp.SExp) (Formula, error) {
	switch n := node.(type) {
	case *sexp.Symbol:
		switch n.Value {
		case "true":
			return True, nil
		case "false":
			return False, nil
		}
		//
		if _, ok := n.Int(); ok {
			return nil, parseError(node, "expected formula, found integer")
		}
		//
		return P(n.Value), nil
	case *sexp.List:
		return formulaFromList(n)
	}
	//
	return nil, parseError(node, "unknown S-Expression")
}

func formulaFromList(list *sexp.List) (Formula, error) {
	head := list.Head()
	//
	if op, ok := cmpOps[head]; ok {
		if list.Len() != 3 {
			return nil, parseError(list, "comparison requires two operands")
		}
		//
		lhs, err := TermFromSExp(list.Get(1))
		if err != nil {
			return nil, err
		}
		//
		rhs, err := TermFromSExp(list.Get(2))
		if err != nil {
			return nil, err
		}
		//
		return Compare(op, lhs, rhs), nil
	}
	//
	args, err := formulasFromSExps(list.Elements[min(1, list.Len()):])
	if err != nil {
		return nil, err
	}
	//
	switch head {
	case "not":
		if len(args) != 1 {
			return nil, parseError(list, "negation requires one operand")
		}
		//
		return MkNot(args[0]), nil
	case "and":
		return MkAnd(args...), nil
	case "or":
		return MkOr(args...), nil
	case "iff":
		if len(args) != 2 {
			return nil, parseError(list, "equivalence requires two operands")
		}
		//
		return MkIff(args[0], args[1]), nil
	case "=>":
		if len(args) != 2 {
			return nil, parseError(list, "implication requires two operands")
		}
		//
		return Implies(args[0], args[1]), nil
	}
	//
	return nil, parseError(list, "unknown formula")
}

func formulasFromSExps(nodes []sexp.SExp) ([]Formula, error) {
	formulas := make([]Formula, len(nodes))
	//
	for i, node := range nodes {
		f, err := FormulaFromSExp(node)
		if err != nil {
			return nil, err
		}
		//
		formulas[i] = f
	}
	//
	return formulas, nil
}

// TermFromSExp translates an S-Expression into a term.  Symbols in term
// position are either integer constants or variables, where a variable may
// carry an explicit SSA index (e.g. x@2).  Lists whose head is not an
// arithmetic operator are function applications.
func TermFromSExp(node sexp.SExp) (Term, error) {
	switch n := node.(type) {
	case *sexp.Symbol:
		if v, ok := n.Int(); ok {
			return Int(v), nil
		}
		//
		name, index, err := splitIndexedName(n.Value)
		if err != nil {
			return nil, parseError(node, "%s", err.Error())
		}
		//
		return VarAt(name, index), nil
	case *sexp.List:
		return termFromList(n)
	}
	//
	return nil, parseError(node, "unknown S-Expression")
}

func termFromList(list *sexp.List) (Term, error) {
	if list.Len() == 0 {
		return nil, parseError(list, "empty term")
	}
	//
	head, ok := list.Get(0).(*sexp.Symbol)
	if !ok {
		return nil, parseError(list, "invalid term")
	}
	//
	args, err := termsFromSExps(list.Elements[1:])
	if err != nil {
		return nil, err
	}
	//
	if op, ok := arithOps[head.Value]; ok {
		switch {
		case len(args) == 1 && op == SUB:
			return Minus(Int(0), args[0]), nil
		case len(args) < 2:
			return nil, parseError(list, "arithmetic requires at least two operands")
		case len(args) > 2 && (op == DIV || op == MOD):
			return nil, parseError(list, "arithmetic requires exactly two operands")
		}
		// Left associative
		result := args[0]
		for _, arg := range args[1:] {
			result = arith(op, result, arg)
		}
		//
		return result, nil
	} else if _, ok := cmpOps[head.Value]; ok {
		return nil, parseError(list, "expected term, found comparison")
	}
	//
	name, index, err := splitIndexedName(head.Value)
	if err != nil {
		return nil, parseError(list, "%s", err.Error())
	}
	//
	return &App{name, index, args}, nil
}

func termsFromSExps(nodes []sexp.SExp) ([]Term, error) {
	terms := make([]Term, len(nodes))
	//
	for i, node := range nodes {
		t, err := TermFromSExp(node)
		if err != nil {
			return nil, err
		}
		//
		terms[i] = t
	}
	//
	return terms, nil
}

// splitIndexedName splits a name of the form "x@2" into its base name and
// SSA index.  A name without an index has index zero.
func splitIndexedName(text string) (string, uint, error) {
	at := strings.LastIndexByte(text, '@')
	//
	if at < 0 {
		return text, 0, nil
	} else if at == 0 {
		return "", 0, fmt.Errorf("invalid name")
	}
	//
	index, err := strconv.ParseUint(text[at+1:], 10, 32)
	if err != nil || index == 0 {
		return "", 0, fmt.Errorf("invalid index")
	}
	//
	return text[:at], uint(index), nil
}
