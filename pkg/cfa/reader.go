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
	"os"

	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/consensys/go-cegar/pkg/sexp"
	"github.com/pkg/errors"
)

// ReadFile reads a control-flow automaton from a given file.
func ReadFile(filename string) (*CFA, error) {
	bytes, err := os.ReadFile(filename)
	//
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", filename)
	}
	//
	return Read(sexp.NewSourceFile(filename, bytes))
}

// Read a control-flow automaton from a given source file.  Each function is
// described by an S-Expression of the following form:
//
//	(function main (entry 0) (exit 9) (error 5) (params a b) (return-var r)
//	   (edge 0 1 (assign x 10))
//	   (edge 1 2 (assume (> x 0)))
//	   (edge 2 3 (call f (x) r))
//	   ...)
//
// The available statements are skip, assume, assume-not, assign, havoc,
// declare and call.  Variables shared between functions are declared at the
// top level with (global g ...).  Any other variable used in a function other
// than the main function is local to it, and is renamed f::x to keep it
// apart from variables of the same name elsewhere.  Recursion is not
// supported.  Errors are reported as syntax errors over the offending part of
// the source file.
func Read(srcfile *sexp.SourceFile) (*CFA, error) {
	terms, srcmap, err := srcfile.ParseAll()
	//
	if err != nil {
		return nil, err
	}
	//
	var (
		r     = reader{srcfile, srcmap, NewCFA(), nil}
		lists []*sexp.List
	)
	// Declare functions first, so calls can be resolved in any order.
	for _, term := range terms {
		if list, ok := term.(*sexp.List); ok && list.Head() == "global" {
			if err := r.declareGlobals(list); err != nil {
				return nil, err
			}
			//
			continue
		} else if err := r.declareFunction(term); err != nil {
			return nil, err
		}
		//
		lists = append(lists, term.(*sexp.List))
	}
	//
	if r.cfa.Main() == nil {
		return nil, errors.New("no functions declared")
	}
	//
	for i, list := range lists {
		fn := r.cfa.functions[i]
		//
		sc, err := r.enterScope(fn, list)
		if err != nil {
			return nil, err
		} else if err := r.translateEdges(fn, sc, list); err != nil {
			return nil, err
		}
	}
	//
	if err := r.checkRecursion(); err != nil {
		return nil, err
	}
	//
	return r.cfa, nil
}

type reader struct {
	srcfile *sexp.SourceFile
	srcmap  *sexp.SourceMap[sexp.SExp]
	cfa     *CFA
	calls   []callSite
}

// callSite records a call statement for the recursion check.
type callSite struct {
	caller *Function
	callee *Function
	stmt   *sexp.List
}

// scope determines the name a variable is given within a function.
type scope struct {
	// Prefix for local variables, empty for the main function.
	prefix  string
	locals  map[string]bool
	program *CFA
}

// Qualify returns the name of a given variable within this scope.
func (s *scope) Qualify(name string) string {
	if s.prefix == "" || (s.program.IsGlobal(name) && !s.locals[name]) {
		return name
	}
	//
	return s.prefix + "::" + name
}

func (s *scope) term(t formula.Term) formula.Term {
	return formula.MapTerm(t, s.leaf)
}

func (s *scope) formula(f formula.Formula) formula.Formula {
	return formula.MapLeaves(f, s.leaf)
}

func (s *scope) leaf(t formula.Term) formula.Term {
	if v, ok := t.(*formula.Var); ok {
		return formula.VarAt(s.Qualify(v.Name), v.Index)
	}
	// Function symbols are global
	return t
}

func (r *reader) declareGlobals(list *sexp.List) error {
	names, err := r.symbols(list.Elements[1:])
	if err != nil {
		return err
	}
	//
	for i, name := range names {
		if err := r.cfa.AddGlobal(name); err != nil {
			return r.syntaxError(list.Get(i+1), err.Error())
		}
	}
	//
	return nil
}

// enterScope constructs the scope of a given function, and renames its
// parameters and return variable accordingly.  The locals of a function are its
// parameters, its return variable and any variable it declares.
func (r *reader) enterScope(fn *Function, list *sexp.List) (*scope, error) {
	sc := &scope{"", make(map[string]bool), r.cfa}
	//
	if fn != r.cfa.Main() {
		sc.prefix = fn.Name
	}
	//
	for _, name := range fn.Params {
		sc.locals[name] = true
	}
	//
	if fn.ReturnVar != "" {
		sc.locals[fn.ReturnVar] = true
	}
	//
	for _, elem := range list.Elements[2:] {
		attr := elem.(*sexp.List)
		//
		if attr.Head() != "edge" || attr.Len() != 4 {
			continue
		} else if stmt, ok := attr.Get(3).(*sexp.List); ok && stmt.Head() == "declare" && stmt.Len() == 2 {
			if sym, ok := stmt.Get(1).(*sexp.Symbol); ok {
				sc.locals[sym.Value] = true
				//
				if sc.prefix == "" && r.cfa.IsGlobal(sym.Value) {
					return nil, r.syntaxError(stmt, "declaration shadows global variable")
				}
			}
		}
	}
	//
	if sc.prefix == "" {
		for _, name := range fn.Params {
			if r.cfa.IsGlobal(name) {
				return nil, r.syntaxError(list, "parameter shadows global variable")
			}
		}
	}
	//
	for i, name := range fn.Params {
		fn.Params[i] = sc.Qualify(name)
	}
	//
	if fn.ReturnVar != "" {
		fn.ReturnVar = sc.Qualify(fn.ReturnVar)
	}
	//
	return sc, nil
}

// checkRecursion rejects any call from which its own caller can be reached
// again.
func (r *reader) checkRecursion() error {
	graph := make(map[*Function][]*Function)
	//
	for _, site := range r.calls {
		graph[site.caller] = append(graph[site.caller], site.callee)
	}
	//
	for _, site := range r.calls {
		if reaches(graph, site.callee, site.caller) {
			return r.syntaxError(site.stmt, "recursive call")
		}
	}
	//
	return nil
}

// reaches determines whether a target function is reachable in the call graph
// from a given function (inclusive).
func reaches(graph map[*Function][]*Function, from *Function, target *Function) bool {
	var (
		visited  = make(map[*Function]bool)
		worklist = []*Function{from}
	)
	//
	for len(worklist) > 0 {
		fn := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		//
		if fn == target {
			return true
		} else if !visited[fn] {
			visited[fn] = true
			worklist = append(worklist, graph[fn]...)
		}
	}
	//
	return false
}

func (r *reader) declareFunction(term sexp.SExp) error {
	list, ok := term.(*sexp.List)
	//
	if !ok || !list.MatchSymbols(2, "function") {
		return r.syntaxError(term, "expected function declaration")
	}
	//
	names, err := r.symbols(list.Elements[1:2])
	if err != nil {
		return err
	}
	//
	var (
		name       = names[0]
		params     []string
		returnVar  string
		entry      *sexp.List
		exit       *sexp.List
		errorDecls []*sexp.List
	)
	//
	for _, elem := range list.Elements[2:] {
		attr, ok := elem.(*sexp.List)
		if !ok {
			return r.syntaxError(elem, "expected attribute")
		}
		//
		switch attr.Head() {
		case "entry":
			entry = attr
		case "exit":
			exit = attr
		case "error":
			errorDecls = append(errorDecls, attr)
		case "params":
			names, err := r.symbols(attr.Elements[1:])
			if err != nil {
				return err
			}
			//
			params = names
		case "return-var":
			names, err := r.symbols(attr.Elements[1:])
			if err != nil {
				return err
			} else if len(names) != 1 {
				return r.syntaxError(attr, "expected single return variable")
			}
			//
			returnVar = names[0]
		case "edge":
			continue
		default:
			return r.syntaxError(attr, "unknown attribute")
		}
	}
	//
	fn, err := r.cfa.AddFunction(name, params, returnVar)
	//
	if err != nil {
		return r.syntaxError(list.Get(1), err.Error())
	} else if entry == nil {
		return r.syntaxError(list, "missing entry location")
	} else if exit == nil {
		return r.syntaxError(list, "missing exit location")
	}
	//
	if fn.Entry, err = r.locationAttr(fn, entry); err != nil {
		return err
	} else if fn.Exit, err = r.locationAttr(fn, exit); err != nil {
		return err
	}
	//
	for _, decl := range errorDecls {
		loc, err := r.locationAttr(fn, decl)
		if err != nil {
			return err
		}
		//
		r.cfa.MarkError(loc)
	}
	//
	return nil
}

func (r *reader) locationAttr(fn *Function, attr *sexp.List) (*Location, error) {
	if attr.Len() != 2 {
		return nil, r.syntaxError(attr, "expected single location")
	}
	//
	return r.location(fn, attr.Get(1))
}

func (r *reader) location(fn *Function, term sexp.SExp) (*Location, error) {
	if sym, ok := term.(*sexp.Symbol); ok {
		if label, ok := sym.Int(); ok && label >= 0 {
			return r.cfa.Location(fn, uint(label)), nil
		}
	}
	//
	return nil, r.syntaxError(term, "invalid location")
}

func (r *reader) symbols(terms []sexp.SExp) ([]string, error) {
	names := make([]string, len(terms))
	//
	for i, term := range terms {
		sym, ok := term.(*sexp.Symbol)
		if !ok {
			return nil, r.syntaxError(term, "expected identifier")
		} else if _, isInt := sym.Int(); isInt {
			return nil, r.syntaxError(term, "expected identifier")
		}
		//
		names[i] = sym.Value
	}
	//
	return names, nil
}

func (r *reader) translateEdges(fn *Function, sc *scope, list *sexp.List) error {
	for _, elem := range list.Elements[2:] {
		attr := elem.(*sexp.List)
		//
		if attr.Head() != "edge" {
			continue
		} else if attr.Len() != 4 {
			return r.syntaxError(attr, "expected (edge source target statement)")
		}
		//
		src, err := r.location(fn, attr.Get(1))
		if err != nil {
			return err
		}
		//
		dst, err := r.location(fn, attr.Get(2))
		if err != nil {
			return err
		}
		//
		if err := r.translateStatement(sc, src, dst, attr.Get(3)); err != nil {
			return err
		}
	}
	//
	return nil
}

func (r *reader) translateStatement(sc *scope, src, dst *Location, term sexp.SExp) error {
	stmt, ok := term.(*sexp.List)
	//
	if !ok || stmt.Len() == 0 {
		return r.syntaxError(term, "expected statement")
	}
	//
	args := stmt.Elements[1:]
	//
	switch stmt.Head() {
	case "skip":
		if len(args) != 0 {
			return r.syntaxError(stmt, "unexpected operands")
		}
		//
		r.cfa.AddEdge(NewBlankEdge(src, dst, ""))
	case "assume", "assume-not":
		if len(args) != 1 {
			return r.syntaxError(stmt, "expected single condition")
		}
		//
		cond, err := formula.FormulaFromSExp(args[0])
		if err != nil {
			return r.translationError(term, err)
		}
		//
		r.cfa.AddEdge(NewAssumeEdge(src, dst, sc.formula(cond), stmt.Head() == "assume"))
	case "assign":
		if len(args) != 2 {
			return r.syntaxError(stmt, "expected (assign lhs rhs)")
		}
		//
		lhs, err := r.lvalue(sc, args[0])
		if err != nil {
			return err
		}
		//
		rhs, err := r.term(sc, args[1])
		if err != nil {
			return err
		}
		//
		r.cfa.AddEdge(NewStatementEdge(src, dst, lhs, rhs))
	case "havoc":
		if len(args) != 1 {
			return r.syntaxError(stmt, "expected (havoc lhs)")
		}
		//
		lhs, err := r.lvalue(sc, args[0])
		if err != nil {
			return err
		}
		//
		r.cfa.AddEdge(NewStatementEdge(src, dst, lhs, nil))
	case "declare":
		names, err := r.symbols(args)
		if err != nil {
			return err
		} else if len(names) != 1 {
			return r.syntaxError(stmt, "expected (declare name)")
		}
		//
		r.cfa.AddEdge(NewDeclarationEdge(src, dst, sc.Qualify(names[0])))
	case "call":
		return r.translateCall(sc, src, dst, stmt)
	default:
		return r.syntaxError(stmt, "unknown statement")
	}
	//
	return nil
}

// translateCall translates a call statement.  The arguments and the result are
// evaluated in the scope of the caller.
func (r *reader) translateCall(sc *scope, src, dst *Location, stmt *sexp.List) error {
	if stmt.Len() < 3 || stmt.Len() > 4 {
		return r.syntaxError(stmt, "expected (call function (args) result?)")
	}
	//
	name, ok := stmt.Get(1).(*sexp.Symbol)
	if !ok {
		return r.syntaxError(stmt.Get(1), "expected function name")
	}
	//
	callee := r.cfa.Function(name.Value)
	if callee == nil {
		return r.syntaxError(stmt.Get(1), "unknown function")
	}
	//
	argList, ok := stmt.Get(2).(*sexp.List)
	if !ok {
		return r.syntaxError(stmt.Get(2), "expected argument list")
	} else if argList.Len() != len(callee.Params) {
		return r.syntaxError(argList, "incorrect number of arguments")
	}
	//
	args := make([]formula.Term, argList.Len())
	//
	for i, elem := range argList.Elements {
		arg, err := r.term(sc, elem)
		if err != nil {
			return err
		}
		//
		args[i] = arg
	}
	//
	var result formula.Term
	//
	if stmt.Len() == 4 {
		var err error
		//
		if callee.ReturnVar == "" {
			return r.syntaxError(stmt.Get(3), "function has no return value")
		} else if result, err = r.lvalue(sc, stmt.Get(3)); err != nil {
			return err
		}
	}
	//
	r.calls = append(r.calls, callSite{src.Function, callee, stmt})
	call, ret := NewCall(src, dst, callee, args, result)
	r.cfa.AddEdge(call)
	r.cfa.AddEdge(ret)
	//
	return nil
}

func (r *reader) term(sc *scope, node sexp.SExp) (formula.Term, error) {
	t, err := formula.TermFromSExp(node)
	//
	if err != nil {
		return nil, r.translationError(node, err)
	}
	//
	return sc.term(t), nil
}

// lvalue translates the target of an assignment, which must be either an
// uninstantiated variable or an uninstantiated function application.
func (r *reader) lvalue(sc *scope, node sexp.SExp) (formula.Term, error) {
	t, err := r.term(sc, node)
	//
	if err != nil {
		return nil, err
	}
	//
	switch lv := t.(type) {
	case *formula.Var:
		if lv.Index == 0 {
			return lv, nil
		}
	case *formula.App:
		if lv.Index == 0 {
			return lv, nil
		}
	}
	//
	return nil, r.syntaxError(node, "invalid assignment target")
}

// translationError converts an error arising from the formula parser into a
// syntax error, using the offending S-Expression where available.
func (r *reader) translationError(node sexp.SExp, err error) error {
	var perr *formula.ParseError
	//
	if errors.As(err, &perr) && r.srcmap.Has(perr.Node) {
		return r.syntaxError(perr.Node, perr.Message)
	}
	//
	return r.syntaxError(node, err.Error())
}

func (r *reader) syntaxError(node sexp.SExp, msg string) error {
	return r.srcfile.SyntaxError(r.srcmap.Get(node), msg)
}
