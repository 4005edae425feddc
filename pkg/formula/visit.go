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
	"github.com/consensys/go-cegar/pkg/util/collection/hash"
)

// Atoms returns the distinct atoms (comparisons and propositional variables)
// occurring in a formula, in order of their first occurrence.
func Atoms(f Formula) []Formula {
	var (
		seen  = hash.NewMap[Formula, bool](16)
		atoms []Formula
	)
	//
	VisitAtoms(f, func(atom Formula) {
		if !seen.Insert(atom, true) {
			atoms = append(atoms, atom)
		}
	})
	//
	return atoms
}

// VisitAtoms calls a given function on every atom occurrence within a
// formula, from left to right.
func VisitAtoms(f Formula, fn func(Formula)) {
	switch p := f.(type) {
	case *Bool:
		return
	case *Prop, *Cmp:
		fn(f)
	case *Not:
		VisitAtoms(p.Arg, fn)
	case *And:
		for _, arg := range p.Args {
			VisitAtoms(arg, fn)
		}
	case *Or:
		for _, arg := range p.Args {
			VisitAtoms(arg, fn)
		}
	case *Iff:
		VisitAtoms(p.Left, fn)
		VisitAtoms(p.Right, fn)
	}
}

// VisitTerms calls a given function on every term occurring within a formula,
// including subterms.  Subterms are visited before the terms which contain
// them.
func VisitTerms(f Formula, fn func(Term)) {
	VisitAtoms(f, func(atom Formula) {
		if c, ok := atom.(*Cmp); ok {
			visitTerm(c.Left, fn)
			visitTerm(c.Right, fn)
		}
	})
}

func visitTerm(t Term, fn func(Term)) {
	switch p := t.(type) {
	case *App:
		for _, arg := range p.Args {
			visitTerm(arg, fn)
		}
	case *BinOp:
		visitTerm(p.Left, fn)
		visitTerm(p.Right, fn)
	}
	//
	fn(t)
}

// Leaves returns the distinct variables and function applications occurring
// within a formula.  These are the terms whose values are not determined by
// their subterms.  Leaves nested inside function arguments are returned before
// the application containing them.
func Leaves(f Formula) []Term {
	var (
		seen   = hash.NewMap[Term, bool](16)
		leaves []Term
	)
	//
	VisitTerms(f, func(t Term) {
		switch t.(type) {
		case *Var, *App:
			if !seen.Insert(t, true) {
				leaves = append(leaves, t)
			}
		}
	})
	//
	return leaves
}

// Names returns the distinct names of variables and functions occurring within
// a formula, in order of first occurrence.
func Names(f Formula) []string {
	var (
		seen  = make(map[string]bool)
		names []string
	)
	//
	for _, leaf := range Leaves(f) {
		var name string
		//
		switch t := leaf.(type) {
		case *Var:
			name = t.Name
		case *App:
			name = t.Func
		}
		//
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	//
	return names
}

// MapLeaves rebuilds a formula by applying a given function to every variable
// and function application.  For applications, the arguments are mapped before
// the application itself.
func MapLeaves(f Formula, fn func(Term) Term) Formula {
	return mapFormula(f, func(t Term) Term { return mapTerm(t, fn) }, nil)
}

// MapTerm rebuilds a term by applying a given function to every variable and
// function application.
func MapTerm(t Term, fn func(Term) Term) Term {
	return mapTerm(t, fn)
}

func mapTerm(t Term, fn func(Term) Term) Term {
	switch p := t.(type) {
	case *Const:
		return t
	case *Var:
		return fn(t)
	case *App:
		args := make([]Term, len(p.Args))
		for i, arg := range p.Args {
			args[i] = mapTerm(arg, fn)
		}
		//
		return fn(&App{p.Func, p.Index, args})
	case *BinOp:
		return &BinOp{p.Op, mapTerm(p.Left, fn), mapTerm(p.Right, fn)}
	default:
		panic("unknown term encountered")
	}
}

// mapFormula rebuilds a formula by mapping the terms of every comparison and
// (optionally) every propositional variable.
func mapFormula(f Formula, terms func(Term) Term, props func(*Prop) Formula) Formula {
	switch p := f.(type) {
	case *Bool:
		return f
	case *Prop:
		if props != nil {
			return props(p)
		}
		//
		return f
	case *Cmp:
		if terms != nil {
			return &Cmp{p.Op, terms(p.Left), terms(p.Right)}
		}
		//
		return f
	case *Not:
		return &Not{mapFormula(p.Arg, terms, props)}
	case *And:
		return &And{mapFormulas(p.Args, terms, props)}
	case *Or:
		return &Or{mapFormulas(p.Args, terms, props)}
	case *Iff:
		return &Iff{mapFormula(p.Left, terms, props), mapFormula(p.Right, terms, props)}
	default:
		panic("unknown formula encountered")
	}
}

func mapFormulas(args []Formula, terms func(Term) Term, props func(*Prop) Formula) []Formula {
	nargs := make([]Formula, len(args))
	//
	for i, arg := range args {
		nargs[i] = mapFormula(arg, terms, props)
	}
	//
	return nargs
}

// Instantiate binds every uninstantiated variable and function application
// within a formula to the SSA index determined by a given function.  The
// function is called with the uninstantiated leaf, where the arguments of an
// application have already been instantiated.  Leaves which are already
// instantiated are left unchanged.
func Instantiate(f Formula, index func(leaf Term) uint) Formula {
	return MapLeaves(f, func(t Term) Term {
		return instantiateLeaf(t, index)
	})
}

// InstantiateTerm is the term-level counterpart of Instantiate.
func InstantiateTerm(t Term, index func(leaf Term) uint) Term {
	return mapTerm(t, func(t Term) Term {
		return instantiateLeaf(t, index)
	})
}

func instantiateLeaf(t Term, index func(leaf Term) uint) Term {
	switch p := t.(type) {
	case *Var:
		if p.Index == 0 {
			return &Var{p.Name, index(p)}
		}
	case *App:
		if p.Index == 0 {
			return &App{p.Func, index(p), p.Args}
		}
	}
	//
	return t
}

// Uninstantiate strips the SSA index from every variable and function within
// a formula.  This is the inverse of Instantiate, and is used to turn
// interpolants over SSA versions into location-independent predicates.
func Uninstantiate(f Formula) Formula {
	return MapLeaves(f, func(t Term) Term {
		switch p := t.(type) {
		case *Var:
			return &Var{p.Name, 0}
		case *App:
			return &App{p.Func, 0, p.Args}
		}
		//
		return t
	})
}

// IsInstantiated checks whether every leaf of a formula carries an SSA index.
func IsInstantiated(f Formula) bool {
	for _, leaf := range Leaves(f) {
		switch t := leaf.(type) {
		case *Var:
			if t.Index == 0 {
				return false
			}
		case *App:
			if t.Index == 0 {
				return false
			}
		}
	}
	//
	return true
}

// Substitute replaces propositional variables within a formula according to a
// given mapping.  Variables without a mapping are left unchanged.
func Substitute(f Formula, mapping map[string]Formula) Formula {
	return mapFormula(f, nil, func(p *Prop) Formula {
		if g, ok := mapping[p.Name]; ok {
			return g
		}
		//
		return p
	})
}
