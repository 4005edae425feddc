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
	"slices"
	"strings"
)

// Location represents a node in the control-flow automaton of a function.
// Locations are numbered densely across the whole automaton, such that their
// identifiers can be used to index arrays.
type Location struct {
	// Unique identifier of this location within the enclosing automaton.
	ID uint
	// Label of this location within the enclosing function, as given in the
	// source file.
	Label uint
	// Function which owns this location.
	Function *Function
	// Edges leaving this location.
	leaving []Edge
	// Edges entering this location.
	entering []Edge
	// Indicates whether this location is an error location.
	error bool
}

// Leaving returns the edges which leave this location.
func (p *Location) Leaving() []Edge {
	return p.leaving
}

// Entering returns the edges which enter this location.
func (p *Location) Entering() []Edge {
	return p.entering
}

// IsError checks whether this is an error location, i.e. a location whose
// reachability is being determined.
func (p *Location) IsError() bool {
	return p.error
}

// IsEntry checks whether this is the entry location of its function.
func (p *Location) IsEntry() bool {
	return p.Function.Entry == p
}

// IsExit checks whether this is the exit location of its function.
func (p *Location) IsExit() bool {
	return p.Function.Exit == p
}

func (p *Location) String() string {
	return fmt.Sprintf("%s:%d", p.Function.Name, p.Label)
}

// Function represents the automaton of a single function.
type Function struct {
	Name string
	// Formal parameters of this function.
	Params []string
	// Variable holding the return value (or empty if none).
	ReturnVar string
	// Entry location
	Entry *Location
	// Exit location
	Exit *Location
	// Locations of this function, indexed by label.
	locations map[uint]*Location
	// Enclosing automaton
	program *CFA
}

// Locations returns the locations of this function ordered by label.
func (p *Function) Locations() []*Location {
	locs := make([]*Location, 0, len(p.locations))
	//
	for _, l := range p.locations {
		locs = append(locs, l)
	}
	//
	slices.SortFunc(locs, func(l1, l2 *Location) int {
		return int(l1.Label) - int(l2.Label)
	})
	//
	return locs
}

// Location returns the location with a given label, or nil if none exists.
func (p *Function) Location(label uint) *Location {
	return p.locations[label]
}

// InScope determines whether a given variable is visible within this function,
// being either a global variable or one of its own locals.  The locals of a
// function other than main are named f::x.
func (p *Function) InScope(name string) bool {
	if p.program.IsGlobal(name) {
		return true
	} else if p == p.program.Main() {
		return !strings.Contains(name, "::")
	}
	//
	return strings.HasPrefix(name, p.Name+"::")
}

// CFA represents the control-flow automata for all functions of a program.
type CFA struct {
	// Functions in order of declaration.
	functions []*Function
	// All locations, indexed by identifier.
	locations []*Location
	// Variables shared by all functions.
	globals map[string]bool
}

// NewCFA constructs an empty control-flow automaton.
func NewCFA() *CFA {
	return &CFA{globals: make(map[string]bool)}
}

// AddGlobal declares a variable shared by all functions.
func (p *CFA) AddGlobal(name string) error {
	if p.globals[name] {
		return fmt.Errorf("duplicate global variable %s", name)
	}
	//
	p.globals[name] = true
	//
	return nil
}

// IsGlobal checks whether a given variable is shared by all functions.
func (p *CFA) IsGlobal(name string) bool {
	return p.globals[name]
}

// Globals returns the global variables in alphabetical order.
func (p *CFA) Globals() []string {
	names := make([]string, 0, len(p.globals))
	//
	for name := range p.globals {
		names = append(names, name)
	}
	//
	slices.Sort(names)
	//
	return names
}

// AddFunction adds a new (empty) function to this automaton.
func (p *CFA) AddFunction(name string, params []string, returnVar string) (*Function, error) {
	if p.Function(name) != nil {
		return nil, fmt.Errorf("duplicate function %s", name)
	}
	//
	fn := &Function{Name: name, Params: params, ReturnVar: returnVar, locations: make(map[uint]*Location), program: p}
	p.functions = append(p.functions, fn)
	//
	return fn, nil
}

// Location returns the location of a given function with a given label,
// creating it if it does not already exist.
func (p *CFA) Location(fn *Function, label uint) *Location {
	if l, ok := fn.locations[label]; ok {
		return l
	}
	//
	l := &Location{ID: uint(len(p.locations)), Label: label, Function: fn}
	fn.locations[label] = l
	p.locations = append(p.locations, l)
	//
	return l
}

// MarkError marks a given location as an error location.
func (p *CFA) MarkError(loc *Location) {
	loc.error = true
}

// AddEdge connects an edge into this automaton.
func (p *CFA) AddEdge(edge Edge) {
	src, dst := edge.Source(), edge.Target()
	src.leaving = append(src.leaving, edge)
	dst.entering = append(dst.entering, edge)
}

// Function returns the function of a given name, or nil if none exists.
func (p *CFA) Function(name string) *Function {
	for _, fn := range p.functions {
		if fn.Name == name {
			return fn
		}
	}
	//
	return nil
}

// Functions returns the functions in this automaton in order of declaration.
func (p *CFA) Functions() []*Function {
	return p.functions
}

// Main returns the function where analysis begins.  This is the function named
// "main" if it exists, otherwise the first function declared.
func (p *CFA) Main() *Function {
	if fn := p.Function("main"); fn != nil {
		return fn
	} else if len(p.functions) > 0 {
		return p.functions[0]
	}
	//
	return nil
}

// NumLocations returns the number of locations in this automaton.
func (p *CFA) NumLocations() uint {
	return uint(len(p.locations))
}

// LocationByID returns the location with a given identifier.
func (p *CFA) LocationByID(id uint) *Location {
	return p.locations[id]
}

// ErrorLocations returns all error locations of this automaton.
func (p *CFA) ErrorLocations() []*Location {
	var errors []*Location
	//
	for _, l := range p.locations {
		if l.error {
			errors = append(errors, l)
		}
	}
	//
	return errors
}
