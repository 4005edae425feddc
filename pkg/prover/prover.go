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
package prover

import (
	"github.com/consensys/go-cegar/pkg/formula"
	"github.com/pkg/errors"
)

// ErrUnknown is returned when a prover cannot decide a query, for example
// because it timed out or the query lies outside its supported fragment.
var ErrUnknown = errors.New("prover returned unknown")

// AllSatisfying is returned by AllSat when every assignment to the important
// formulas is a model, meaning the formula does not constrain them at all.
const AllSatisfying = -1

// Mode determines how a theorem prover session will be used.
type Mode uint8

const (
	// ModeSat indicates a session used for (incremental) satisfiability
	// queries.
	ModeSat Mode = iota
	// ModeAllSat indicates a session used for model enumeration.
	ModeAllSat
)

// TheoremProver provides incremental satisfiability checking over formulas.
// Formulas pushed onto the prover remain asserted until popped.
type TheoremProver interface {
	// Init prepares this prover for a new session.
	Init(mode Mode) error
	// Push asserts a formula within a new scope.
	Push(f formula.Formula) error
	// Pop retracts the most recently pushed formula.
	Pop() error
	// IsUnsat determines whether the pushed formulas, along with an additional
	// formula, are unsatisfiable.  The additional formula may be nil.
	IsUnsat(f formula.Formula) (bool, error)
	// AllSat enumerates all assignments to a set of important formulas which
	// can be extended into a model of the pushed formulas and a given formula.
	// Each such assignment is passed to the callback as a cube of literals,
	// where each literal is either an important formula or its negation.  The
	// number of such assignments is returned, or AllSatisfying if every
	// assignment is a model.
	AllSat(f formula.Formula, important []formula.Formula, callback func(cube []formula.Formula) error) (int, error)
	// Reset discards all pushed formulas.
	Reset() error
}

// Group identifies a set of formulas added to an interpolating prover.
type Group uint

// InterpolatingProver determines the satisfiability of a conjunction of
// formulas and, when unsatisfiable, produces interpolants for any partition
// of them.
type InterpolatingProver interface {
	// Init prepares this prover for a new session.
	Init() error
	// AddFormula adds a formula to the conjunction, returning its group.
	AddFormula(f formula.Formula) (Group, error)
	// IsUnsat determines whether the conjunction is unsatisfiable.
	IsUnsat() (bool, error)
	// Interpolant returns a formula I, over the symbols common to groups A and
	// the remaining groups B, such that A implies I and I is inconsistent with
	// B.  This is only valid after IsUnsat has returned true.
	Interpolant(groupA []Group) (formula.Formula, error)
	// Reset discards all added formulas.
	Reset() error
}

// ModelProvider is implemented by provers able to return a satisfying
// assignment after a satisfiable query.  Values are keyed by the string
// representation of each variable (or function application).
type ModelProvider interface {
	Model() (map[string]int64, error)
}

// Scoped pushes a formula onto a prover, runs a given function and then pops
// the formula again.  The pop happens on every exit path, including when the
// function fails.
func Scoped(p TheoremProver, f formula.Formula, fn func() error) (err error) {
	if err = p.Push(f); err != nil {
		return err
	}
	//
	defer func() {
		if perr := p.Pop(); err == nil {
			err = perr
		}
	}()
	//
	return fn()
}

// Stats provides counters for the queries answered by a prover.
type Stats struct {
	// Number of satisfiability queries.
	Queries uint
	// Number of models enumerated by AllSat.
	Models uint
	// Number of interpolants computed.
	Interpolants uint
}

// StatsProvider is implemented by provers which record statistics.
type StatsProvider interface {
	Stats() Stats
}
