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
package cegar

import (
	"fmt"

	"github.com/consensys/go-cegar/pkg/art"
	"github.com/consensys/go-cegar/pkg/pathformula"
	"github.com/pkg/errors"
)

// ErrInsufficientPredicates is returned when a spurious counterexample yields
// no predicates at all, meaning refinement cannot make progress.
var ErrInsufficientPredicates = errors.New("insufficient predicates")

// ErrNoProgress is returned when the same counterexample is repeatedly
// refined without changing the abstraction.
var ErrNoProgress = errors.New("refinement made no progress")

// ErrWitnessDump is returned when the formula of a real counterexample could
// not be written.
var ErrWitnessDump = errors.New("cannot write counterexample")

// Severity classifies the errors arising during analysis.
type Severity uint8

const (
	// Success indicates no error.
	Success Severity = iota
	// Recoverable indicates an error which can be logged and ignored.
	Recoverable
	// Fatal indicates an error which aborts the analysis.
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Success:
		return "success"
	case Recoverable:
		return "recoverable"
	default:
		return "fatal"
	}
}

// SeverityOf determines the severity of a given error.  Malformed edges,
// prover failures, lack of progress and running out of predicates are all
// fatal.
func SeverityOf(err error) Severity {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrWitnessDump):
		return Recoverable
	default:
		return Fatal
	}
}

// Verdict is the final result of an analysis.
type Verdict uint8

const (
	// Safe indicates no error location is reachable.
	Safe Verdict = iota
	// Unsafe indicates an error location is reachable.
	Unsafe
	// Unknown indicates the analysis was aborted.
	Unknown
)

func (v Verdict) String() string {
	switch v {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Outcome is the result of running the analysis to completion.
type Outcome struct {
	Verdict  Verdict
	Severity Severity
	// Err records why the analysis was aborted (if it was).
	Err error
	// Path to the error location (when unsafe).
	Path []PathElement
	// Witness for the error path (when unsafe).
	Witness *Witness
}

func (p *Outcome) String() string {
	switch {
	case p.Verdict == Safe:
		return "safe"
	case p.Verdict == Unsafe:
		return "reached error location"
	case errors.Is(p.Err, ErrInsufficientPredicates):
		return "insufficient predicates, aborting"
	case p.Err != nil:
		return fmt.Sprintf("unknown (%s)", p.Err)
	default:
		return "unknown"
	}
}

// abort constructs the outcome for an analysis which failed with a given
// error.
func abort(err error) *Outcome {
	return &Outcome{Verdict: Unknown, Severity: SeverityOf(err), Err: err}
}

// Witness describes a real counterexample.
type Witness struct {
	// Formula for the path, whose satisfying assignments are executions
	// reaching the error location.
	Path *pathformula.PathFormula
	// Model satisfying the path formula, when available.
	Model map[string]int64
}

// RefinementOutcome describes how a reachability tree should be updated after
// refinement.
type RefinementOutcome struct {
	// ErrorFound indicates the counterexample was real, and the tree should
	// not be updated.
	ErrorFound bool
	// Changed indicates the abstraction was changed.
	Changed bool
	// Nodes to remove from the tree.
	Unreach []art.NodeID
	// Nodes to (re-)expand.
	Waitlist []art.NodeID
	// Node from which exploration restarts.
	Root art.NodeID
}
